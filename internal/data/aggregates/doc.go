// Package aggregates owns the transaction boundary for ledger writes.
//
// Every mutating progress operation runs as lock(user, lesson) -> tx{write;
// recompute} through Writer, and every failure leaves this package as a
// coded domain error carrying the operation name and record keys.
package aggregates
