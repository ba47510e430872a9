// Package aggregates defines the coded errors every engine operation returns.
//
// Callers branch on Code, never on message text. Keys name the records an
// error is about so transports can surface them without parsing.
package aggregates
