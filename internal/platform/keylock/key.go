package keylock

import "github.com/google/uuid"

// ProgressKey is the lock key owning a single (user, lesson) progress record and its ledger rows.
func ProgressKey(userID, lessonID uuid.UUID) string {
	return userID.String() + ":" + lessonID.String()
}
