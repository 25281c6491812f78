package s3component

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// ObjectKeyTimeFormat is the timestamp layout leading every object key.
	ObjectKeyTimeFormat = "2006-01-02-15-04-05"
	// ObjectKeySuffix is appended to every generated key.
	ObjectKeySuffix = ".json"
)

// FormatObjectKey renders the key for an event stored at t.
// Format: YYYY-MM-DD-HH-MM-SS-<uuid>.json, with t in UTC.
func FormatObjectKey(t time.Time, id uuid.UUID) string {
	return t.UTC().Format(ObjectKeyTimeFormat) + "-" + id.String() + ObjectKeySuffix
}

// NewObjectKey generates a fresh key for t. The random UUID keeps keys
// generated within the same second distinct.
func NewObjectKey(t time.Time) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate object key: %w", err)
	}
	return FormatObjectKey(t, id), nil
}
