package domain

import "time"

// ComplaintEdit is an immutable snapshot of one content edit.
type ComplaintEdit struct {
	ID             int64
	ComplaintID    int64
	OldTitle       string
	OldDescription string
	NewTitle       string
	NewDescription string
	EditorID       int64
	EditedAt       time.Time
}
