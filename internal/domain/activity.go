package domain

import "time"

// ActivityType represents the kind of a task timeline entry.
type ActivityType string

const (
	ActivityTypeComment      ActivityType = "COMMENT"
	ActivityTypeStatusChange ActivityType = "STATUS_CHANGE"
	ActivityTypeEdit         ActivityType = "EDIT"
	ActivityTypeAttachment   ActivityType = "ATTACHMENT"
)

// ActivityRecord is a per-task, append-only timeline entry. Records are
// created as side effects of transitions or explicit comments/attachments and
// are never updated or deleted. Seq breaks creation-time ties so timelines
// render deterministically.
type ActivityRecord struct {
	ID        string
	TaskID    string
	ActorID   string
	Type      ActivityType
	Content   string
	FieldName *string
	OldValue  *string
	NewValue  *string
	FileURL   *string
	FileName  *string
	Seq       int64
	CreatedAt time.Time

	// ActorName is joined in for timeline rendering; not a column of the record.
	ActorName string
}
