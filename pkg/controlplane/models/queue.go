package models

import "time"

// QueueJob is a job waiting in the queue collection. The pair (Name,
// ArgsHash) is unique once the job_args index exists.
type QueueJob struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Name       string    `gorm:"not null;size:255" json:"name"`
	ArgsHash   string    `gorm:"not null;size:64" json:"args_hash"`
	Args       string    `gorm:"type:text" json:"args"` // canonical JSON
	EnqueuedAt time.Time `gorm:"not null" json:"enqueued_at"`
}

// Index and column names of the system collections.
const (
	IndexJobArgs   = "job_args"
	IndexTTL       = "ttl"
	IndexTimestamp = "timestamp"

	ColumnName      = "name"
	ColumnArgsHash  = "args_hash"
	ColumnTimestamp = "timestamp"
)
