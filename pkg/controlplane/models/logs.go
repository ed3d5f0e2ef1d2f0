package models

import "time"

// StdoutLine is one line of captured job output. Lines expire once the
// collection carries a ttl index.
type StdoutLine struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	JobID     string    `gorm:"size:36" json:"job_id"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
	Line      string    `gorm:"type:text" json:"line"`
}

// StatRecord is a point-in-time statistic.
type StatRecord struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	Value     string    `gorm:"type:text" json:"value"` // JSON
}
