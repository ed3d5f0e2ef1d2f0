package models

import (
	"strings"
	"time"
)

// IndexCatalogEntry records an index created through the store, keyed by
// collection and logical name. Expiry is not something SQL databases do, so
// ExpireAfterSeconds is kept here and enforced by the store's sweeper.
type IndexCatalogEntry struct {
	Collection         string    `gorm:"primaryKey;size:128" json:"collection"`
	Name               string    `gorm:"primaryKey;size:128" json:"name"`
	Columns            string    `gorm:"not null;size:512" json:"columns"` // comma separated
	Unique             bool      `gorm:"column:is_unique;default:false" json:"unique"`
	ExpireAfterSeconds int       `gorm:"default:0" json:"expire_after_seconds"`
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName returns the table name for IndexCatalogEntry.
func (IndexCatalogEntry) TableName() string {
	return "sys_index_catalog"
}

// ColumnList splits Columns.
func (e *IndexCatalogEntry) ColumnList() []string {
	if e.Columns == "" {
		return nil
	}
	return strings.Split(e.Columns, ",")
}
