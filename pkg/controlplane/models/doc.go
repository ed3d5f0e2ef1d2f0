// Package models provides the persisted types of the apiserve backing store:
// the administrative identity, the job queue, captured job output, stat
// records and the index catalog. GORM annotations describe their columns.
package models
