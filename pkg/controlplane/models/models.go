package models

// AllModels returns the fixed-name models for auto-migration. The queue,
// stdout and stat collections have configurable names and are migrated by
// the store individually.
func AllModels() []any {
	return []any{
		&User{},
		&IndexCatalogEntry{},
	}
}
