package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marmos91/apiserve/pkg/controlplane/models"
)

// collection is the GORM implementation of IndexedCollection. Indexes are
// real database indexes named "<collection>_<name>"; the catalog table keeps
// the logical name, column list and expiry for each.
type collection struct {
	db   *gorm.DB
	name string
}

// Collection returns a handle on the named collection. Invalid names are
// reported by the handle's methods.
func (s *GORMStore) Collection(name string) IndexedCollection {
	return &collection{db: s.db, name: name}
}

func (c *collection) Name() string {
	return c.name
}

func (c *collection) physicalName(index string) string {
	return c.name + "_" + index
}

func (c *collection) check(index string) error {
	if !isIdentifier(c.name) {
		return fmt.Errorf("invalid collection name %q", c.name)
	}
	if index != "" && !isIdentifier(c.physicalName(index)) {
		return fmt.Errorf("invalid index name %q", index)
	}
	return nil
}

func (c *collection) IndexInformation(ctx context.Context) (map[string]IndexModel, error) {
	if err := c.check(""); err != nil {
		return nil, err
	}

	var entries []models.IndexCatalogEntry
	if err := c.db.WithContext(ctx).Where("collection = ?", c.name).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to read index catalog for %s: %w", c.name, err)
	}

	migrator := c.db.WithContext(ctx).Migrator()
	info := make(map[string]IndexModel, len(entries))
	for _, e := range entries {
		// A catalog row whose index was dropped out of band does not count.
		if !migrator.HasIndex(c.name, c.physicalName(e.Name)) {
			continue
		}
		info[e.Name] = IndexModel{
			Name:               e.Name,
			Columns:            e.ColumnList(),
			Unique:             e.Unique,
			ExpireAfterSeconds: e.ExpireAfterSeconds,
		}
	}
	return info, nil
}

func (c *collection) CreateIndex(ctx context.Context, model IndexModel) error {
	if err := c.check(model.Name); err != nil {
		return err
	}
	if len(model.Columns) == 0 {
		return fmt.Errorf("index %s on %s has no columns", model.Name, c.name)
	}

	columns := make([]clause.Column, len(model.Columns))
	for i, col := range model.Columns {
		if !isIdentifier(col) {
			return fmt.Errorf("invalid column name %q", col)
		}
		columns[i] = clause.Column{Name: col}
	}

	ddl := "CREATE INDEX IF NOT EXISTS ? ON ? ?"
	if model.Unique {
		ddl = "CREATE UNIQUE INDEX IF NOT EXISTS ? ON ? ?"
	}

	entry := models.IndexCatalogEntry{
		Collection:         c.name,
		Name:               model.Name,
		Columns:            strings.Join(model.Columns, ","),
		Unique:             model.Unique,
		ExpireAfterSeconds: model.ExpireAfterSeconds,
	}

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(ddl,
			clause.Table{Name: c.physicalName(model.Name)},
			clause.Table{Name: c.name},
			columns,
		).Error; err != nil {
			return fmt.Errorf("failed to create index %s on %s: %w", model.Name, c.name, err)
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"columns", "is_unique", "expire_after_seconds"}),
		}).Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to record index %s on %s: %w", model.Name, c.name, err)
		}
		return nil
	})
}

func (c *collection) DropIndex(ctx context.Context, name string) error {
	if err := c.check(name); err != nil {
		return err
	}

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		present := tx.Migrator().HasIndex(c.name, c.physicalName(name))

		result := tx.Where("collection = ? AND name = ?", c.name, name).Delete(&models.IndexCatalogEntry{})
		if result.Error != nil {
			return fmt.Errorf("failed to update index catalog for %s: %w", c.name, result.Error)
		}

		if !present {
			if result.RowsAffected == 0 {
				return fmt.Errorf("%s on %s: %w", name, c.name, models.ErrIndexNotFound)
			}
			return nil
		}

		if err := tx.Exec("DROP INDEX IF EXISTS ?", clause.Table{Name: c.physicalName(name)}).Error; err != nil {
			return fmt.Errorf("failed to drop index %s on %s: %w", name, c.name, err)
		}
		return nil
	})
}

// IsIndexNotFound reports whether err is a missing-index error.
func IsIndexNotFound(err error) bool {
	return errors.Is(err, models.ErrIndexNotFound)
}
