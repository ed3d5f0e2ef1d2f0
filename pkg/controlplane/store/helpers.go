package store

import (
	"context"
	"regexp"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Generic helpers shared by the store files. They take a *gorm.DB rather
// than the store so they work with db.Table(...) scoped handles.

// identifierPattern matches table and index names that are safe to splice
// into DDL.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

func isIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// getByField retrieves a single record of type T by matching field=value,
// converting gorm.ErrRecordNotFound to notFoundErr.
func getByField[T any](db *gorm.DB, ctx context.Context, field string, value any, notFoundErr error) (*T, error) {
	var result T
	if err := db.WithContext(ctx).Where(field+" = ?", value).First(&result).Error; err != nil {
		return nil, convertNotFoundError(err, notFoundErr)
	}
	return &result, nil
}

// listAll retrieves all records of type T ordered by the given column.
func listAll[T any](db *gorm.DB, ctx context.Context, order string) ([]*T, error) {
	var results []*T
	q := db.WithContext(ctx)
	if order != "" {
		q = q.Order(order)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// createWithID generates a UUID for the entity if it has no ID, then creates
// it. Unique constraint violations are converted to dupErr.
//
// Example:
//
//	id, err := createWithID(db, ctx, user, func(u *models.User, id string) { u.ID = id }, user.ID, models.ErrDuplicateUser)
func createWithID[T any](db *gorm.DB, ctx context.Context, entity *T, idSetter func(*T, string), currentID string, dupErr error) (string, error) {
	id := currentID
	if id == "" {
		id = uuid.New().String()
		idSetter(entity, id)
	}
	if err := db.WithContext(ctx).Create(entity).Error; err != nil {
		if isUniqueConstraintError(err) {
			return "", dupErr
		}
		return "", err
	}
	return id, nil
}
