package store

import (
	"context"

	"github.com/marmos91/apiserve/pkg/controlplane/models"
)

func (s *GORMStore) CreateUser(ctx context.Context, user *models.User) (string, error) {
	if err := user.Validate(); err != nil {
		return "", err
	}
	return createWithID(s.db, ctx, user, func(u *models.User, id string) { u.ID = id }, user.ID, models.ErrDuplicateUser)
}

func (s *GORMStore) GetUser(ctx context.Context, username string) (*models.User, error) {
	return getByField[models.User](s.db, ctx, "username", username, models.ErrUserNotFound)
}

func (s *GORMStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	return listAll[models.User](s.db, ctx, "username")
}
