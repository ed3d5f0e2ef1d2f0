package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/marmos91/apiserve/internal/logger"
	"github.com/marmos91/apiserve/internal/telemetry"
	"github.com/marmos91/apiserve/pkg/controlplane/models"
	"github.com/marmos91/apiserve/pkg/controlplane/store"
	"github.com/marmos91/apiserve/pkg/metrics"
)

// folderMode is the permission of created working folders.
const folderMode = 0o750

// EnsureFolders creates the working folders that do not exist yet.
func (s *Sequencer) EnsureFolders(ctx context.Context) error {
	return s.once(ctx, StepFolder, &s.state.Folder, func(ctx context.Context) (string, error) {
		f := s.cfg.Folders
		outcome := metrics.OutcomeExists

		for _, name := range []string{f.Transfer, f.Process, f.Archive, f.Temp} {
			if name == "" {
				continue
			}
			path := name
			if !filepath.IsAbs(path) {
				path = filepath.Join(f.Root, name)
			}

			_, err := os.Stat(path)
			if err == nil {
				continue
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return "", &StoreUnavailableError{Step: StepFolder, Collection: path, Err: fmt.Errorf("failed to stat folder: %w", err)}
			}

			if err := os.MkdirAll(path, folderMode); err != nil {
				return "", &StoreUnavailableError{Step: StepFolder, Collection: path, Err: fmt.Errorf("failed to create folder: %w", err)}
			}
			logger.WarnCtx(ctx, "created folder", logger.KeyFolder, path)
			outcome = metrics.OutcomeCreated
		}
		return outcome, nil
	})
}

// EnsureAdminIdentity creates the administrative identity. An identity that
// already exists under the same username counts as success and is left
// untouched.
func (s *Sequencer) EnsureAdminIdentity(ctx context.Context) error {
	return s.once(ctx, StepRole, &s.state.Role, func(ctx context.Context) (string, error) {
		a := s.cfg.Admin

		password := a.Password
		generated := false
		if password == "" {
			var err error
			if password, err = models.GeneratePassword(); err != nil {
				return "", fmt.Errorf("failed to generate admin password: %w", err)
			}
			generated = true
		}

		hash, err := models.HashPassword(password)
		if err != nil {
			return "", fmt.Errorf("failed to hash admin password: %w", err)
		}

		user := &models.User{
			Username:     a.Username,
			PasswordHash: hash,
			Enabled:      true,
			Role:         string(models.RoleAdmin),
			DisplayName:  a.Realname,
			Email:        a.Contact,
		}
		user.SetPermissions([]string{models.PermCOP})

		_, err = s.store.CreateUser(ctx, user)
		switch {
		case errors.Is(err, models.ErrDuplicateUser):
			s.reportExistingAdmin(ctx, a.Username)
			return metrics.OutcomeExists, nil
		case err != nil:
			return "", &StoreUnavailableError{Step: StepRole, Collection: models.User{}.TableName(), Err: err}
		}

		if generated {
			logger.InfoCtx(ctx, "admin identity created", logger.KeyUsername, a.Username, "password", password)
		} else {
			logger.InfoCtx(ctx, "admin identity created", logger.KeyUsername, a.Username)
		}
		return metrics.OutcomeCreated, nil
	})
}

// reportExistingAdmin logs the identity already holding the admin username.
// A record lacking the admin role or the cop permission is reported but
// not reconciled.
func (s *Sequencer) reportExistingAdmin(ctx context.Context, username string) {
	existing, err := s.store.GetUser(ctx, username)
	if err != nil {
		logger.WarnCtx(ctx, "admin identity exists but could not be read", logger.KeyUsername, username, logger.KeyError, err)
		return
	}
	if !existing.IsAdmin() || !existing.HasPermission(models.PermCOP) {
		logger.WarnCtx(ctx, "admin identity exists without admin privileges",
			logger.KeyUsername, username, "realname", existing.GetDisplayName(), "role", existing.Role)
		return
	}
	logger.InfoCtx(ctx, "admin identity exists", logger.KeyUsername, username, "realname", existing.GetDisplayName())
}

// EnsureQueueIndex creates the unique job_args index on the queue.
func (s *Sequencer) EnsureQueueIndex(ctx context.Context) error {
	return s.once(ctx, StepQueueIndex, &s.state.QueueIndex, func(ctx context.Context) (string, error) {
		return s.ensureIndex(ctx, StepQueueIndex, s.cfg.Collections.Queue, store.IndexModel{
			Name:    models.IndexJobArgs,
			Columns: []string{models.ColumnName, models.ColumnArgsHash},
			Unique:  true,
		})
	})
}

// EnsureStdoutIndex keeps the ttl index of the stdout collection in line
// with the configured expiry. A positive TTL creates the index when absent;
// a zero TTL drops it when present. An existing index is never altered to a
// different expiry.
func (s *Sequencer) EnsureStdoutIndex(ctx context.Context) error {
	return s.once(ctx, StepStdoutIndex, &s.state.StdoutIndex, func(ctx context.Context) (string, error) {
		name := s.cfg.Collections.Stdout
		ttl := s.cfg.StdoutTTL

		if ttl > 0 {
			return s.ensureIndex(ctx, StepStdoutIndex, name, store.IndexModel{
				Name:               models.IndexTTL,
				Columns:            []string{models.ColumnTimestamp},
				ExpireAfterSeconds: ttl,
			})
		}

		coll := s.store.Collection(name)
		info, err := coll.IndexInformation(ctx)
		if err != nil {
			return "", &StoreUnavailableError{Step: StepStdoutIndex, Collection: name, Err: err}
		}
		if _, ok := info[models.IndexTTL]; !ok {
			return metrics.OutcomeExists, nil
		}
		if err := coll.DropIndex(ctx, models.IndexTTL); err != nil && !store.IsIndexNotFound(err) {
			return "", &StoreUnavailableError{Step: StepStdoutIndex, Collection: name, Err: err}
		}
		logger.WarnCtx(ctx, "dropped index", logger.KeyCollection, name, logger.KeyIndex, models.IndexTTL)
		return metrics.OutcomeDropped, nil
	})
}

// EnsureStatIndex creates the timestamp index on the stat collection.
func (s *Sequencer) EnsureStatIndex(ctx context.Context) error {
	return s.once(ctx, StepStatIndex, &s.state.StatIndex, func(ctx context.Context) (string, error) {
		return s.ensureIndex(ctx, StepStatIndex, s.cfg.Collections.Stat, store.IndexModel{
			Name:    models.IndexTimestamp,
			Columns: []string{models.ColumnTimestamp},
		})
	})
}

// ensureIndex creates model on the collection unless an index of that name
// is already present.
func (s *Sequencer) ensureIndex(ctx context.Context, step, name string, model store.IndexModel) (string, error) {
	telemetry.SetAttributes(ctx, telemetry.Collection(name), telemetry.Index(model.Name))

	coll := s.store.Collection(name)
	info, err := coll.IndexInformation(ctx)
	if err != nil {
		return "", &StoreUnavailableError{Step: step, Collection: name, Err: err}
	}
	if _, ok := info[model.Name]; ok {
		return metrics.OutcomeExists, nil
	}

	if err := coll.CreateIndex(ctx, model); err != nil {
		return "", &StoreUnavailableError{Step: step, Collection: name, Err: err}
	}

	args := []any{logger.KeyCollection, name, logger.KeyIndex, model.Name}
	if model.ExpireAfterSeconds > 0 {
		args = append(args, logger.KeyTTL, model.ExpireAfterSeconds)
	}
	logger.InfoCtx(ctx, "created index", args...)
	return metrics.OutcomeCreated, nil
}
