package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/marmos91/apiserve/pkg/controlplane/models"
)

// CanonicalArgs encodes args as JSON with object keys sorted at every level,
// so equal arguments always produce equal bytes.
func CanonicalArgs(args any) ([]byte, error) {
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job args: %w", err)
	}
	// Round-trip through a generic value: encoding/json sorts map keys.
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("failed to normalize job args: %w", err)
	}
	return json.Marshal(generic)
}

// HashArgs returns the hex SHA-256 of the canonical JSON of args. Together
// with the job name it identifies a queued job.
func HashArgs(args any) (string, error) {
	canonical, err := CanonicalArgs(args)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func (s *GORMStore) EnqueueJob(ctx context.Context, name string, args any) (*models.QueueJob, error) {
	if name == "" {
		return nil, fmt.Errorf("job name is required")
	}

	canonical, err := CanonicalArgs(args)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(canonical)

	job := &models.QueueJob{
		Name:       name,
		ArgsHash:   hex.EncodeToString(sum[:]),
		Args:       string(canonical),
		EnqueuedAt: time.Now().UTC(),
	}

	if _, err := createWithID(s.db.Table(s.collections.Queue), ctx, job,
		func(j *models.QueueJob, id string) { j.ID = id }, job.ID, models.ErrDuplicateJob); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *GORMStore) ListJobs(ctx context.Context) ([]*models.QueueJob, error) {
	return listAll[models.QueueJob](s.db.Table(s.collections.Queue), ctx, "enqueued_at")
}
