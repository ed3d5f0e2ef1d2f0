package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/marmos91/apiserve/pkg/controlplane/models"
)

func (s *GORMStore) AppendStdout(ctx context.Context, jobID, line string, at time.Time) error {
	entry := &models.StdoutLine{
		ID:        uuid.New().String(),
		JobID:     jobID,
		Timestamp: at.UTC(),
		Line:      line,
	}
	if err := s.db.WithContext(ctx).Table(s.collections.Stdout).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append stdout: %w", err)
	}
	return nil
}

func (s *GORMStore) ListStdout(ctx context.Context, jobID string) ([]*models.StdoutLine, error) {
	var lines []*models.StdoutLine
	err := s.db.WithContext(ctx).Table(s.collections.Stdout).
		Where("job_id = ?", jobID).
		Order("timestamp").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *GORMStore) RecordStat(ctx context.Context, name string, value any, at time.Time) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode stat %s: %w", name, err)
	}
	rec := &models.StatRecord{
		ID:        uuid.New().String(),
		Timestamp: at.UTC(),
		Name:      name,
		Value:     string(data),
	}
	if err := s.db.WithContext(ctx).Table(s.collections.Stat).Create(rec).Error; err != nil {
		return fmt.Errorf("failed to record stat %s: %w", name, err)
	}
	return nil
}
