// Package store provides the apiserve backing store.
//
// The store holds the administrative identity, the job queue, captured job
// output and statistics. It also exposes a collection/index abstraction used
// by the bootstrap sequencer to create the indexes those collections need.
//
// Two backends are supported:
//   - SQLite (single-node, default)
//   - PostgreSQL
package store

import (
	"context"
	"time"

	"github.com/marmos91/apiserve/pkg/controlplane/models"
)

// IndexModel describes an index on a collection.
type IndexModel struct {
	// Name is the logical index name, unique within the collection.
	Name string

	// Columns are the indexed columns, in order.
	Columns []string

	Unique bool

	// ExpireAfterSeconds, when positive, removes rows whose first indexed
	// column is older than this many seconds.
	ExpireAfterSeconds int
}

// IndexedCollection is a named collection whose indexes can be inspected
// and changed.
type IndexedCollection interface {
	Name() string

	// IndexInformation returns the indexes present on the collection, keyed
	// by logical name.
	IndexInformation(ctx context.Context) (map[string]IndexModel, error)

	// CreateIndex creates the index if it does not exist.
	CreateIndex(ctx context.Context, model IndexModel) error

	// DropIndex removes the index. Returns models.ErrIndexNotFound if the
	// collection has no index with that name.
	DropIndex(ctx context.Context, name string) error
}

// Store is the backing store interface.
//
// Thread Safety: implementations must be safe for concurrent use.
type Store interface {
	// CreateUser creates a new user and returns its ID.
	// Returns models.ErrDuplicateUser if the username is taken.
	CreateUser(ctx context.Context, user *models.User) (string, error)

	// GetUser returns a user by username.
	// Returns models.ErrUserNotFound if the user doesn't exist.
	GetUser(ctx context.Context, username string) (*models.User, error)

	ListUsers(ctx context.Context) ([]*models.User, error)

	// Collection returns a handle on the named collection.
	Collection(name string) IndexedCollection

	// EnqueueJob adds a job to the queue collection.
	// Returns models.ErrDuplicateJob if an identical job is already queued.
	EnqueueJob(ctx context.Context, name string, args any) (*models.QueueJob, error)

	ListJobs(ctx context.Context) ([]*models.QueueJob, error)

	// AppendStdout stores one line of job output.
	AppendStdout(ctx context.Context, jobID, line string, at time.Time) error

	ListStdout(ctx context.Context, jobID string) ([]*models.StdoutLine, error)

	// RecordStat stores a statistic. value is encoded as JSON.
	RecordStat(ctx context.Context, name string, value any, at time.Time) error

	// ExpireStale deletes rows past the expiry of every index that carries
	// one and returns the number of rows removed per collection.
	ExpireStale(ctx context.Context, now time.Time) (map[string]int64, error)

	Healthcheck(ctx context.Context) error
	Close() error
}
