package bootstrap

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/codes"

	"github.com/marmos91/apiserve/internal/logger"
	"github.com/marmos91/apiserve/internal/telemetry"
	"github.com/marmos91/apiserve/pkg/controlplane/models"
	"github.com/marmos91/apiserve/pkg/controlplane/store"
	"github.com/marmos91/apiserve/pkg/metrics"
)

// Step names, in execution order.
const (
	StepFolder      = "folder"
	StepRole        = "role"
	StepQueueIndex  = "queue_index"
	StepStdoutIndex = "stdout_index"
	StepStatIndex   = "stat_index"
)

// Steps lists the step names in execution order.
var Steps = []string{StepFolder, StepRole, StepQueueIndex, StepStdoutIndex, StepStatIndex}

// Store is the part of the backing store the sequencer needs.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) (string, error)
	GetUser(ctx context.Context, username string) (*models.User, error)
	Collection(name string) store.IndexedCollection
}

// Folders are the working folders, relative to Root unless absolute.
type Folders struct {
	Root     string
	Transfer string
	Process  string
	Archive  string
	Temp     string
}

// Admin is the administrative identity created by the role step.
type Admin struct {
	Username string
	Realname string
	Password string // plain text; hashed before it reaches the store
	Contact  string
}

// Config configures the sequencer.
type Config struct {
	Folders     Folders
	Admin       Admin
	Collections store.Collections

	// StdoutTTL is the expiry of captured job output in seconds. Zero or
	// less removes the ttl index.
	StdoutTTL int
}

// State records which steps have run. The zero value has run nothing.
type State struct {
	Folder      bool
	Role        bool
	QueueIndex  bool
	StdoutIndex bool
	StatIndex   bool
}

// Done reports whether every step has run.
func (s *State) Done() bool {
	return s.Folder && s.Role && s.QueueIndex && s.StdoutIndex && s.StatIndex
}

// Sequencer runs the bootstrap steps. It is safe for concurrent use; steps
// are serialized.
type Sequencer struct {
	mu      sync.Mutex
	cfg     Config
	store   Store
	state   *State
	metrics metrics.BootstrapMetrics
}

// New creates a sequencer. state carries the has-run flags; nil starts from
// a fresh State.
func New(cfg Config, st Store, state *State) *Sequencer {
	if state == nil {
		state = &State{}
	}
	return &Sequencer{
		cfg:     cfg,
		store:   st,
		state:   state,
		metrics: metrics.NewBootstrapMetrics(),
	}
}

// State returns the sequencer's state.
func (s *Sequencer) State() *State {
	return s.state
}

// RunAll runs every step in order and stops at the first failure.
func (s *Sequencer) RunAll(ctx context.Context) error {
	steps := []func(context.Context) error{
		s.EnsureFolders,
		s.EnsureAdminIdentity,
		s.EnsureQueueIndex,
		s.EnsureStdoutIndex,
		s.EnsureStatIndex,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// once runs fn unless flag is already set. The flag is set before fn runs,
// so a failed step is not retried in the same process.
func (s *Sequencer) once(ctx context.Context, step string, flag *bool, fn func(context.Context) (string, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if *flag {
		s.record(step, metrics.OutcomeSkipped)
		return nil
	}
	*flag = true

	ctx, span := telemetry.StartBootstrapSpan(ctx, step)
	defer span.End()

	outcome, err := fn(ctx)
	if err != nil {
		outcome = metrics.OutcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.ErrorCtx(ctx, "bootstrap step failed", logger.KeyStep, step, logger.KeyError, err)
	}
	span.SetAttributes(telemetry.BootstrapOutcome(outcome))
	s.record(step, outcome)
	return err
}

func (s *Sequencer) record(step, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordStep(step, outcome)
	}
}
