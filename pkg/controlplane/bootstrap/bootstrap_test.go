package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/apiserve/internal/logger"
	"github.com/marmos91/apiserve/pkg/controlplane/models"
	"github.com/marmos91/apiserve/pkg/controlplane/store"
)

// countingStore is an in-memory Store that counts every call.
type countingStore struct {
	mu        sync.Mutex
	users     map[string]*models.User
	indexes   map[string]map[string]store.IndexModel
	calls     int
	mutations int
	failWith  error
}

func newCountingStore() *countingStore {
	return &countingStore{
		users:   map[string]*models.User{},
		indexes: map[string]map[string]store.IndexModel{},
	}
}

func (s *countingStore) CreateUser(_ context.Context, user *models.User) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failWith != nil {
		return "", s.failWith
	}
	if _, ok := s.users[user.Username]; ok {
		return "", models.ErrDuplicateUser
	}
	s.mutations++
	s.users[user.Username] = user
	return "id-" + user.Username, nil
}

func (s *countingStore) GetUser(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failWith != nil {
		return nil, s.failWith
	}
	u, ok := s.users[username]
	if !ok {
		return nil, models.ErrUserNotFound
	}
	return u, nil
}

func (s *countingStore) Collection(name string) store.IndexedCollection {
	return &countingCollection{s: s, name: name}
}

type countingCollection struct {
	s    *countingStore
	name string
}

func (c *countingCollection) Name() string { return c.name }

func (c *countingCollection) IndexInformation(context.Context) (map[string]store.IndexModel, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.calls++
	if c.s.failWith != nil {
		return nil, c.s.failWith
	}
	out := map[string]store.IndexModel{}
	for k, v := range c.s.indexes[c.name] {
		out[k] = v
	}
	return out, nil
}

func (c *countingCollection) CreateIndex(_ context.Context, model store.IndexModel) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.calls++
	c.s.mutations++
	if c.s.indexes[c.name] == nil {
		c.s.indexes[c.name] = map[string]store.IndexModel{}
	}
	c.s.indexes[c.name][model.Name] = model
	return nil
}

func (c *countingCollection) DropIndex(_ context.Context, name string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.calls++
	if _, ok := c.s.indexes[c.name][name]; !ok {
		return models.ErrIndexNotFound
	}
	c.s.mutations++
	delete(c.s.indexes[c.name], name)
	return nil
}

func testConfig(t *testing.T, ttl int) Config {
	t.Helper()
	return Config{
		Folders: Folders{
			Root:     t.TempDir(),
			Transfer: "transfer",
			Process:  "process",
			Archive:  "archive",
			Temp:     "temp",
		},
		Admin: Admin{
			Username: "admin",
			Realname: "Administrator",
			Password: "s3cret",
			Contact:  "ops@example.com",
		},
		Collections: store.Collections{Queue: "sys_queue", Stdout: "sys_stdout", Stat: "sys_stat"},
		StdoutTTL:   ttl,
	}
}

func TestRunAll_CreatesEverything(t *testing.T) {
	cfg := testConfig(t, 604800)
	st := newCountingStore()

	seq := New(cfg, st, nil)
	require.NoError(t, seq.RunAll(context.Background()))
	assert.True(t, seq.State().Done())

	for _, name := range []string{"transfer", "process", "archive", "temp"} {
		info, err := os.Stat(filepath.Join(cfg.Folders.Root, name))
		require.NoError(t, err, name)
		assert.True(t, info.IsDir())
		assert.Equal(t, os.FileMode(0o750), info.Mode().Perm()&0o750)
	}

	admin := st.users["admin"]
	require.NotNil(t, admin)
	assert.True(t, admin.IsAdmin())
	assert.Equal(t, []string{models.PermCOP}, admin.GetPermissions())
	assert.Equal(t, "Administrator", admin.DisplayName)
	assert.Equal(t, "ops@example.com", admin.Email)
	assert.True(t, models.VerifyPassword("s3cret", admin.PasswordHash))

	jobArgs := st.indexes["sys_queue"][models.IndexJobArgs]
	assert.True(t, jobArgs.Unique)
	assert.Equal(t, []string{"name", "args_hash"}, jobArgs.Columns)

	ttl := st.indexes["sys_stdout"][models.IndexTTL]
	assert.Equal(t, 604800, ttl.ExpireAfterSeconds)
	assert.Equal(t, []string{"timestamp"}, ttl.Columns)

	stat := st.indexes["sys_stat"][models.IndexTimestamp]
	assert.False(t, stat.Unique)
	assert.Zero(t, stat.ExpireAfterSeconds)
}

func TestRunAll_InProcessIdempotence(t *testing.T) {
	cfg := testConfig(t, 60)
	st := newCountingStore()
	seq := New(cfg, st, nil)

	require.NoError(t, seq.RunAll(context.Background()))
	callsAfterFirst := st.calls

	require.NoError(t, seq.RunAll(context.Background()))
	require.NoError(t, seq.EnsureAdminIdentity(context.Background()))
	assert.Equal(t, callsAfterFirst, st.calls, "second run must not touch the store")
}

func TestRunAll_SharedStateAcrossSequencers(t *testing.T) {
	cfg := testConfig(t, 60)
	st := newCountingStore()
	state := &State{}

	require.NoError(t, New(cfg, st, state).RunAll(context.Background()))
	calls := st.calls

	require.NoError(t, New(cfg, st, state).RunAll(context.Background()))
	assert.Equal(t, calls, st.calls)
}

func TestRunAll_FreshStateRechecksStore(t *testing.T) {
	cfg := testConfig(t, 60)
	st := newCountingStore()

	require.NoError(t, New(cfg, st, nil).RunAll(context.Background()))
	calls, mutations := st.calls, st.mutations

	require.NoError(t, New(cfg, st, nil).RunAll(context.Background()))
	assert.Greater(t, st.calls, calls, "a fresh state checks the store again")
	assert.Equal(t, mutations, st.mutations, "but changes nothing")
}

func TestEnsureStdoutIndex_TTLToggle(t *testing.T) {
	tests := []struct {
		name        string
		ttl         int
		present     bool
		wantPresent bool
		wantMutated bool
	}{
		{"ttl set, index absent: create", 3600, false, true, true},
		{"ttl set, index present: keep", 3600, true, true, false},
		{"ttl zero, index present: drop", 0, true, false, true},
		{"ttl zero, index absent: nothing", 0, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newCountingStore()
			if tt.present {
				st.indexes["sys_stdout"] = map[string]store.IndexModel{
					models.IndexTTL: {Name: models.IndexTTL, Columns: []string{"timestamp"}, ExpireAfterSeconds: 120},
				}
			}

			seq := New(testConfig(t, tt.ttl), st, nil)
			require.NoError(t, seq.EnsureStdoutIndex(context.Background()))

			idx, ok := st.indexes["sys_stdout"][models.IndexTTL]
			assert.Equal(t, tt.wantPresent, ok)
			assert.Equal(t, tt.wantMutated, st.mutations > 0)

			if tt.wantPresent && !tt.present {
				assert.Equal(t, tt.ttl, idx.ExpireAfterSeconds)
			}
			if tt.present && tt.wantPresent {
				assert.Equal(t, 120, idx.ExpireAfterSeconds, "an existing index keeps its expiry")
			}
		})
	}
}

func TestEnsureAdminIdentity_DuplicateIsSuccess(t *testing.T) {
	st := newCountingStore()
	st.users["admin"] = &models.User{Username: "admin", DisplayName: "Old Name"}

	seq := New(testConfig(t, 0), st, nil)
	require.NoError(t, seq.EnsureAdminIdentity(context.Background()))

	assert.Equal(t, "Old Name", st.users["admin"].DisplayName, "existing identity is left as-is")
	assert.Len(t, st.users, 1)
}

func TestEnsureAdminIdentity_StaleRecordReported(t *testing.T) {
	logs := captureLogs(t)

	t.Run("lacking admin role", func(t *testing.T) {
		st := newCountingStore()
		st.users["admin"] = &models.User{Username: "admin", Role: string(models.RoleUser)}

		require.NoError(t, New(testConfig(t, 0), st, nil).EnsureAdminIdentity(context.Background()))

		assert.Equal(t, string(models.RoleUser), st.users["admin"].Role, "role is not reconciled")
		assert.Contains(t, logs.String(), "admin identity exists without admin privileges")
	})

	t.Run("complete record", func(t *testing.T) {
		existing := &models.User{Username: "admin", DisplayName: "Root", Role: string(models.RoleAdmin)}
		existing.SetPermissions([]string{models.PermCOP})
		st := newCountingStore()
		st.users["admin"] = existing

		require.NoError(t, New(testConfig(t, 0), st, nil).EnsureAdminIdentity(context.Background()))
		assert.Contains(t, logs.String(), "realname=Root")
	})
}

func TestEnsureAdminIdentity_GeneratesPassword(t *testing.T) {
	cfg := testConfig(t, 0)
	cfg.Admin.Password = ""
	st := newCountingStore()

	require.NoError(t, New(cfg, st, nil).EnsureAdminIdentity(context.Background()))

	admin := st.users["admin"]
	require.NotNil(t, admin)
	assert.NotEmpty(t, admin.PasswordHash)
	assert.False(t, models.VerifyPassword("", admin.PasswordHash))
}

func TestStoreFailureIsFatal(t *testing.T) {
	st := newCountingStore()
	st.failWith = errors.New("connection refused")

	seq := New(testConfig(t, 60), st, nil)
	err := seq.RunAll(context.Background())
	require.Error(t, err)

	var storeErr *StoreUnavailableError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, StepRole, storeErr.Step)
	assert.Equal(t, "users", storeErr.Collection)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "connection refused")

	assert.True(t, seq.State().Folder)
	assert.True(t, seq.State().Role, "a failed step is marked as run")
	assert.False(t, seq.State().QueueIndex, "later steps do not run")
}

func TestIndexStepFailureNamesCollection(t *testing.T) {
	st := newCountingStore()
	st.failWith = errors.New("disk I/O error")

	seq := New(testConfig(t, 60), st, nil)
	err := seq.EnsureStatIndex(context.Background())

	var storeErr *StoreUnavailableError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, "sys_stat", storeErr.Collection)
}

func TestEnsureFolders(t *testing.T) {
	t.Run("existing folders are kept", func(t *testing.T) {
		cfg := testConfig(t, 0)
		marker := filepath.Join(cfg.Folders.Root, "archive", "keep")
		require.NoError(t, os.MkdirAll(filepath.Dir(marker), 0o755))
		require.NoError(t, os.WriteFile(marker, []byte("x"), 0o600))

		require.NoError(t, New(cfg, newCountingStore(), nil).EnsureFolders(context.Background()))
		_, err := os.Stat(marker)
		assert.NoError(t, err)
	})

	t.Run("absolute folder ignores root", func(t *testing.T) {
		cfg := testConfig(t, 0)
		abs := filepath.Join(t.TempDir(), "elsewhere")
		cfg.Folders.Temp = abs

		require.NoError(t, New(cfg, newCountingStore(), nil).EnsureFolders(context.Background()))
		_, err := os.Stat(abs)
		assert.NoError(t, err)
	})

	t.Run("unwritable root fails", func(t *testing.T) {
		cfg := testConfig(t, 0)
		file := filepath.Join(cfg.Folders.Root, "file")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
		cfg.Folders.Root = file

		err := New(cfg, newCountingStore(), nil).EnsureFolders(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStoreUnavailable)

		var suErr *StoreUnavailableError
		require.ErrorAs(t, err, &suErr)
		assert.Equal(t, StepFolder, suErr.Step)
		assert.Equal(t, filepath.Join(file, "transfer"), suErr.Collection)
	})
}

func TestConcurrentRunAll(t *testing.T) {
	st := newCountingStore()
	seq := New(testConfig(t, 60), st, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, seq.RunAll(context.Background()))
		}()
	}
	wg.Wait()

	assert.Len(t, st.users, 1)
	assert.Equal(t, 4, st.mutations, "one user plus three indexes")
}

// syncBuffer is a bytes.Buffer safe for the logger and the test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureLogs(t *testing.T) *syncBuffer {
	t.Helper()
	buf := &syncBuffer{}
	logger.InitWithWriter(buf, "INFO", "text", false)
	t.Cleanup(func() { logger.InitWithWriter(os.Stdout, "INFO", "text", false) })
	return buf
}
