package store_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"invest/internal/models"
	"invest/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// MockSnapshot is a mock implementation of store.Snapshotter for assets.
type MockSnapshot struct {
	mock.Mock
}

func (m *MockSnapshot) Load() ([]models.Asset, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Asset), args.Error(1)
}

func (m *MockSnapshot) Save(records []models.Asset) error {
	args := m.Called(records)
	return args.Error(0)
}

func openFileStore(t *testing.T, dir string) *store.Store[models.User] {
	t.Helper()
	snap := store.NewFileSnapshot[models.User](filepath.Join(dir, "users.json"))
	return store.Open[models.User]("users", snap, zap.NewNop())
}

func TestStore_EmptyWhenSnapshotMissing(t *testing.T) {
	s := openFileStore(t, t.TempDir())

	assert.NoError(t, s.LoadErr())
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, s.NextID())
}

func TestStore_InsertAssignsIncreasingIDs(t *testing.T) {
	s := openFileStore(t, t.TempDir())

	for i, name := range []string{"alice", "bob", "carol"} {
		u, err := s.Insert(models.User{Username: name, Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, i+1, u.ID)
	}
	assert.Equal(t, 4, s.NextID())
}

func TestStore_IDsSurviveRestartAndDeletion(t *testing.T) {
	dir := t.TempDir()
	s := openFileStore(t, dir)

	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := s.Insert(models.User{Username: name})
		require.NoError(t, err)
	}
	require.NoError(t, s.DeleteWhere(3))

	// The counter is not recomputed after a delete within a run.
	u, err := s.Insert(models.User{Username: "dave"})
	require.NoError(t, err)
	assert.Equal(t, 4, u.ID)

	reopened := openFileStore(t, dir)
	require.NoError(t, reopened.LoadErr())
	assert.Equal(t, 5, reopened.NextID())
	u, err = reopened.Insert(models.User{Username: "erin"})
	require.NoError(t, err)
	assert.Equal(t, 5, u.ID)
}

func TestStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	snap := store.NewFileSnapshot[models.Asset](filepath.Join(dir, "assets.json"))
	s := store.Open[models.Asset]("assets", snap, zap.NewNop())

	inputs := []models.Asset{
		{OwnerID: 1, Type: "Stock", Value: 800.125},
		{OwnerID: 2, Type: "Bond", Value: 0.1 + 0.2},
		{OwnerID: 1, Type: "Real Estate", Value: 1e15 + 0.5},
	}
	for _, a := range inputs {
		_, err := s.Insert(a)
		require.NoError(t, err)
	}

	reopened := store.Open[models.Asset]("assets", snap, zap.NewNop())
	require.NoError(t, reopened.LoadErr())
	if diff := cmp.Diff(s.All(), reopened.All()); diff != "" {
		t.Errorf("reloaded collection mismatch (-saved +loaded):\n%s", diff)
	}
}

func TestStore_CorruptSnapshotStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.json"), []byte("{not json"), 0o644))

	s := openFileStore(t, dir)

	assert.Error(t, s.LoadErr())
	assert.True(t, errors.Is(s.LoadErr(), store.ErrPersist))
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 1, s.NextID())
}

func TestStore_FindByIDAndFindAll(t *testing.T) {
	s := openFileStore(t, t.TempDir())
	_, _ = s.Insert(models.User{Username: "alice"})
	_, _ = s.Insert(models.User{Username: "bob"})

	u, ok := s.FindByID(2)
	assert.True(t, ok)
	assert.Equal(t, "bob", u.Username)

	_, ok = s.FindByID(42)
	assert.False(t, ok)

	found := s.FindAll(func(u models.User) bool { return u.Username != "bob" })
	assert.Equal(t, []models.User{{ID: 1, Username: "alice"}}, found)
}

func TestStore_UpdateWhere(t *testing.T) {
	s := openFileStore(t, t.TempDir())
	_, _ = s.Insert(models.User{Username: "alice", Password: "old"})

	err := s.UpdateWhere(1, func(u *models.User) {
		u.Password = "new"
		u.ID = 99
	})
	require.NoError(t, err)

	u, ok := s.FindByID(1)
	require.True(t, ok)
	assert.Equal(t, "new", u.Password)

	err = s.UpdateWhere(7, func(u *models.User) { u.Password = "x" })
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_UpdateMissingDoesNotWrite(t *testing.T) {
	snap := new(MockSnapshot)
	snap.On("Load").Return(nil, nil).Once()
	s := store.Open[models.Asset]("assets", snap, zap.NewNop())

	err := s.UpdateWhere(1, func(a *models.Asset) { a.Value = 1 })
	assert.ErrorIs(t, err, store.ErrNotFound)
	snap.AssertNotCalled(t, "Save", mock.Anything)
	snap.AssertExpectations(t)
}

func TestStore_DeleteMissingStillPersists(t *testing.T) {
	existing := []models.Asset{{ID: 1, OwnerID: 1, Type: "Stock", Value: 10}}
	snap := new(MockSnapshot)
	snap.On("Load").Return(existing, nil).Once()
	snap.On("Save", existing).Return(nil).Once()
	s := store.Open[models.Asset]("assets", snap, zap.NewNop())

	err := s.DeleteWhere(5)
	assert.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	snap.AssertExpectations(t)
}

func TestStore_SaveFailureKeepsMutation(t *testing.T) {
	snap := new(MockSnapshot)
	snap.On("Load").Return(nil, nil).Once()
	snap.On("Save", mock.Anything).Return(errors.New("disk full")).Once()
	s := store.Open[models.Asset]("assets", snap, zap.NewNop())

	a, err := s.Insert(models.Asset{OwnerID: 1, Type: "Stock", Value: 10})
	assert.ErrorIs(t, err, store.ErrPersist)
	assert.Equal(t, 1, a.ID)

	got, ok := s.FindByID(1)
	assert.True(t, ok)
	assert.Equal(t, a, got)
	snap.AssertExpectations(t)
}

func TestFileSnapshot_SaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	snap := store.NewFileSnapshot[models.User](filepath.Join(dir, "users.json"))

	require.NoError(t, snap.Save(nil))
	require.NoError(t, snap.Save([]models.User{{ID: 1, Username: "alice", Password: "pw"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "users.json", entries[0].Name())

	loaded, err := snap.Load()
	require.NoError(t, err)
	assert.Equal(t, []models.User{{ID: 1, Username: "alice", Password: "pw"}}, loaded)
}

func TestFileSnapshot_SaveFailsWhenDirectoryMissing(t *testing.T) {
	snap := store.NewFileSnapshot[models.User](filepath.Join(t.TempDir(), "missing", "users.json"))
	assert.Error(t, snap.Save([]models.User{{ID: 1}}))
}
