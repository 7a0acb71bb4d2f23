package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/runner"
)

func record(id string, at time.Time, code int) *RunRecord {
	return &RunRecord{ID: id, Argv: []string{"podman", "pull", "img"}, ExitCode: code, StartedAt: at}
}

func TestDiskStore_SaveLoad(t *testing.T) {
	s := NewDiskStore(filepath.Join(t.TempDir(), "runs"))
	rec := record("abc", time.Now().Truncate(time.Second), 0)

	require.NoError(t, s.Save(rec))
	got, err := s.Load("abc")
	require.NoError(t, err)
	assert.Equal(t, rec.Argv, got.Argv)
	assert.True(t, rec.StartedAt.Equal(got.StartedAt))
}

func TestDiskStore_LoadMissing(t *testing.T) {
	s := NewDiskStore(t.TempDir())
	_, err := s.Load("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDiskStore_ListNewestFirst(t *testing.T) {
	s := NewDiskStore(t.TempDir())
	base := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, s.Save(record(fmt.Sprintf("r%d", i), base.Add(time.Duration(i)*time.Second), 0)))
	}
	// Stray files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("x"), 0o644))

	recs, err := s.List(2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "r3", recs[0].ID)
	assert.Equal(t, "r2", recs[1].ID)

	all, err := s.List(0)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestDiskStore_ListWithoutDirectory(t *testing.T) {
	s := NewDiskStore(filepath.Join(t.TempDir(), "never-created"))
	recs, err := s.List(10)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

type countingStore struct {
	Store
	loads int
}

func (c *countingStore) Load(id string) (*RunRecord, error) {
	c.loads++
	return c.Store.Load(id)
}

func TestLRUStore_CachesAndEvicts(t *testing.T) {
	back := &countingStore{Store: NewDiskStore(t.TempDir())}
	s := NewLRUStore(2, back)
	now := time.Now()

	require.NoError(t, s.Save(record("a", now, 0)))
	require.NoError(t, s.Save(record("b", now, 0)))

	_, err := s.Load("a")
	require.NoError(t, err)
	assert.Equal(t, 0, back.loads, "cached record read from disk")

	require.NoError(t, s.Save(record("c", now, 0))) // evicts b
	_, err = s.Load("b")
	require.NoError(t, err)
	assert.Equal(t, 1, back.loads)
}

func TestRecorder_StoresRunnerResults(t *testing.T) {
	s := NewDiskStore(t.TempDir())
	rec := &Recorder{Store: s}

	rec.Record(&runner.Result{RunID: "ok", Argv: []string{"echo", "hi"}, StartedAt: time.Now()})
	rec.Record(&runner.Result{
		RunID:     "bad",
		Argv:      []string{"missing"},
		ExitCode:  runner.LaunchFailed,
		StartedAt: time.Now().Add(time.Second),
		Err:       errors.New("executable file not found"),
	})

	recs, err := s.List(0)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "launch-failed", recs[0].Status())
	assert.Equal(t, "executable file not found", recs[0].Error)
	assert.Equal(t, "ok", recs[1].Status())
	assert.Equal(t, "echo hi", recs[1].Command())
}

func TestRecorder_ReportsSaveFailure(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))

	var failed *RunRecord
	rec := &Recorder{
		Store:   NewDiskStore(filepath.Join(file, "runs")),
		OnError: func(r *RunRecord, err error) { failed = r },
	}
	rec.Record(&runner.Result{RunID: "x", Argv: []string{"true"}})
	require.NotNil(t, failed)
	assert.Equal(t, "x", failed.ID)
}

func TestStatus_ExitCode(t *testing.T) {
	assert.Equal(t, "exit 125", record("x", time.Now(), 125).Status())
	assert.Equal(t, "abandoned", record("y", time.Now(), runner.Abandoned).Status())
}
