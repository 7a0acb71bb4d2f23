package forward

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/config"
)

func newForwarder(t *testing.T, mode Mode, argv ...string) *Forwarder {
	t.Helper()
	f := &Forwarder{
		Argv:  argv,
		Mode:  mode,
		State: filepath.Join(t.TempDir(), "forward.pid"),
	}
	t.Cleanup(func() { _ = f.Stop(context.Background()) })
	return f
}

func running(t *testing.T, f *Forwarder) bool {
	t.Helper()
	ok, err := f.Running(context.Background())
	require.NoError(t, err)
	return ok
}

func TestHelperCommand(t *testing.T) {
	assert.Equal(t,
		[]string{"socat", "TCP-LISTEN:3000,fork", "TCP:127.0.0.1:3000"},
		HelperCommand(3000, "127.0.0.1:3000"))
}

func TestNew_FromConfig(t *testing.T) {
	cfg := &config.Config{RawState: t.TempDir()}
	f := New(cfg, nil)
	assert.Equal(t, Handle, f.Mode)
	assert.Equal(t, HelperCommand(3000, "127.0.0.1:3000"), f.Argv)
	assert.Equal(t, filepath.Join(cfg.StateDir(), "forward.pid"), f.State)
}

func TestToggle_HandleModeTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	f := newForwarder(t, Handle, "sleep", "300")
	require.False(t, running(t, f))

	on, err := f.Toggle(ctx)
	require.NoError(t, err)
	assert.True(t, on)
	assert.True(t, running(t, f))
	assert.FileExists(t, f.State)

	off, err := f.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, off)
	assert.Eventually(t, func() bool { return !running(t, f) }, 5*time.Second, 50*time.Millisecond)
	assert.NoFileExists(t, f.State)
}

func TestToggle_ProbeModeTwiceRestoresState(t *testing.T) {
	ctx := context.Background()
	f := newForwarder(t, Probe, "sleep", "1234.5678")
	require.False(t, running(t, f))

	on, err := f.Toggle(ctx)
	require.NoError(t, err)
	assert.True(t, on)
	assert.Eventually(t, func() bool { return running(t, f) }, 5*time.Second, 50*time.Millisecond)
	assert.NoFileExists(t, f.State, "probe mode keeps no record")

	off, err := f.Toggle(ctx)
	require.NoError(t, err)
	assert.False(t, off)
	assert.Eventually(t, func() bool { return !running(t, f) }, 5*time.Second, 50*time.Millisecond)
}

func TestHandle_IgnoresLookAlikeProcess(t *testing.T) {
	ctx := context.Background()
	probe := newForwarder(t, Probe, "sleep", "2345.6789")
	require.NoError(t, probe.Start(ctx))
	require.Eventually(t, func() bool { return running(t, probe) }, 5*time.Second, 50*time.Millisecond)

	// Same command line, but not started through this handle.
	handle := newForwarder(t, Handle, "sleep", "2345.6789")
	assert.False(t, running(t, handle))
}

func TestHandle_StaleRecordDiscarded(t *testing.T) {
	f := newForwarder(t, Handle, "sleep", "300")
	rec := Record{PID: int32(os.Getpid()), Argv: []string{"something", "else"}}
	require.NoError(t, writeRecord(f.State, rec))

	assert.False(t, running(t, f))
	assert.NoFileExists(t, f.State)
}

func TestHandle_CorruptRecord(t *testing.T) {
	f := newForwarder(t, Handle, "sleep", "300")
	require.NoError(t, os.WriteFile(f.State, []byte("{not json"), 0o644))

	_, err := f.Running(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing forward record")
	require.NoError(t, os.Remove(f.State))
}

func TestStop_NotRunning(t *testing.T) {
	f := newForwarder(t, Handle, "sleep", "300")
	assert.NoError(t, f.Stop(context.Background()))
}

func TestStart_MissingHelper(t *testing.T) {
	f := newForwarder(t, Handle, "nonexistent-helper-xyz-123")
	err := f.Start(context.Background())
	require.Error(t, err)
	assert.NoFileExists(t, f.State)
}

func TestStart_HelperExitsImmediately(t *testing.T) {
	for _, mode := range []Mode{Handle, Probe} {
		f := newForwarder(t, mode, "sh", "-c", "echo address in use >&2; exit 1")
		err := f.Start(context.Background())
		require.Error(t, err, mode)
		assert.Contains(t, err.Error(), "exited right after starting", mode)
		assert.NoFileExists(t, f.State, mode)
	}
}

func TestUnknownMode(t *testing.T) {
	f := &Forwarder{Argv: []string{"sleep", "1"}, Mode: "guess"}
	_, err := f.Running(context.Background())
	assert.Error(t, err)
}
