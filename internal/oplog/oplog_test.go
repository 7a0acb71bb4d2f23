package oplog

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/logging"
	"github.com/zeebie-the-zebra/Podman-Open-WebUI-Manager-GUI/internal/relay"
)

var linePattern = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] `)

func TestFormat(t *testing.T) {
	ts := time.Date(2024, 3, 9, 7, 5, 1, 0, time.Local)
	assert.Equal(t, "[2024-03-09 07:05:01] Starting container...", Format(ts, "Starting container..."))
}

func TestMessage_PersistsAndPublishes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "ops.log")
	stream := relay.NewStream("ops", 16)
	l := New(path, stream, logging.Discard())

	l.Message("first")
	l.Printf("Failed to start (exit code %d)", 125)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Regexp(t, linePattern, lines[0])
	assert.True(t, strings.HasSuffix(lines[0], "first"))
	assert.True(t, strings.HasSuffix(lines[1], "Failed to start (exit code 125)"))

	for _, want := range lines {
		got, ok := stream.TryTake()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestMessage_AppendsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.log")
	New(path, nil, logging.Discard()).Message("one")
	New(path, nil, logging.Discard()).Message("two")

	text, err := New(path, nil, logging.Discard()).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(text, "\n"))
	assert.Less(t, strings.Index(text, "one"), strings.Index(text, "two"))
}

func TestMessage_UnwritableFileStillPublishes(t *testing.T) {
	dir := t.TempDir()
	// A directory where the file should be makes every append fail.
	path := filepath.Join(dir, "ops.log")
	require.NoError(t, os.Mkdir(path, 0o755))

	stream := relay.NewStream("ops", 4)
	New(path, stream, logging.Discard()).Message("still shown")

	got, ok := stream.TryTake()
	require.True(t, ok)
	assert.Contains(t, got, "still shown")
}

func TestReadAll_Missing(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "missing.log"), nil, logging.Discard()).ReadAll()
	assert.ErrorIs(t, err, os.ErrNotExist)
}
