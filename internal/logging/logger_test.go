package logging

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNew_Level(t *testing.T) {
	t.Setenv("DEBUG", "")

	assert.Equal(t, logrus.InfoLevel, New(&bytes.Buffer{}, "").GetLevel())
	assert.Equal(t, logrus.WarnLevel, New(&bytes.Buffer{}, "warn").GetLevel())
	assert.Equal(t, logrus.InfoLevel, New(&bytes.Buffer{}, "chatty").GetLevel())

	t.Setenv("DEBUG", "true")
	assert.Equal(t, logrus.DebugLevel, New(&bytes.Buffer{}, "").GetLevel())
}

func TestNew_PlainOutputOffTerminal(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, "info")
	l.WithField("op", "start").Info("container started")

	out := buf.String()
	assert.Contains(t, out, "container started")
	assert.Contains(t, out, "op=start")
	assert.NotContains(t, out, "\x1b[")
}
