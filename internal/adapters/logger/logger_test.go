package logger_test

import (
	"bytes"
	"testing"

	"github.com/kilnbuild/kiln/internal/adapters/logger"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/zerr"
)

func TestLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := logger.New()
	l.SetOutput(&buf)

	l.Info("building model")
	l.Warn("output drifted")
	l.Error(zerr.New("command failed"))

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "building model")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "output drifted")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "command failed")
}
