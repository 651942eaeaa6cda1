package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m), buf.String())
	buf.Reset()
	return m
}

func TestZerologAdapterFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := NewZerologAdapter(zerolog.New(&buf).Level(zerolog.DebugLevel))

	l.Info("grid rendered",
		String("renderer", "fixed"),
		Int("rows", 32),
		Int32("maxIterations", 500),
		Float64("mean", 12.5),
		Bool("cached", false),
		Duration("elapsed", 1500*time.Millisecond),
		Field{Key: "shape", Value: []int{4, 2}},
	)
	m := decodeLine(t, &buf)
	assert.Equal(t, "info", m["level"])
	assert.Equal(t, "grid rendered", m["message"])
	assert.Equal(t, "fixed", m["renderer"])
	assert.EqualValues(t, 32, m["rows"])
	assert.EqualValues(t, 500, m["maxIterations"])
	assert.EqualValues(t, 12.5, m["mean"])
	assert.Equal(t, false, m["cached"])
	assert.EqualValues(t, 1500, m["elapsed"])
	assert.Equal(t, []any{float64(4), float64(2)}, m["shape"])

	l.Error("render failed", errors.New("boom"), Err(errors.New("ignored twice")))
	m = decodeLine(t, &buf)
	assert.Equal(t, "error", m["level"])
	assert.NotEmpty(t, m["error"])

	l.Warn("slow", String("route", "/mb-compute"))
	assert.Equal(t, "warn", decodeLine(t, &buf)["level"])

	l.Debug("tick")
	assert.Equal(t, "debug", decodeLine(t, &buf)["level"])

	l.Printf("listening on %s", ":8000")
	assert.Equal(t, "listening on :8000", decodeLine(t, &buf)["message"])
}

func TestNewLoggerTagsComponent(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewLogger(&buf, "server").Info("started")
	m := decodeLine(t, &buf)
	assert.Equal(t, "server", m["component"])
	assert.Contains(t, m, "time")

	var _ Logger = NewLogger(&buf, "x")
}
