package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "debug", Format: FormatJSON, Output: &buf})

	logger.Debug().Str(FieldTraceID, "abc").Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "hello", entry["message"])
	assert.Equal(t, "abc", entry[FieldTraceID])
	assert.Equal(t, "webcarbon", entry[FieldService])
	assert.NotContains(t, entry, FieldComponent)
	assert.Contains(t, entry, "time")
}

func TestNew_ChildComponentAppearsOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", Format: FormatJSON, Output: &buf})
	child := logger.With().Str(FieldComponent, "analyzer").Logger()

	child.Info().Msg("ready")

	line := buf.String()
	assert.Equal(t, 1, strings.Count(line, `"`+FieldComponent+`":`))
	assert.Equal(t, 1, strings.Count(line, `"`+FieldService+`":`))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "analyzer", entry[FieldComponent])
	assert.Equal(t, "webcarbon", entry[FieldService])
}

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{" ERROR ", zerolog.ErrorLevel},
		{"nonsense", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(Config{Level: tt.in, Output: &bytes.Buffer{}}).GetLevel(), tt.in)
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Format: "console", Output: &buf})

	logger.Info().Msg("ready")

	assert.Contains(t, buf.String(), "ready")
	assert.False(t, json.Valid(buf.Bytes()))
}

func TestTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, TraceID(ctx))

	ctx = WithTraceID(ctx, "fixed")
	got, id := EnsureTraceID(ctx)
	assert.Equal(t, "fixed", id)
	assert.Equal(t, "fixed", TraceID(got))

	_, generated := EnsureTraceID(context.Background())
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
}
