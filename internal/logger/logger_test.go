package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nope"))
}

func TestLogger_WithRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Service: "restaurant-api", Level: "debug", Output: &buf})

	ctx := l.WithRequestID(context.Background(), "req-1")
	l.Error(ctx, "boom", errors.New("db down"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "restaurant-api", line["service"])
	assert.Equal(t, "req-1", line["request_id"])
	assert.Equal(t, "db down", line["error"])
	assert.Equal(t, "boom", line["message"])
}
