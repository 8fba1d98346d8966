// SPDX-License-Identifier: MIT

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextWithRequestID_RoundTrip(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-123")
	assert.Equal(t, "req-123", RequestIDFromContext(ctx))
}

func TestRequestIDFromContext_Empty(t *testing.T) {
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
	assert.Equal(t, "", RequestIDFromContext(nil)) //nolint:staticcheck // nil tolerance is intentional
}

func TestWithContext_AddsRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	ctx := ContextWithRequestID(context.Background(), "abc")
	WithContext(ctx, l).Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry[FieldRequestID])
}

func TestWithContext_NoFieldsIsPassthrough(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)

	WithContext(context.Background(), l).Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	_, ok := entry[FieldRequestID]
	assert.False(t, ok)
}

func TestWithComponentFromContext(t *testing.T) {
	l := WithComponentFromContext(context.Background(), "qr")
	// No panic and usable logger is the contract here.
	l.Debug().Msg("component logger works")
}

func TestWithComponentFromContext_ChainsOnResult(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	ctx := l.WithContext(ContextWithRequestID(context.Background(), "r-9"))

	// Handlers chain level methods straight off the return value.
	WithComponentFromContext(ctx, "api").Error().Str("k", "v").Msg("boom")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "api", entry[FieldComponent])
	assert.Equal(t, "r-9", entry[FieldRequestID])
	assert.Equal(t, "v", entry["k"])
}
