package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	ctx := IntoContext(context.Background(), logger)
	ctxLogger := FromContext(ctx)
	ctxLogger.Info().Str("request_id", "abc").Msg("handled")

	assert.Contains(t, buf.String(), `"request_id":"abc"`)
	assert.Contains(t, buf.String(), "handled")
}

func TestFromContextFallsBackToNop(t *testing.T) {
	var buf bytes.Buffer
	logger := FromContext(context.Background()).Output(&buf)
	logger.Info().Msg("dropped")
	assert.Empty(t, buf.String(), "context without a logger yields a no-op logger")
}
