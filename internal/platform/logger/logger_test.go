package logger

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/mhutton/relay-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSetup(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		logFormat string
	}{
		{name: "json debug", logLevel: "debug", logFormat: "json"},
		{name: "json info", logLevel: "info", logFormat: "json"},
		{name: "text warn", logLevel: "warn", logFormat: "text"},
		{name: "case insensitive level", logLevel: "ERROR", logFormat: "json"},
		{name: "invalid level falls back to info", logLevel: "verbose", logFormat: "json"},
		{name: "unknown format falls back to json", logLevel: "info", logFormat: "logfmt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{
				LogLevel:  tt.logLevel,
				LogFormat: tt.logFormat,
			})
			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.Equal(t, logger, slog.Default())
		})
	}
}

func TestFromContext(t *testing.T) {
	t.Run("returns stored logger", func(t *testing.T) {
		stored := discardLogger()
		ctx := WithContext(context.Background(), stored)
		assert.Same(t, stored, FromContext(ctx))
	})

	t.Run("falls back to default", func(t *testing.T) {
		assert.Equal(t, slog.Default(), FromContext(context.Background()))
	})
}

func TestFromContextOrDefault(t *testing.T) {
	stored := discardLogger()
	def := discardLogger()

	t.Run("returns stored logger", func(t *testing.T) {
		ctx := WithContext(context.Background(), stored)
		assert.Same(t, stored, FromContextOrDefault(ctx, def))
	})

	t.Run("returns given default when nothing stored", func(t *testing.T) {
		assert.Same(t, def, FromContextOrDefault(context.Background(), def))
	})

	t.Run("nil default falls back to slog default", func(t *testing.T) {
		assert.Equal(t, slog.Default(), FromContextOrDefault(context.Background(), nil))
	})
}
