package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TimelordUK/logview/internal/config"
)

func TestNewWithoutFileIsNop(t *testing.T) {
	logger, err := New(config.LoggingConfig{Level: "debug"})
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zap.ErrorLevel))
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logview.log")
	logger, err := New(config.LoggingConfig{Level: "warn", File: path})
	require.NoError(t, err)

	logger.Info("dropped")
	logger.Warn("kept", zap.String("url", "ws://x"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(data), "dropped")
	require.Contains(t, string(data), `"msg":"kept"`)
	require.Contains(t, string(data), `"url":"ws://x"`)
}

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(config.LoggingConfig{Level: "loud", File: filepath.Join(t.TempDir(), "x.log")})
	require.Error(t, err)
}

func TestContextLogger(t *testing.T) {
	require.NotNil(t, L(context.Background()))

	logger := zap.NewExample()
	ctx := NewContext(context.Background(), logger)
	require.Same(t, logger, L(ctx))
}
