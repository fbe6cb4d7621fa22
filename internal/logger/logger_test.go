package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"fatal": zapcore.FatalLevel,
		" INFO": zapcore.InfoLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestFromContext_Fallback ensures the global logger is returned when the context carries none.
func TestFromContext_Fallback(t *testing.T) {
	t.Parallel()

	require.NotNil(t, FromContext(context.Background()))
	//nolint:staticcheck // Nil context is exactly the case under test.
	require.NotNil(t, FromContext(nil))
}

// TestWithName_StoresLogger checks that WithName stores a logger retrievable via FromContext.
func TestWithName_StoresLogger(t *testing.T) {
	t.Parallel()

	ctx := WithName(context.Background(), "verstamp")
	require.NotNil(t, FromContext(ctx))
	require.NotSame(t, global, FromContext(ctx))
}
