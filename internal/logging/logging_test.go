package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	t.Setenv(DebugEnv, "")
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"", zapcore.WarnLevel},
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"error", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l, err := New(tt.level, false)
			require.NoError(t, err)
			require.True(t, l.Core().Enabled(tt.want))
			if tt.want > zapcore.DebugLevel {
				require.False(t, l.Core().Enabled(tt.want-1))
			}
		})
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New("loud", false)
	require.Error(t, err)
}

func TestDebugEnvForcesDebug(t *testing.T) {
	for _, v := range []string{"1", "true", "on"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv(DebugEnv, v)
			require.True(t, DebugEnabled())
			l, err := New("error", true)
			require.NoError(t, err)
			require.True(t, l.Core().Enabled(zapcore.DebugLevel))
		})
	}
	t.Setenv(DebugEnv, "yes")
	require.False(t, DebugEnabled())
}
