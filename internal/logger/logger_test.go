package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		for _, format := range []string{"json", "console"} {
			l, err := New(tt.level, format)
			if err != nil {
				t.Fatalf("New(%q, %q) failed: %v", tt.level, format, err)
			}
			if !l.Core().Enabled(tt.want) {
				t.Errorf("New(%q, %q): level %v not enabled", tt.level, format, tt.want)
			}
			if tt.want > zapcore.DebugLevel && l.Core().Enabled(tt.want-1) {
				t.Errorf("New(%q, %q): level %v unexpectedly enabled", tt.level, format, tt.want-1)
			}
		}
	}
}
