package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		format  string
		level   zapcore.Level
		wantErr bool
	}{
		{"default", false, "", zapcore.WarnLevel, false},
		{"verbose console", true, "console", zapcore.DebugLevel, false},
		{"json", false, "JSON", zapcore.WarnLevel, false},
		{"unknown", false, "xml", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := New(tt.verbose, tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			defer zap.ReplaceGlobals(zap.NewNop())

			if !logger.Core().Enabled(tt.level) {
				t.Errorf("level %v should be enabled", tt.level)
			}
			if tt.level > zapcore.DebugLevel && logger.Core().Enabled(tt.level-1) {
				t.Errorf("level %v should be disabled", tt.level-1)
			}
			if zap.L() != logger {
				t.Error("logger was not installed globally")
			}
		})
	}
}
