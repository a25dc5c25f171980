package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		conf      LoggingConfig
		override  string
		wantLevel zapcore.Level
		wantErr   bool
	}{
		{name: "Defaults", conf: LoggingConfig{}, wantLevel: zapcore.InfoLevel},
		{name: "Configured level", conf: LoggingConfig{Level: "error", Format: "console"}, wantLevel: zapcore.ErrorLevel},
		{name: "Override wins", conf: LoggingConfig{Level: "error"}, override: "debug", wantLevel: zapcore.DebugLevel},
		{name: "Warning alias", conf: LoggingConfig{Level: "warning"}, wantLevel: zapcore.WarnLevel},
		{name: "Bad level", conf: LoggingConfig{Level: "loud"}, wantErr: true},
		{name: "Bad format", conf: LoggingConfig{Format: "xml"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := tt.conf.NewLogger(tt.override)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewLogger() expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewLogger() error = %v", err)
			}
			if !logger.Core().Enabled(tt.wantLevel) {
				t.Errorf("expected level %s to be enabled", tt.wantLevel)
			}
			if tt.wantLevel > zapcore.DebugLevel && logger.Core().Enabled(tt.wantLevel-1) {
				t.Errorf("expected level %s to be disabled", tt.wantLevel-1)
			}
		})
	}
}

func TestNewLoggerWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fincalc.log")
	logger, err := LoggingConfig{Level: "info", OutputFile: path}.NewLogger("")
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Info("hello from the test")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello from the test") {
		t.Errorf("log file missing entry: %s", data)
	}
}
