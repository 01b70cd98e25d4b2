package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestInitialize_SilentByDefault(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "")

	if err := Initialize(""); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	if GetLogger().Core().Enabled(zapcore.ErrorLevel) {
		t.Error("logger should be silent when no level is configured")
	}
}

func TestInitialize_Levels(t *testing.T) {
	tests := []struct {
		level   string
		enabled zapcore.Level
		muted   zapcore.Level
	}{
		{"debug", zapcore.DebugLevel, zapcore.DebugLevel - 1},
		{"info", zapcore.InfoLevel, zapcore.DebugLevel},
		{"WARN", zapcore.WarnLevel, zapcore.InfoLevel},
		{"error", zapcore.ErrorLevel, zapcore.WarnLevel},
		{"bogus", zapcore.InfoLevel, zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if err := Initialize(tt.level); err != nil {
				t.Fatalf("Initialize(%q) error = %v", tt.level, err)
			}
			core := GetLogger().Core()
			if !core.Enabled(tt.enabled) {
				t.Errorf("level %v should be enabled for %q", tt.enabled, tt.level)
			}
			if core.Enabled(tt.muted) {
				t.Errorf("level %v should be muted for %q", tt.muted, tt.level)
			}
		})
	}

	t.Setenv(LogLevelEnvVar, "")
	_ = Initialize("")
}

func TestInitialize_FromEnv(t *testing.T) {
	t.Setenv(LogLevelEnvVar, "debug")

	if err := InitializeFromEnv(); err != nil {
		t.Fatalf("InitializeFromEnv() error = %v", err)
	}
	if !GetLogger().Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level should be enabled from environment")
	}

	t.Setenv(LogLevelEnvVar, "")
	_ = Initialize("")
}

func TestAsciiDump(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"empty", nil, ""},
		{"printable", []byte(`{"a":1}`), `{"a":1}`},
		{"control bytes", []byte{'o', 'k', 0x00, '\n'}, "ok.."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := asciiDump(tt.in); got != tt.want {
				t.Errorf("asciiDump() = %q, want %q", got, tt.want)
			}
		})
	}

	long := make([]byte, 300)
	for i := range long {
		long[i] = 'x'
	}
	if got := asciiDump(long); len(got) != 256 {
		t.Errorf("asciiDump() length = %d, want 256", len(got))
	}
}
