package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/sheetcalc/internal/engine"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for testing. Zero fields of cfg
// are filled from DefaultConfig and logging is set to debug. It returns the
// app, its result output and its log output.
func SetupAppTest(t *testing.T, cfg Config, opts ...engine.Option) (*App, *SafeBuffer, *SafeBuffer) {
	t.Helper()

	defaults := DefaultConfig()
	if cfg.LogFormat == "" {
		cfg.LogFormat = defaults.LogFormat
	}
	if cfg.Evaluator == "" {
		cfg.Evaluator = defaults.Evaluator
	}
	if cfg.Format == "" {
		cfg.Format = defaults.Format
	}
	cfg.LogLevel = "debug"

	validated, err := NewConfig(cfg)
	if err != nil {
		t.Fatalf("invalid test config: %v", err)
	}

	outBuffer := &SafeBuffer{}
	logBuffer := &SafeBuffer{}
	testApp, err := NewApp(outBuffer, logBuffer, validated, opts...)
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}

	t.Cleanup(func() {
		if os.Getenv("SHEETCALC_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, outBuffer, logBuffer
}
