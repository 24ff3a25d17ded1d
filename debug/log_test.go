package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogWritesCategoryLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("Enable: %v", err)
	}

	Log("sampler", "loaded %d samples", 72)
	Log("engine", "plain message")
	Disable()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)

	for _, want := range []string{"Debug logging started", "sampler", "loaded 72 samples", "plain message"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q:\n%s", want, out)
		}
	}
}

func TestLogDisabledIsNoop(t *testing.T) {
	if Enabled() {
		t.Fatal("logging should start disabled")
	}
	// must not panic or block
	Log("engine", "ignored %d", 1)
	LogEvery(2, "engine", "ignored")
}

func TestLogEveryCountsCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	if err := Enable(path); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	for i := 0; i < 6; i++ {
		LogEvery(3, "pool", "voice dropped")
	}
	Disable()

	data, _ := os.ReadFile(path)
	if got := strings.Count(string(data), "voice dropped"); got != 2 {
		t.Errorf("LogEvery(3) over 6 calls wrote %d lines, want 2", got)
	}
}
