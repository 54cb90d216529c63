package logger

import (
	"bytes"
	"strings"
	"testing"
)

type bufferCloser struct {
	bytes.Buffer
}

func (*bufferCloser) Close() error { return nil }

func TestParseAndSetDebugLevels(t *testing.T) {
	first := RegisterSubSystem("TST1")
	second := RegisterSubSystem("TST2")

	tests := []struct {
		name          string
		debugLevel    string
		expectedFirst Level
		expectedSecnd Level
		expectsError  bool
	}{
		{"global", "debug", LevelDebug, LevelDebug, false},
		{"per subsystem", "TST1=warn,TST2=trace", LevelWarn, LevelTrace, false},
		{"unknown level", "verbose", LevelWarn, LevelTrace, true},
		{"unknown subsystem", "NOPE=info", LevelWarn, LevelTrace, true},
		{"missing pair", "TST1=info,garbage", LevelInfo, LevelTrace, true},
	}

	for _, test := range tests {
		err := ParseAndSetDebugLevels(test.debugLevel)
		if (err != nil) != test.expectsError {
			t.Fatalf("%s: unexpected error state: %v", test.name, err)
		}
		if first.Level() != test.expectedFirst {
			t.Fatalf("%s: TST1 level is %s, expected %s", test.name, first.Level(), test.expectedFirst)
		}
		if second.Level() != test.expectedSecnd {
			t.Fatalf("%s: TST2 level is %s, expected %s", test.name, second.Level(), test.expectedSecnd)
		}
	}
}

func TestBackendFiltersByWriterLevel(t *testing.T) {
	backend := NewBackendWithFlags(0)
	all := &bufferCloser{}
	warnings := &bufferCloser{}
	if err := backend.AddLogWriter(all, LevelTrace); err != nil {
		t.Fatalf("AddLogWriter: %s", err)
	}
	if err := backend.AddLogWriter(warnings, LevelWarn); err != nil {
		t.Fatalf("AddLogWriter: %s", err)
	}
	if err := backend.Run(); err != nil {
		t.Fatalf("Run: %s", err)
	}

	log := backend.Logger("TEST")
	log.SetLevel(LevelDebug)
	log.Tracef("dropped %d", 1)
	log.Infof("info %d", 2)
	log.Warnf("warning %d", 3)
	backend.Close()

	if strings.Contains(all.String(), "dropped") {
		t.Fatalf("TestBackendFiltersByWriterLevel: trace entry passed a debug logger")
	}
	if !strings.Contains(all.String(), "[INF] TEST: info 2") {
		t.Fatalf("TestBackendFiltersByWriterLevel: missing info entry in %q", all.String())
	}
	if strings.Contains(warnings.String(), "info 2") {
		t.Fatalf("TestBackendFiltersByWriterLevel: info entry reached the warning writer")
	}
	if !strings.Contains(warnings.String(), "[WRN] TEST: warning 3") {
		t.Fatalf("TestBackendFiltersByWriterLevel: missing warning entry in %q", warnings.String())
	}
}
