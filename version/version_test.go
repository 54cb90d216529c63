package version

import "testing"

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		build    string
		expected string
	}{
		{build: "", expected: "1.2.3"},
		{build: "rc-1", expected: "1.2.3-rc-1"},
		{build: "dirty+tree", expected: "1.2.3"},
		{build: "with space", expected: "1.2.3"},
	}
	for _, test := range tests {
		formatted := formatVersion(1, 2, 3, test.build)
		if formatted != test.expected {
			t.Fatalf("TestFormatVersion: build %q: expected %s, got %s", test.build, test.expected, formatted)
		}
	}

	if Version() != "0.1.0" {
		t.Fatalf("TestFormatVersion: unexpected version %s", Version())
	}
}
