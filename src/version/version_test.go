package version

import (
	"regexp"
	"testing"
)

// TestFlagEmpty fails if version.Flag is not empty on a release build.
func TestFlagEmpty(t *testing.T) {
	if len(Flag) > 0 {
		t.Fatalf("Version Flag is not empty: %s", Flag)
	}
}

func TestVersionFormat(t *testing.T) {
	if !regexp.MustCompile(`^[0-9]+\.[0-9]+\.[0-9]+`).MatchString(Version) {
		t.Fatalf("Unexpected version format: %s", Version)
	}
}
