package ids

import (
	"regexp"
	"testing"

	"github.com/MatrixManAtYrService/rhizome-sub001/internal/sanitize"
)

func TestIdentifierShapes(t *testing.T) {
	crockford := regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]+$`)

	tests := []struct {
		name   string
		gen    func() string
		length int
		check  func(string) bool
	}{
		{"short", NewShortID, sanitize.ShortIDLength, crockford.MatchString},
		{"ulid", NewULID, sanitize.ULIDLength, crockford.MatchString},
		{"uuid", NewUUID, sanitize.UUIDLength, regexp.MustCompile(`^[0-9a-f-]{36}$`).MatchString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := make(map[string]bool)
			for i := 0; i < 100; i++ {
				id := tt.gen()
				if len(id) != tt.length {
					t.Fatalf("%q has length %d, want %d", id, len(id), tt.length)
				}
				if !tt.check(id) {
					t.Fatalf("%q has unexpected characters", id)
				}
				if seen[id] {
					t.Fatalf("duplicate id %q", id)
				}
				seen[id] = true
			}
		})
	}
}
