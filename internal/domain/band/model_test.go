package band

import (
	"strings"
	"testing"

	"github.com/setlistr/setlistr/internal/pkg/validator"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"The Rolling Stones", "the-rolling-stones"},
		{"  AC/DC  ", "ac-dc"},
		{"Sigur Rós", "sigur-r-s"},
		{"!!!", "band"},
		{"Blink--182", "blink-182"},
		{strings.Repeat("a", 80), strings.Repeat("a", MaxSlugLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slugify(tt.name)
			if got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.name, got, tt.want)
			}
			if !validator.IsSlug(got) {
				t.Errorf("Slugify(%q) = %q is not a valid slug", tt.name, got)
			}
		})
	}
}
