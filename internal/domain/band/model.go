package band

import (
	"strings"
	"time"

	"github.com/setlistr/setlistr/internal/pkg/patch"
)

// Band is the tenant unit. Songs, setlists, templates and members all belong
// to exactly one band, and a band belongs to exactly one owner.
type Band struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	OwnerID   int64     `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// MaxSlugLength bounds generated slugs.
const MaxSlugLength = 60

// UpdateSchema lists the fields a band patch may carry.
var UpdateSchema = patch.Schema{
	"name": patch.String,
	"slug": patch.String,
}

// Slugify derives a URL-safe slug from a band name: lowercase ASCII letters
// and digits separated by single dashes.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
		if b.Len() >= MaxSlugLength {
			break
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) > MaxSlugLength {
		slug = strings.TrimRight(slug[:MaxSlugLength], "-")
	}
	if slug == "" {
		return "band"
	}
	return slug
}
