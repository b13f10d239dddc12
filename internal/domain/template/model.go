package template

import (
	"fmt"
	"strings"
	"time"

	"github.com/setlistr/setlistr/internal/domain/setlist"
	"github.com/setlistr/setlistr/internal/pkg/patch"
)

// PinnedSlot fixes a song to a position of a set. SongID may be nil for a
// pinned empty slot.
type PinnedSlot struct {
	Position int     `json:"position"`
	SongID   *string `json:"songId,omitempty"`
}

// SetConfig is one set of a template.
type SetConfig struct {
	SetIndex    int          `json:"setIndex"`
	SongsPerSet int          `json:"songsPerSet"`
	PinnedSlots []PinnedSlot `json:"pinnedSlots"`
}

// Template is a reusable set structure with pinned songs.
type Template struct {
	ID         string      `json:"id"`
	BandID     string      `json:"bandId"`
	Name       string      `json:"name"`
	SetsConfig []SetConfig `json:"setsConfig"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// UpdateSchema lists the fields a template patch may carry.
var UpdateSchema = patch.Schema{
	"name":       patch.String,
	"setsConfig": patch.TypeOf[[]SetConfig](),
}

// FieldError is one invalid template field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NormalizeName trims a template name.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// ValidateName rejects names that are empty after trimming.
func ValidateName(name string) []FieldError {
	if NormalizeName(name) == "" {
		return []FieldError{{Field: "name", Message: "name is required"}}
	}
	return nil
}

// ValidateSetsConfig checks the set shape like a setlist's and additionally
// that pinned positions are unique within a set and inside it.
func ValidateSetsConfig(cfgs []SetConfig) []FieldError {
	shape := make([]setlist.SetConfig, len(cfgs))
	for i, c := range cfgs {
		shape[i] = setlist.SetConfig{SetIndex: c.SetIndex, SongsPerSet: c.SongsPerSet}
	}

	var errs []FieldError
	for _, e := range setlist.ValidateSetsConfig(shape) {
		errs = append(errs, FieldError{Field: e.Field, Message: e.Message})
	}

	for i, c := range cfgs {
		seen := make(map[int]bool, len(c.PinnedSlots))
		for j, p := range c.PinnedSlots {
			field := fmt.Sprintf("setsConfig[%d].pinnedSlots[%d].position", i, j)
			if p.Position < 0 || p.Position >= c.SongsPerSet {
				errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("position must be between 0 and %d", c.SongsPerSet-1)})
			}
			if seen[p.Position] {
				errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("position %d is pinned twice", p.Position)})
			}
			seen[p.Position] = true
		}
	}
	return errs
}

// SongIDs returns the distinct song ids pinned anywhere in cfgs.
func SongIDs(cfgs []SetConfig) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, c := range cfgs {
		for _, p := range c.PinnedSlots {
			if p.SongID == nil || seen[*p.SongID] {
				continue
			}
			seen[*p.SongID] = true
			ids = append(ids, *p.SongID)
		}
	}
	return ids
}
