package setlist

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/setlistr/setlistr/internal/pkg/patch"
)

// DateLayout is the wire format of a setlist date.
const DateLayout = "2006-01-02"

// Limits on the shape of a setlist.
const (
	MaxSets        = 10
	MaxSongsPerSet = 50
)

// SetConfig describes one set of a show.
type SetConfig struct {
	SetIndex    int `json:"setIndex"`
	SongsPerSet int `json:"songsPerSet"`
}

// Item is one slot of a set. A slot may be empty.
type Item struct {
	SetIndex int     `json:"setIndex"`
	Position int     `json:"position"`
	SongID   *string `json:"songId"`
	IsPinned bool    `json:"isPinned"`
}

// Setlist is a planned show for a band.
type Setlist struct {
	ID         string      `json:"id"`
	BandID     string      `json:"bandId"`
	Name       string      `json:"name"`
	Venue      string      `json:"venue,omitempty"`
	Date       string      `json:"date,omitempty"`
	SetsConfig []SetConfig `json:"setsConfig"`
	Items      []Item      `json:"items,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}

// UpdateSchema lists the fields a setlist patch may carry.
var UpdateSchema = patch.Schema{
	"name":       patch.String,
	"venue":      patch.String,
	"date":       patch.String,
	"setsConfig": patch.TypeOf[[]SetConfig](),
}

// FieldError is one invalid setlist field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Normalize trims the string fields.
func (s *Setlist) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	s.Venue = strings.TrimSpace(s.Venue)
	s.Date = strings.TrimSpace(s.Date)
}

// Validate checks name, date and sets configuration.
func (s *Setlist) Validate() []FieldError {
	var errs []FieldError
	if s.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if s.Date != "" {
		if _, err := time.Parse(DateLayout, s.Date); err != nil {
			errs = append(errs, FieldError{Field: "date", Message: "date must be formatted as YYYY-MM-DD"})
		}
	}
	return append(errs, ValidateSetsConfig(s.SetsConfig)...)
}

// ValidateSetsConfig checks set indexes are unique and non-negative and set
// sizes are within bounds.
func ValidateSetsConfig(cfgs []SetConfig) []FieldError {
	var errs []FieldError
	if len(cfgs) == 0 {
		return []FieldError{{Field: "setsConfig", Message: "at least one set is required"}}
	}
	if len(cfgs) > MaxSets {
		errs = append(errs, FieldError{Field: "setsConfig", Message: fmt.Sprintf("at most %d sets are allowed", MaxSets)})
	}
	seen := make(map[int]bool, len(cfgs))
	for i, c := range cfgs {
		field := fmt.Sprintf("setsConfig[%d]", i)
		if c.SetIndex < 0 {
			errs = append(errs, FieldError{Field: field + ".setIndex", Message: "setIndex must not be negative"})
		}
		if seen[c.SetIndex] {
			errs = append(errs, FieldError{Field: field + ".setIndex", Message: fmt.Sprintf("setIndex %d is repeated", c.SetIndex)})
		}
		seen[c.SetIndex] = true
		if c.SongsPerSet < 1 || c.SongsPerSet > MaxSongsPerSet {
			errs = append(errs, FieldError{Field: field + ".songsPerSet", Message: fmt.Sprintf("songsPerSet must be between 1 and %d", MaxSongsPerSet)})
		}
	}
	return errs
}

// SortConfigs returns a copy of cfgs ordered by set index.
func SortConfigs(cfgs []SetConfig) []SetConfig {
	out := make([]SetConfig, len(cfgs))
	copy(out, cfgs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SetIndex < out[j].SetIndex })
	return out
}

// SortItems orders items by set index, then position.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].SetIndex != items[j].SetIndex {
			return items[i].SetIndex < items[j].SetIndex
		}
		return items[i].Position < items[j].Position
	})
}

// Skeleton returns one empty, unpinned slot per position of every set.
func Skeleton(cfgs []SetConfig) []Item {
	return Reconcile(cfgs, nil)
}

// Reconcile fits items to cfgs: slots outside a configured set are dropped
// and missing slots are added empty. The result is sorted.
func Reconcile(cfgs []SetConfig, items []Item) []Item {
	type slot struct{ set, pos int }
	existing := make(map[slot]Item, len(items))
	for _, it := range items {
		existing[slot{it.SetIndex, it.Position}] = it
	}

	var out []Item
	for _, c := range SortConfigs(cfgs) {
		for pos := 0; pos < c.SongsPerSet; pos++ {
			if it, ok := existing[slot{c.SetIndex, pos}]; ok {
				out = append(out, it)
				continue
			}
			out = append(out, Item{SetIndex: c.SetIndex, Position: pos})
		}
	}
	return out
}

// ValidateItems checks that every item addresses a configured slot and that
// no slot is listed twice.
func ValidateItems(cfgs []SetConfig, items []Item) []FieldError {
	sizes := make(map[int]int, len(cfgs))
	for _, c := range cfgs {
		sizes[c.SetIndex] = c.SongsPerSet
	}

	var errs []FieldError
	type slot struct{ set, pos int }
	seen := make(map[slot]bool, len(items))
	for i, it := range items {
		field := fmt.Sprintf("items[%d]", i)
		size, ok := sizes[it.SetIndex]
		if !ok {
			errs = append(errs, FieldError{Field: field + ".setIndex", Message: fmt.Sprintf("set %d is not configured", it.SetIndex)})
			continue
		}
		if it.Position < 0 || it.Position >= size {
			errs = append(errs, FieldError{Field: field + ".position", Message: fmt.Sprintf("position must be between 0 and %d", size-1)})
			continue
		}
		k := slot{it.SetIndex, it.Position}
		if seen[k] {
			errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf("slot %d/%d is repeated", it.SetIndex, it.Position)})
		}
		seen[k] = true
	}
	return errs
}

// SongIDs returns the distinct song ids referenced by items.
func SongIDs(items []Item) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, it := range items {
		if it.SongID == nil || seen[*it.SongID] {
			continue
		}
		seen[*it.SongID] = true
		ids = append(ids, *it.SongID)
	}
	return ids
}

// Apply copies the present patch fields onto s.
func (s *Setlist) Apply(f patch.Fields) {
	if v, ok := f.String("name"); ok {
		s.Name = v
	}
	if v, ok := f.String("venue"); ok {
		s.Venue = v
	}
	if v, ok := f.String("date"); ok {
		s.Date = v
	}
	if v, ok := patch.Get[[]SetConfig](f, "setsConfig"); ok {
		s.SetsConfig = v
	}
	s.Normalize()
}
