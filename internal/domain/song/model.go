package song

import (
	"fmt"
	"strings"
	"time"

	"github.com/setlistr/setlistr/internal/pkg/patch"
)

// Song is a song in a band's repertoire.
type Song struct {
	ID              string    `json:"id"`
	BandID          string    `json:"bandId"`
	Title           string    `json:"title"`
	Artist          string    `json:"artist"`
	VocalIntensity  int       `json:"vocalIntensity"`
	EnergyLevel     int       `json:"energyLevel"`
	Key             string    `json:"key,omitempty"`
	Tempo           int       `json:"tempo,omitempty"`
	DurationSeconds int       `json:"durationSeconds,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Rating bounds for vocal intensity and energy level.
const (
	MinRating = 1
	MaxRating = 5
)

// UpdateSchema lists the fields a song patch may carry.
var UpdateSchema = patch.Schema{
	"title":           patch.String,
	"artist":          patch.String,
	"vocalIntensity":  patch.Int,
	"energyLevel":     patch.Int,
	"key":             patch.String,
	"tempo":           patch.Int,
	"durationSeconds": patch.Int,
	"notes":           patch.String,
}

// FieldError is one invalid song field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Normalize trims the string fields.
func (s *Song) Normalize() {
	s.Title = strings.TrimSpace(s.Title)
	s.Artist = strings.TrimSpace(s.Artist)
	s.Key = strings.TrimSpace(s.Key)
	s.Notes = strings.TrimSpace(s.Notes)
}

// Validate checks the song's invariants.
func (s *Song) Validate() []FieldError {
	var errs []FieldError
	if s.Title == "" {
		errs = append(errs, FieldError{Field: "title", Message: "title is required"})
	}
	if s.VocalIntensity < MinRating || s.VocalIntensity > MaxRating {
		errs = append(errs, FieldError{Field: "vocalIntensity", Message: ratingMessage("vocalIntensity")})
	}
	if s.EnergyLevel < MinRating || s.EnergyLevel > MaxRating {
		errs = append(errs, FieldError{Field: "energyLevel", Message: ratingMessage("energyLevel")})
	}
	if s.Tempo < 0 {
		errs = append(errs, FieldError{Field: "tempo", Message: "tempo must not be negative"})
	}
	if s.DurationSeconds < 0 {
		errs = append(errs, FieldError{Field: "durationSeconds", Message: "durationSeconds must not be negative"})
	}
	return errs
}

// Apply copies the present patch fields onto s.
func (s *Song) Apply(f patch.Fields) {
	if v, ok := f.String("title"); ok {
		s.Title = v
	}
	if v, ok := f.String("artist"); ok {
		s.Artist = v
	}
	if v, ok := f.Int("vocalIntensity"); ok {
		s.VocalIntensity = v
	}
	if v, ok := f.Int("energyLevel"); ok {
		s.EnergyLevel = v
	}
	if v, ok := f.String("key"); ok {
		s.Key = v
	}
	if v, ok := f.Int("tempo"); ok {
		s.Tempo = v
	}
	if v, ok := f.Int("durationSeconds"); ok {
		s.DurationSeconds = v
	}
	if v, ok := f.String("notes"); ok {
		s.Notes = v
	}
	s.Normalize()
}

func ratingMessage(field string) string {
	return fmt.Sprintf("%s must be between %d and %d", field, MinRating, MaxRating)
}
