package client

import "time"

// User represents an account
type User struct {
	ID                 int64     `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name,omitempty"`
	SubscriptionStatus string    `json:"subscriptionStatus"`
	CreatedAt          time.Time `json:"createdAt"`
}

// Band represents a band owned by the user
type Band struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	OwnerID   int64     `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Song represents a song in a band's library
type Song struct {
	ID              string    `json:"id"`
	BandID          string    `json:"bandId"`
	Title           string    `json:"title"`
	Artist          string    `json:"artist,omitempty"`
	VocalIntensity  int       `json:"vocalIntensity"`
	EnergyLevel     int       `json:"energyLevel"`
	Key             string    `json:"key,omitempty"`
	Tempo           int       `json:"tempo,omitempty"`
	DurationSeconds int       `json:"durationSeconds,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// SetConfig sizes one set of a setlist
type SetConfig struct {
	SetIndex    int `json:"setIndex"`
	SongsPerSet int `json:"songsPerSet"`
}

// SetlistItem is one slot of a setlist
type SetlistItem struct {
	SetIndex int     `json:"setIndex"`
	Position int     `json:"position"`
	SongID   *string `json:"songId"`
	IsPinned bool    `json:"isPinned"`
}

// Setlist represents a setlist with its slots
type Setlist struct {
	ID         string        `json:"id"`
	BandID     string        `json:"bandId"`
	Name       string        `json:"name"`
	Venue      string        `json:"venue,omitempty"`
	Date       string        `json:"date,omitempty"`
	SetsConfig []SetConfig   `json:"setsConfig"`
	Items      []SetlistItem `json:"items,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

// PinnedSlot is a template position with an optional fixed song
type PinnedSlot struct {
	Position int     `json:"position"`
	SongID   *string `json:"songId,omitempty"`
}

// TemplateSet sizes one set of a template and lists its pinned slots
type TemplateSet struct {
	SetIndex    int          `json:"setIndex"`
	SongsPerSet int          `json:"songsPerSet"`
	PinnedSlots []PinnedSlot `json:"pinnedSlots"`
}

// Template represents a reusable setlist shape
type Template struct {
	ID         string        `json:"id"`
	BandID     string        `json:"bandId"`
	Name       string        `json:"name"`
	SetsConfig []TemplateSet `json:"setsConfig"`
	CreatedAt  time.Time     `json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}

type idResponse struct {
	ID string `json:"id"`
}
