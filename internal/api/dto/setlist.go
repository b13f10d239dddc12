package dto

import "github.com/setlistr/setlistr/internal/domain/setlist"

// CreateSetlistRequest represents a setlist creation request
type CreateSetlistRequest struct {
	Name       string              `json:"name" validate:"required,notblank,max=200"`
	Venue      string              `json:"venue,omitempty" validate:"max=200"`
	Date       string              `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	SetsConfig []setlist.SetConfig `json:"setsConfig" validate:"required,min=1"`
}

// ReplaceItemsRequest overwrites every slot of a setlist
type ReplaceItemsRequest struct {
	Items []setlist.Item `json:"items"`
}

// TogglePinRequest names the slot whose pin flag flips
type TogglePinRequest struct {
	SetIndex *int `json:"setIndex" validate:"required,gte=0"`
	Position *int `json:"position" validate:"required,gte=0"`
}

// TogglePinResponse reports the slot's new pin flag
type TogglePinResponse struct {
	IsPinned bool `json:"isPinned"`
}
