package dto

// CreateSongRequest represents a song creation request
type CreateSongRequest struct {
	Title           string `json:"title" validate:"required,notblank,max=200"`
	Artist          string `json:"artist,omitempty" validate:"max=200"`
	VocalIntensity  int    `json:"vocalIntensity" validate:"gte=1,lte=5"`
	EnergyLevel     int    `json:"energyLevel" validate:"gte=1,lte=5"`
	Key             string `json:"key,omitempty" validate:"max=20"`
	Tempo           int    `json:"tempo,omitempty" validate:"gte=0,lte=400"`
	DurationSeconds int    `json:"durationSeconds,omitempty" validate:"gte=0"`
	Notes           string `json:"notes,omitempty" validate:"max=2000"`
}
