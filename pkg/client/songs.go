package client

import (
	"context"
	"net/url"
)

// SongService handles song API calls
type SongService struct {
	client *Client
}

// CreateSongRequest represents a request to add a song to a band
type CreateSongRequest struct {
	Title           string `json:"title"`
	Artist          string `json:"artist,omitempty"`
	VocalIntensity  int    `json:"vocalIntensity"`
	EnergyLevel     int    `json:"energyLevel"`
	Key             string `json:"key,omitempty"`
	Tempo           int    `json:"tempo,omitempty"`
	DurationSeconds int    `json:"durationSeconds,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

// List returns a band's songs
func (s *SongService) List(ctx context.Context, bandID string) ([]Song, error) {
	var songs []Song
	if err := s.client.doRequest(ctx, "GET", "/bands/"+url.PathEscape(bandID)+"/songs", nil, &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// Create adds a song and returns its id
func (s *SongService) Create(ctx context.Context, bandID string, req CreateSongRequest) (string, error) {
	var resp idResponse
	if err := s.client.doRequest(ctx, "POST", "/bands/"+url.PathEscape(bandID)+"/songs", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Delete removes a song
func (s *SongService) Delete(ctx context.Context, id string) error {
	return s.client.doRequest(ctx, "DELETE", "/songs/"+url.PathEscape(id), nil, nil)
}
