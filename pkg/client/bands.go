package client

import (
	"context"
	"net/url"
)

// BandService handles band API calls
type BandService struct {
	client *Client
}

// CreateBandRequest represents a request to create a band. An empty slug is
// derived from the name.
type CreateBandRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// List returns the signed-in user's bands
func (s *BandService) List(ctx context.Context) ([]Band, error) {
	var bands []Band
	if err := s.client.doRequest(ctx, "GET", "/bands", nil, &bands); err != nil {
		return nil, err
	}
	return bands, nil
}

// Get returns a band, or nil when it does not exist or is not readable
func (s *BandService) Get(ctx context.Context, id string) (*Band, error) {
	var band *Band
	if err := s.client.doRequest(ctx, "GET", "/bands/"+url.PathEscape(id), nil, &band); err != nil {
		return nil, err
	}
	return band, nil
}

// GetBySlug returns the band with slug, or nil
func (s *BandService) GetBySlug(ctx context.Context, slug string) (*Band, error) {
	var band *Band
	if err := s.client.doRequest(ctx, "GET", "/bands/by-slug/"+url.PathEscape(slug), nil, &band); err != nil {
		return nil, err
	}
	return band, nil
}

// Create creates a band and returns its id
func (s *BandService) Create(ctx context.Context, req CreateBandRequest) (string, error) {
	var resp idResponse
	if err := s.client.doRequest(ctx, "POST", "/bands", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Delete removes a band with everything in it
func (s *BandService) Delete(ctx context.Context, id string) error {
	return s.client.doRequest(ctx, "DELETE", "/bands/"+url.PathEscape(id), nil, nil)
}
