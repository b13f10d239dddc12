package client

import (
	"context"
	"net/url"
)

// SetlistService handles setlist API calls
type SetlistService struct {
	client *Client
}

// List returns a band's setlists
func (s *SetlistService) List(ctx context.Context, bandID string) ([]Setlist, error) {
	var setlists []Setlist
	if err := s.client.doRequest(ctx, "GET", "/bands/"+url.PathEscape(bandID)+"/setlists", nil, &setlists); err != nil {
		return nil, err
	}
	return setlists, nil
}

// Get returns a setlist with its slots, or nil
func (s *SetlistService) Get(ctx context.Context, id string) (*Setlist, error) {
	var setlist *Setlist
	if err := s.client.doRequest(ctx, "GET", "/setlists/"+url.PathEscape(id), nil, &setlist); err != nil {
		return nil, err
	}
	return setlist, nil
}
