package client

import (
	"context"
	"net/url"
)

// TemplateService handles template API calls
type TemplateService struct {
	client *Client
}

// InstantiateRequest names the setlist created from a template
type InstantiateRequest struct {
	Name  string `json:"name"`
	Venue string `json:"venue,omitempty"`
	Date  string `json:"date,omitempty"` // YYYY-MM-DD
}

// List returns a band's templates
func (s *TemplateService) List(ctx context.Context, bandID string) ([]Template, error) {
	var templates []Template
	if err := s.client.doRequest(ctx, "GET", "/bands/"+url.PathEscape(bandID)+"/templates", nil, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Get returns a template, or nil
func (s *TemplateService) Get(ctx context.Context, id string) (*Template, error) {
	var template *Template
	if err := s.client.doRequest(ctx, "GET", "/templates/"+url.PathEscape(id), nil, &template); err != nil {
		return nil, err
	}
	return template, nil
}

// FromSetlist saves the pinned slots of a setlist as a new template
func (s *TemplateService) FromSetlist(ctx context.Context, setlistID, name string) (string, error) {
	var resp idResponse
	body := map[string]string{"name": name}
	if err := s.client.doRequest(ctx, "POST", "/setlists/"+url.PathEscape(setlistID)+"/template", body, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Instantiate creates a setlist from a template and returns its id
func (s *TemplateService) Instantiate(ctx context.Context, templateID string, req InstantiateRequest) (string, error) {
	var resp idResponse
	if err := s.client.doRequest(ctx, "POST", "/templates/"+url.PathEscape(templateID)+"/setlists", req, &resp); err != nil {
		return "", err
	}
	return resp.ID, nil
}

// Delete removes a template
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	return s.client.doRequest(ctx, "DELETE", "/templates/"+url.PathEscape(id), nil, nil)
}
