package dto

import "github.com/setlistr/setlistr/internal/domain/template"

// CreateTemplateRequest represents a template creation request
type CreateTemplateRequest struct {
	Name       string               `json:"name" validate:"max=200"`
	SetsConfig []template.SetConfig `json:"setsConfig"`
}

// TemplateFromSetlistRequest names the template derived from a setlist
type TemplateFromSetlistRequest struct {
	Name string `json:"name" validate:"max=200"`
}

// InstantiateTemplateRequest names the setlist created from a template
type InstantiateTemplateRequest struct {
	Name  string `json:"name" validate:"required,notblank,max=200"`
	Venue string `json:"venue,omitempty" validate:"max=200"`
	Date  string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}
