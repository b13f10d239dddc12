package dto

// CreateBandRequest represents a band creation request. Slug is derived
// from the name when omitted.
type CreateBandRequest struct {
	Name string `json:"name" validate:"required,notblank,max=100"`
	Slug string `json:"slug,omitempty" validate:"omitempty,slug,max=60"`
}

// IDResponse carries the id of a created entity
type IDResponse struct {
	ID string `json:"id"`
}
