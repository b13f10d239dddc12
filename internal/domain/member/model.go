package member

import (
	"net/mail"
	"strings"
	"time"

	"github.com/setlistr/setlistr/internal/domain/band"
	"github.com/setlistr/setlistr/internal/pkg/patch"
)

// Member is a band member with token access to the band's read-only views.
type Member struct {
	ID          string    `json:"id"`
	BandID      string    `json:"bandId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	AccessToken string    `json:"accessToken,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Member roles
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
	RoleSub    = "sub"
)

// UpdateSchema lists the fields a member patch may carry.
var UpdateSchema = patch.Schema{
	"name":  patch.String,
	"email": patch.String,
	"role":  patch.String,
}

// Session is a resolved member token.
type Session struct {
	Member *Member    `json:"member"`
	Band   *band.Band `json:"band"`
}

// FieldError is one invalid member field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidRole reports whether r is a known role.
func ValidRole(r string) bool {
	switch r {
	case RoleMember, RoleAdmin, RoleSub:
		return true
	}
	return false
}

// Normalize trims fields, lowercases the email and defaults the role.
func (m *Member) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.ToLower(strings.TrimSpace(m.Email))
	m.Role = strings.TrimSpace(m.Role)
	if m.Role == "" {
		m.Role = RoleMember
	}
}

// Validate checks name, email and role.
func (m *Member) Validate() []FieldError {
	var errs []FieldError
	if m.Name == "" {
		errs = append(errs, FieldError{Field: "name", Message: "name is required"})
	}
	if m.Email != "" {
		if _, err := mail.ParseAddress(m.Email); err != nil {
			errs = append(errs, FieldError{Field: "email", Message: "email must be a valid email address"})
		}
	}
	if !ValidRole(m.Role) {
		errs = append(errs, FieldError{Field: "role", Message: "role must be one of [member admin sub]"})
	}
	return errs
}

// Apply copies the present patch fields onto m.
func (m *Member) Apply(f patch.Fields) {
	if v, ok := f.String("name"); ok {
		m.Name = v
	}
	if v, ok := f.String("email"); ok {
		m.Email = v
	}
	if v, ok := f.String("role"); ok {
		m.Role = v
	}
	m.Normalize()
}

// Public returns a copy without the access token.
func (m *Member) Public() *Member {
	c := *m
	c.AccessToken = ""
	return &c
}
