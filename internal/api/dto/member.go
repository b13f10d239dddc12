package dto

import (
	"github.com/setlistr/setlistr/internal/domain/band"
	"github.com/setlistr/setlistr/internal/domain/member"
	"github.com/setlistr/setlistr/internal/domain/setlist"
	"github.com/setlistr/setlistr/internal/domain/song"
)

// CreateMemberRequest represents a member creation request
type CreateMemberRequest struct {
	Name  string `json:"name" validate:"required,notblank,max=100"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Role  string `json:"role,omitempty" validate:"omitempty,oneof=member admin sub"`
}

// MemberTokenResponse carries a freshly generated member token
type MemberTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// MemberSessionRequest starts a member session from a token
type MemberSessionRequest struct {
	Token string `json:"token" validate:"required"`
}

// MemberBandView is everything a member may read about their band
type MemberBandView struct {
	Member   *member.Member     `json:"member"`
	Band     *band.Band         `json:"band"`
	Songs    []*song.Song       `json:"songs"`
	Setlists []*setlist.Setlist `json:"setlists"`
}
