package handlers

import (
	"net/http"

	"github.com/setlistr/setlistr/internal/api/dto"
	"github.com/setlistr/setlistr/internal/api/middleware"
	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/domain/band"
	"github.com/setlistr/setlistr/internal/domain/member"
	"github.com/setlistr/setlistr/internal/domain/setlist"
	"github.com/setlistr/setlistr/internal/domain/song"
	"github.com/setlistr/setlistr/internal/pkg/errors"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/utils"
	"github.com/setlistr/setlistr/internal/pkg/validator"
)

// MemberSessionHandler serves token-based member sessions and the member's
// read-only view of their band
type MemberSessionHandler struct {
	members      member.Service
	bands        band.Service
	songs        song.Service
	setlists     setlist.Service
	cookieSecure bool
	logger       *logger.Logger
	validator    *validator.Validator
}

// NewMemberSessionHandler creates a new member session handler
func NewMemberSessionHandler(
	members member.Service,
	bands band.Service,
	songs song.Service,
	setlists setlist.Service,
	cookieSecure bool,
	log *logger.Logger,
	val *validator.Validator,
) *MemberSessionHandler {
	return &MemberSessionHandler{
		members:      members,
		bands:        bands,
		songs:        songs,
		setlists:     setlists,
		cookieSecure: cookieSecure,
		logger:       log,
		validator:    val,
	}
}

// Start opens a member session from a token and sets the member cookies
// @Summary Start member session
// @Tags Member session
// @Accept json
// @Produce json
// @Param request body dto.MemberSessionRequest true "Member token"
// @Success 200 {object} utils.SuccessResponse{data=member.Session} "Session"
// @Failure 401 {object} utils.ErrorResponse "Invalid member token"
// @Router /member/session [post]
func (h *MemberSessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req dto.MemberSessionRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	session, err := h.members.ResolveSession(r.Context(), req.Token)
	if err != nil {
		writeErr(w, h.logger, err, "Failed to resolve member session")
		return
	}
	if session == nil {
		clearMemberCookies(w, h.cookieSecure)
		utils.WriteError(w, errors.Unauthorized("Invalid member token"))
		return
	}

	setMemberCookies(w, h.cookieSecure, req.Token)
	utils.WriteSuccess(w, http.StatusOK, session)
}

// Current returns the session for the request's member token, or null. A
// token that no longer resolves clears the member cookies.
// @Summary Current member session
// @Tags Member session
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=member.Session} "Session or null"
// @Router /member/session [get]
func (h *MemberSessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	token := middleware.MemberToken(r)
	if token == "" {
		utils.WriteSuccess(w, http.StatusOK, nil)
		return
	}

	session, err := h.members.ResolveSession(r.Context(), token)
	if err != nil {
		writeErr(w, h.logger, err, "Failed to resolve member session")
		return
	}
	if session == nil {
		clearMemberCookies(w, h.cookieSecure)
		utils.WriteSuccess(w, http.StatusOK, nil)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, session)
}

// End clears the member cookies
// @Summary End member session
// @Tags Member session
// @Produce json
// @Success 200 {object} utils.SuccessResponse "Session ended"
// @Router /member/session [delete]
func (h *MemberSessionHandler) End(w http.ResponseWriter, r *http.Request) {
	clearMemberCookies(w, h.cookieSecure)
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Session ended", nil)
}

// Band returns the member's band with its songs and setlists
// @Summary Member band view
// @Tags Member session
// @Produce json
// @Success 200 {object} dto.MemberBandView "Band, songs and setlists"
// @Failure 401 {object} utils.ErrorResponse "No member session"
// @Router /member/band [get]
func (h *MemberSessionHandler) Band(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFrom(r).(auth.Member)
	if !ok {
		utils.WriteError(w, errors.Unauthorized("Member session required"))
		return
	}
	ctx := r.Context()

	b, err := h.bands.Get(ctx, actor, actor.BandID)
	if err != nil {
		writeErr(w, h.logger, err, "Failed to load band")
		return
	}
	if b == nil {
		utils.WriteError(w, errors.NotFound("Band"))
		return
	}
	m, err := h.members.Get(ctx, actor, actor.MemberID)
	if err != nil {
		writeErr(w, h.logger, err, "Failed to load member")
		return
	}
	songs, err := h.songs.List(ctx, actor, actor.BandID)
	if err != nil {
		writeErr(w, h.logger, err, "Failed to list songs")
		return
	}
	setlists, err := h.setlists.List(ctx, actor, actor.BandID)
	if err != nil {
		writeErr(w, h.logger, err, "Failed to list setlists")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.MemberBandView{
		Member:   m,
		Band:     b,
		Songs:    songs,
		Setlists: setlists,
	})
}
