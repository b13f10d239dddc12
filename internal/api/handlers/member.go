package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/setlistr/setlistr/internal/api/dto"
	"github.com/setlistr/setlistr/internal/api/middleware"
	"github.com/setlistr/setlistr/internal/domain/member"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/utils"
	"github.com/setlistr/setlistr/internal/pkg/validator"
)

type MemberHandler struct {
	service   member.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewMemberHandler(service member.Service, log *logger.Logger, val *validator.Validator) *MemberHandler {
	return &MemberHandler{
		service:   service,
		logger:    log,
		validator: val,
	}
}

// List returns a band's members
// @Summary List members
// @Description Access tokens are included for the band owner only
// @Tags Members
// @Produce json
// @Param bandId path string true "Band ID"
// @Success 200 {object} utils.SuccessResponse{data=[]member.Member} "Members"
// @Security BearerAuth
// @Router /bands/{bandId}/members [get]
func (h *MemberHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.List(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "bandId"))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to list members")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, members)
}

// Get returns a member, or null
// @Summary Get member
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} utils.SuccessResponse{data=member.Member} "Member or null"
// @Security BearerAuth
// @Router /members/{id} [get]
func (h *MemberHandler) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Get(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to get member")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, m)
}

// Create adds a member and emails the access link when an address is given
// @Summary Create member
// @Tags Members
// @Accept json
// @Produce json
// @Param bandId path string true "Band ID"
// @Param request body dto.CreateMemberRequest true "Member"
// @Success 201 {object} utils.SuccessResponse{data=member.Member} "Created member with token"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Security BearerAuth
// @Router /bands/{bandId}/members [post]
func (h *MemberHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMemberRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	actor := middleware.ActorFrom(r)
	id, err := h.service.Create(r.Context(), actor, chi.URLParam(r, "bandId"), &member.Member{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		writeErr(w, h.logger, err, "Failed to create member")
		return
	}

	m, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		writeErr(w, h.logger, err, "Failed to load member")
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, m)
}

// Update applies a member patch
// @Summary Update member
// @Tags Members
// @Accept json
// @Produce json
// @Param id path string true "Member ID"
// @Param request body object true "Fields to change: name, email, role"
// @Success 200 {object} utils.SuccessResponse "Member updated"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Security BearerAuth
// @Router /members/{id} [patch]
func (h *MemberHandler) Update(w http.ResponseWriter, r *http.Request) {
	fields, ok := readPatch(w, r, nil)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id"), fields); err != nil {
		writeErr(w, h.logger, err, "Failed to update member")
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Member updated", nil)
}

// Delete removes a member and revokes its token
// @Summary Delete member
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} utils.SuccessResponse "Member deleted"
// @Security BearerAuth
// @Router /members/{id} [delete]
func (h *MemberHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeErr(w, h.logger, err, "Failed to delete member")
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Member deleted", nil)
}

// RegenerateToken replaces a member's access token
// @Summary Regenerate member token
// @Tags Members
// @Produce json
// @Param id path string true "Member ID"
// @Success 200 {object} dto.MemberTokenResponse "New token"
// @Security BearerAuth
// @Router /members/{id}/token [post]
func (h *MemberHandler) RegenerateToken(w http.ResponseWriter, r *http.Request) {
	token, err := h.service.RegenerateToken(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to regenerate token")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.MemberTokenResponse{AccessToken: token})
}
