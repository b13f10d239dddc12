package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/setlistr/setlistr/internal/api/dto"
	"github.com/setlistr/setlistr/internal/api/middleware"
	"github.com/setlistr/setlistr/internal/domain/setlist"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/utils"
	"github.com/setlistr/setlistr/internal/pkg/validator"
)

type SetlistHandler struct {
	service   setlist.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewSetlistHandler(service setlist.Service, log *logger.Logger, val *validator.Validator) *SetlistHandler {
	return &SetlistHandler{
		service:   service,
		logger:    log,
		validator: val,
	}
}

var setlistPatchTypes = map[string]decoder{
	"setsConfig": decodeAs[[]setlist.SetConfig],
}

// List returns a band's setlists
// @Summary List setlists
// @Tags Setlists
// @Produce json
// @Param bandId path string true "Band ID"
// @Success 200 {object} utils.SuccessResponse{data=[]setlist.Setlist} "Setlists"
// @Security BearerAuth
// @Router /bands/{bandId}/setlists [get]
func (h *SetlistHandler) List(w http.ResponseWriter, r *http.Request) {
	setlists, err := h.service.List(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "bandId"))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to list setlists")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, setlists)
}

// Get returns a setlist with its slots, or null
// @Summary Get setlist
// @Tags Setlists
// @Produce json
// @Param id path string true "Setlist ID"
// @Success 200 {object} utils.SuccessResponse{data=setlist.Setlist} "Setlist or null"
// @Security BearerAuth
// @Router /setlists/{id} [get]
func (h *SetlistHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Get(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to get setlist")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, s)
}

// Create creates a setlist with empty slots
// @Summary Create setlist
// @Tags Setlists
// @Accept json
// @Produce json
// @Param bandId path string true "Band ID"
// @Param request body dto.CreateSetlistRequest true "Setlist"
// @Success 201 {object} dto.IDResponse "Created setlist id"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Security BearerAuth
// @Router /bands/{bandId}/setlists [post]
func (h *SetlistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSetlistRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	id, err := h.service.Create(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "bandId"), &setlist.Setlist{
		Name:       req.Name,
		Venue:      req.Venue,
		Date:       req.Date,
		SetsConfig: req.SetsConfig,
	})
	if err != nil {
		writeErr(w, h.logger, err, "Failed to create setlist")
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, dto.IDResponse{ID: id})
}

// Update applies a setlist patch
// @Summary Update setlist
// @Description Changing setsConfig drops slots outside the new shape and adds empty ones
// @Tags Setlists
// @Accept json
// @Produce json
// @Param id path string true "Setlist ID"
// @Param request body object true "Fields to change: name, venue, date, setsConfig"
// @Success 200 {object} utils.SuccessResponse "Setlist updated"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Failure 404 {object} utils.ErrorResponse "Setlist not found"
// @Security BearerAuth
// @Router /setlists/{id} [patch]
func (h *SetlistHandler) Update(w http.ResponseWriter, r *http.Request) {
	fields, ok := readPatch(w, r, setlistPatchTypes)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id"), fields); err != nil {
		writeErr(w, h.logger, err, "Failed to update setlist")
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Setlist updated", nil)
}

// Delete removes a setlist
// @Summary Delete setlist
// @Tags Setlists
// @Produce json
// @Param id path string true "Setlist ID"
// @Success 200 {object} utils.SuccessResponse "Setlist deleted"
// @Failure 404 {object} utils.ErrorResponse "Setlist not found"
// @Security BearerAuth
// @Router /setlists/{id} [delete]
func (h *SetlistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeErr(w, h.logger, err, "Failed to delete setlist")
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Setlist deleted", nil)
}

// ReplaceItems overwrites the setlist's slots
// @Summary Replace setlist items
// @Tags Setlists
// @Accept json
// @Produce json
// @Param id path string true "Setlist ID"
// @Param request body dto.ReplaceItemsRequest true "Items"
// @Success 200 {object} utils.SuccessResponse "Items replaced"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Security BearerAuth
// @Router /setlists/{id}/items [put]
func (h *SetlistHandler) ReplaceItems(w http.ResponseWriter, r *http.Request) {
	var req dto.ReplaceItemsRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}
	if err := h.service.ReplaceItems(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id"), req.Items); err != nil {
		writeErr(w, h.logger, err, "Failed to replace items")
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Items replaced", nil)
}

// TogglePin flips the pin flag of one slot
// @Summary Toggle slot pin
// @Tags Setlists
// @Accept json
// @Produce json
// @Param id path string true "Setlist ID"
// @Param request body dto.TogglePinRequest true "Slot"
// @Success 200 {object} dto.TogglePinResponse "New pin state"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Security BearerAuth
// @Router /setlists/{id}/pin [post]
func (h *SetlistHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	var req dto.TogglePinRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	pinned, err := h.service.TogglePin(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id"), *req.SetIndex, *req.Position)
	if err != nil {
		writeErr(w, h.logger, err, "Failed to toggle pin")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, dto.TogglePinResponse{IsPinned: pinned})
}

// ExportPDF renders the setlist as a printable PDF
// @Summary Export setlist as PDF
// @Description Requires an active or trialing subscription on the band owner's account
// @Tags Setlists
// @Produce application/pdf
// @Param id path string true "Setlist ID"
// @Success 200 {file} file "PDF document"
// @Failure 402 {object} utils.ErrorResponse "Subscription required"
// @Failure 404 {object} utils.ErrorResponse "Setlist not found"
// @Security BearerAuth
// @Router /setlists/{id}/export.pdf [get]
func (h *SetlistHandler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	name, err := h.service.ExportPDF(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id"), &buf)
	if err != nil {
		writeErr(w, h.logger, err, "Failed to export setlist")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnWithErr(err, "Failed to send setlist PDF")
	}
}
