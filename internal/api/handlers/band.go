package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/setlistr/setlistr/internal/api/dto"
	"github.com/setlistr/setlistr/internal/api/middleware"
	"github.com/setlistr/setlistr/internal/domain/band"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/utils"
	"github.com/setlistr/setlistr/internal/pkg/validator"
)

type BandHandler struct {
	service   band.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewBandHandler(service band.Service, log *logger.Logger, val *validator.Validator) *BandHandler {
	return &BandHandler{
		service:   service,
		logger:    log,
		validator: val,
	}
}

// List returns the caller's bands
// @Summary List bands
// @Description Bands owned by the signed-in user, sorted by name
// @Tags Bands
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]band.Band} "Bands"
// @Security BearerAuth
// @Router /bands [get]
func (h *BandHandler) List(w http.ResponseWriter, r *http.Request) {
	bands, err := h.service.List(r.Context(), middleware.ActorFrom(r))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to list bands")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, bands)
}

// Get returns a band, or null when it is missing or not readable
// @Summary Get band
// @Tags Bands
// @Produce json
// @Param bandId path string true "Band ID"
// @Success 200 {object} utils.SuccessResponse{data=band.Band} "Band or null"
// @Security BearerAuth
// @Router /bands/{bandId} [get]
func (h *BandHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.Get(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "bandId"))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to get band")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, b)
}

// GetBySlug returns a band by its slug, or null
// @Summary Get band by slug
// @Tags Bands
// @Produce json
// @Param slug path string true "Band slug"
// @Success 200 {object} utils.SuccessResponse{data=band.Band} "Band or null"
// @Security BearerAuth
// @Router /bands/by-slug/{slug} [get]
func (h *BandHandler) GetBySlug(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBySlug(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "slug"))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to get band")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, b)
}

// Create creates a band owned by the caller
// @Summary Create band
// @Tags Bands
// @Accept json
// @Produce json
// @Param request body dto.CreateBandRequest true "Band"
// @Success 201 {object} dto.IDResponse "Created band id"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Failure 409 {object} utils.ErrorResponse "Slug taken"
// @Security BearerAuth
// @Router /bands [post]
func (h *BandHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBandRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	id, err := h.service.Create(r.Context(), middleware.ActorFrom(r), req.Name, req.Slug)
	if err != nil {
		writeErr(w, h.logger, err, "Failed to create band")
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, dto.IDResponse{ID: id})
}

// Update applies a name/slug patch
// @Summary Update band
// @Tags Bands
// @Accept json
// @Produce json
// @Param bandId path string true "Band ID"
// @Param request body object true "Fields to change: name, slug"
// @Success 200 {object} utils.SuccessResponse "Band updated"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Failure 404 {object} utils.ErrorResponse "Band not found"
// @Security BearerAuth
// @Router /bands/{bandId} [patch]
func (h *BandHandler) Update(w http.ResponseWriter, r *http.Request) {
	fields, ok := readPatch(w, r, nil)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "bandId"), fields); err != nil {
		writeErr(w, h.logger, err, "Failed to update band")
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Band updated", nil)
}

// Delete removes a band with its songs, setlists, templates and members
// @Summary Delete band
// @Tags Bands
// @Produce json
// @Param bandId path string true "Band ID"
// @Success 200 {object} utils.SuccessResponse "Band deleted"
// @Failure 404 {object} utils.ErrorResponse "Band not found"
// @Security BearerAuth
// @Router /bands/{bandId} [delete]
func (h *BandHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "bandId")); err != nil {
		writeErr(w, h.logger, err, "Failed to delete band")
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Band deleted", nil)
}
