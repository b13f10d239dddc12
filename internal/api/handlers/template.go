package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/setlistr/setlistr/internal/api/dto"
	"github.com/setlistr/setlistr/internal/api/middleware"
	"github.com/setlistr/setlistr/internal/domain/template"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/utils"
	"github.com/setlistr/setlistr/internal/pkg/validator"
)

// TemplateHandler serves setlist templates
type TemplateHandler struct {
	service   template.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewTemplateHandler creates a new template handler
func NewTemplateHandler(service template.Service, log *logger.Logger, val *validator.Validator) *TemplateHandler {
	return &TemplateHandler{
		service:   service,
		logger:    log,
		validator: val,
	}
}

var templatePatchTypes = map[string]decoder{
	"setsConfig": decodeAs[[]template.SetConfig],
}

// List returns a band's templates
// @Summary List templates
// @Description Templates of a band sorted by name. Callers without read access get an empty list.
// @Tags Templates
// @Produce json
// @Param bandId path string true "Band ID"
// @Success 200 {object} utils.SuccessResponse{data=[]template.Template} "Templates"
// @Security BearerAuth
// @Router /bands/{bandId}/templates [get]
func (h *TemplateHandler) List(w http.ResponseWriter, r *http.Request) {
	templates, err := h.service.List(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "bandId"))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to list templates")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, templates)
}

// Get returns a template, or null when absent or not readable
// @Summary Get template
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} utils.SuccessResponse{data=template.Template} "Template or null"
// @Security BearerAuth
// @Router /templates/{id} [get]
func (h *TemplateHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.service.Get(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to get template")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, t)
}

// Create creates a template
// @Summary Create template
// @Tags Templates
// @Accept json
// @Produce json
// @Param bandId path string true "Band ID"
// @Param request body dto.CreateTemplateRequest true "Template"
// @Success 201 {object} dto.IDResponse "Created template id"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Failure 403 {object} utils.ErrorResponse "Not authorized"
// @Security BearerAuth
// @Router /bands/{bandId}/templates [post]
func (h *TemplateHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTemplateRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	id, err := h.service.Create(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "bandId"), req.Name, req.SetsConfig)
	if err != nil {
		writeErr(w, h.logger, err, "Failed to create template")
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, dto.IDResponse{ID: id})
}

// Update applies a template patch
// @Summary Update template
// @Description An empty patch succeeds without writing
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body object true "Fields to change: name, setsConfig"
// @Success 200 {object} utils.SuccessResponse "Template updated"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Failure 404 {object} utils.ErrorResponse "Template not found"
// @Security BearerAuth
// @Router /templates/{id} [patch]
func (h *TemplateHandler) Update(w http.ResponseWriter, r *http.Request) {
	fields, ok := readPatch(w, r, templatePatchTypes)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id"), fields); err != nil {
		writeErr(w, h.logger, err, "Failed to update template")
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Template updated", nil)
}

// Delete removes a template
// @Summary Delete template
// @Tags Templates
// @Produce json
// @Param id path string true "Template ID"
// @Success 200 {object} utils.SuccessResponse "Template deleted"
// @Failure 404 {object} utils.ErrorResponse "Template not found"
// @Security BearerAuth
// @Router /templates/{id} [delete]
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeErr(w, h.logger, err, "Failed to delete template")
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Template deleted", nil)
}

// CreateFromSetlist saves a setlist's pinned slots as a template
// @Summary Create template from setlist
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Setlist ID"
// @Param request body dto.TemplateFromSetlistRequest true "Template name"
// @Success 201 {object} dto.IDResponse "Created template id"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Failure 404 {object} utils.ErrorResponse "Setlist not found"
// @Security BearerAuth
// @Router /setlists/{id}/template [post]
func (h *TemplateHandler) CreateFromSetlist(w http.ResponseWriter, r *http.Request) {
	var req dto.TemplateFromSetlistRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	id, err := h.service.CreateFromSetlist(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		writeErr(w, h.logger, err, "Failed to create template")
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, dto.IDResponse{ID: id})
}

// Instantiate creates a setlist from a template
// @Summary Create setlist from template
// @Tags Templates
// @Accept json
// @Produce json
// @Param id path string true "Template ID"
// @Param request body dto.InstantiateTemplateRequest true "Setlist details"
// @Success 201 {object} dto.IDResponse "Created setlist id"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Failure 404 {object} utils.ErrorResponse "Template not found"
// @Security BearerAuth
// @Router /templates/{id}/setlists [post]
func (h *TemplateHandler) Instantiate(w http.ResponseWriter, r *http.Request) {
	var req dto.InstantiateTemplateRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	id, err := h.service.Instantiate(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id"), template.InstantiateInput{
		Name:  req.Name,
		Venue: req.Venue,
		Date:  req.Date,
	})
	if err != nil {
		writeErr(w, h.logger, err, "Failed to create setlist from template")
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, dto.IDResponse{ID: id})
}
