package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/setlistr/setlistr/internal/api/dto"
	"github.com/setlistr/setlistr/internal/api/middleware"
	"github.com/setlistr/setlistr/internal/domain/song"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/utils"
	"github.com/setlistr/setlistr/internal/pkg/validator"
)

type SongHandler struct {
	service   song.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewSongHandler(service song.Service, log *logger.Logger, val *validator.Validator) *SongHandler {
	return &SongHandler{
		service:   service,
		logger:    log,
		validator: val,
	}
}

// List returns a band's songs sorted by title
// @Summary List songs
// @Tags Songs
// @Produce json
// @Param bandId path string true "Band ID"
// @Success 200 {object} utils.SuccessResponse{data=[]song.Song} "Songs"
// @Security BearerAuth
// @Router /bands/{bandId}/songs [get]
func (h *SongHandler) List(w http.ResponseWriter, r *http.Request) {
	songs, err := h.service.List(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "bandId"))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to list songs")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, songs)
}

// Get returns a song, or null
// @Summary Get song
// @Tags Songs
// @Produce json
// @Param id path string true "Song ID"
// @Success 200 {object} utils.SuccessResponse{data=song.Song} "Song or null"
// @Security BearerAuth
// @Router /songs/{id} [get]
func (h *SongHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.service.Get(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to get song")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, s)
}

// Create adds a song to a band
// @Summary Create song
// @Tags Songs
// @Accept json
// @Produce json
// @Param bandId path string true "Band ID"
// @Param request body dto.CreateSongRequest true "Song"
// @Success 201 {object} dto.IDResponse "Created song id"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Security BearerAuth
// @Router /bands/{bandId}/songs [post]
func (h *SongHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSongRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	id, err := h.service.Create(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "bandId"), &song.Song{
		Title:           req.Title,
		Artist:          req.Artist,
		VocalIntensity:  req.VocalIntensity,
		EnergyLevel:     req.EnergyLevel,
		Key:             req.Key,
		Tempo:           req.Tempo,
		DurationSeconds: req.DurationSeconds,
		Notes:           req.Notes,
	})
	if err != nil {
		writeErr(w, h.logger, err, "Failed to create song")
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, dto.IDResponse{ID: id})
}

// Update applies a song patch
// @Summary Update song
// @Tags Songs
// @Accept json
// @Produce json
// @Param id path string true "Song ID"
// @Param request body object true "Fields to change"
// @Success 200 {object} utils.SuccessResponse "Song updated"
// @Failure 400 {object} utils.ErrorResponse "Validation error"
// @Failure 404 {object} utils.ErrorResponse "Song not found"
// @Security BearerAuth
// @Router /songs/{id} [patch]
func (h *SongHandler) Update(w http.ResponseWriter, r *http.Request) {
	fields, ok := readPatch(w, r, nil)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id"), fields); err != nil {
		writeErr(w, h.logger, err, "Failed to update song")
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Song updated", nil)
}

// Delete removes a song and empties the setlist slots holding it
// @Summary Delete song
// @Tags Songs
// @Produce json
// @Param id path string true "Song ID"
// @Success 200 {object} utils.SuccessResponse "Song deleted"
// @Failure 404 {object} utils.ErrorResponse "Song not found"
// @Security BearerAuth
// @Router /songs/{id} [delete]
func (h *SongHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "id")); err != nil {
		writeErr(w, h.logger, err, "Failed to delete song")
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Song deleted", nil)
}
