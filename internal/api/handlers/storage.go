package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/setlistr/setlistr/internal/api/dto"
	"github.com/setlistr/setlistr/internal/api/middleware"
	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/pkg/logger"
	"github.com/setlistr/setlistr/internal/pkg/utils"
	"github.com/setlistr/setlistr/internal/pkg/validator"
	"github.com/setlistr/setlistr/internal/services"
)

// FileURLs issues signed URLs for stored files
type FileURLs interface {
	GenerateUploadURL(ctx context.Context, actor auth.Actor) (*services.UploadTicket, error)
	GetURL(ctx context.Context, actor auth.Actor, storageID string) (*string, error)
	GetURLs(ctx context.Context, actor auth.Actor, storageIDs []string) (map[string]*string, error)
}

type StorageHandler struct {
	service   FileURLs
	logger    *logger.Logger
	validator *validator.Validator
}

func NewStorageHandler(service FileURLs, log *logger.Logger, val *validator.Validator) *StorageHandler {
	return &StorageHandler{
		service:   service,
		logger:    log,
		validator: val,
	}
}

// GenerateUploadURL returns a presigned upload URL and the new file's id
// @Summary Generate upload URL
// @Tags Storage
// @Produce json
// @Success 200 {object} services.UploadTicket "Upload URL and storage id"
// @Failure 503 {object} utils.ErrorResponse "Storage not configured"
// @Security BearerAuth
// @Router /storage/upload-url [post]
func (h *StorageHandler) GenerateUploadURL(w http.ResponseWriter, r *http.Request) {
	ticket, err := h.service.GenerateUploadURL(r.Context(), middleware.ActorFrom(r))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to generate upload URL")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, ticket)
}

// GetURL returns a download URL, or null for a malformed id
// @Summary Get file URL
// @Tags Storage
// @Produce json
// @Param storageId path string true "Storage ID"
// @Success 200 {object} utils.SuccessResponse{data=string} "URL or null"
// @Security BearerAuth
// @Router /storage/{storageId} [get]
func (h *StorageHandler) GetURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.service.GetURL(r.Context(), middleware.ActorFrom(r), chi.URLParam(r, "storageId"))
	if err != nil {
		writeErr(w, h.logger, err, "Failed to get file URL")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, url)
}

// GetURLs maps each storage id to a download URL or null
// @Summary Get file URLs
// @Tags Storage
// @Accept json
// @Produce json
// @Param request body dto.StorageURLsRequest true "Storage ids"
// @Success 200 {object} utils.SuccessResponse{data=map[string]string} "URLs by id"
// @Security BearerAuth
// @Router /storage/urls [post]
func (h *StorageHandler) GetURLs(w http.ResponseWriter, r *http.Request) {
	var req dto.StorageURLsRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	urls, err := h.service.GetURLs(r.Context(), middleware.ActorFrom(r), req.StorageIDs)
	if err != nil {
		writeErr(w, h.logger, err, "Failed to get file URLs")
		return
	}
	utils.WriteSuccess(w, http.StatusOK, urls)
}
