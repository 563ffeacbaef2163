package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yazameet/yazameet-backend/database"
	"github.com/yazameet/yazameet-backend/errs"
	"github.com/yazameet/yazameet-backend/models"
	"github.com/yazameet/yazameet-backend/services"
)

type mediaHandler struct {
	responder  Responder
	logger     zerolog.Logger
	uploadRepo *database.UploadRepo
	storage    services.Presigner
}

func newMediaHandler(uploadRepo *database.UploadRepo, storage services.Presigner) mediaHandler {
	logger := log.With().Str("handlerName", "mediaHandler").Logger()

	return mediaHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		uploadRepo: uploadRepo,
		storage:    storage,
	}
}

// getPresignedURL issues a 60 second upload URL under the caller's key prefix
// @Summary Presigned upload URL
// @Tags Media
// @Accept json
// @Produce json
// @Param body body PresignedURLRequest true "File to upload"
// @Success 200 {object} PresignedURLResponse
// @Failure 429 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse "Storage not configured"
// @Router /media/presigned-url [post]
func (h mediaHandler) getPresignedURL() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := ctxGetUser(r.Context())
		if err != nil {
			h.responder.WriteError(w, errs.Unauthorized)
			return
		}
		if h.storage == nil {
			h.responder.WriteError(w, errs.NewServiceUnavailableError("storage"))
			return
		}

		var req PresignedURLRequest
		if err := decodeAndValidate(w, r, &req); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		key := fmt.Sprintf("%s/%s", user.ID, uuid.New())
		presigned, err := h.storage.PresignUpload(r.Context(), key, req.FileType)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		upload := models.Upload{
			UserID:      user.ID,
			Key:         key,
			FileName:    req.FileName,
			ContentType: req.FileType,
			PublicURL:   presigned.FileURL,
		}
		if err := h.uploadRepo.Add(r.Context(), &upload); err != nil {
			h.responder.WriteError(w, wrapDatabaseError("create", "upload", err))
			return
		}

		h.responder.WriteJSON(w, PresignedURLResponse{
			UploadURL: presigned.UploadURL,
			FileURL:   presigned.FileURL,
			Key:       key,
		})
	}
}
