package handler

import (
	"errors"
	"log"
	"net/http"

	"pixelgram/internal/httputil"
	"pixelgram/internal/model"
	"pixelgram/internal/service"
	"pixelgram/internal/transport/http/middleware"
)

type MediaHandler struct {
	mediaService *service.MediaService
}

func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// UploadPostImage handles POST /media/upload
// Accepts a multipart form with a "file" field and returns the public URL
// to use as image_url when creating a post.
func (h *MediaHandler) UploadPostImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := r.ParseMultipartForm(model.MaxImageSizeBytes); err != nil {
		httputil.WriteBadRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteBadRequest(w, "Missing file field")
		return
	}
	defer file.Close()

	result, err := h.mediaService.UploadPostImage(r.Context(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequest(w, "File exceeds maximum size")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequest(w, "Unsupported image type")
		default:
			log.Printf("[ERROR] Upload post image handler: user=%s err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to upload image")
		}
		return
	}

	httputil.WriteData(w, http.StatusCreated, result)
}

// UploadAvatar handles POST /media/avatar
// Normalizes the image to a 200x200 JPEG before storing.
func (h *MediaHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	if err := r.ParseMultipartForm(model.MaxAvatarSizeBytes); err != nil {
		httputil.WriteBadRequest(w, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.WriteBadRequest(w, "Missing file field")
		return
	}
	defer file.Close()

	result, err := h.mediaService.UploadAvatar(r.Context(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequest(w, "File exceeds maximum size")
		case errors.Is(err, model.ErrInvalidImageType):
			httputil.WriteBadRequest(w, "Unsupported image type")
		default:
			log.Printf("[ERROR] Upload avatar handler: user=%s err=%v", userID, err)
			httputil.WriteInternalError(w, "Failed to upload avatar")
		}
		return
	}

	httputil.WriteData(w, http.StatusCreated, result)
}
