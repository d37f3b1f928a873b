package api

import (
	"io"
	"net/http"

	"carscene-backend/internal/logger"
	"carscene-backend/internal/storage"
)

// UploadHandler backs the presigned URLs the mock storage service hands out.
// The key travels in the query string, the same place a cloud provider would
// carry its signature.
type UploadHandler struct {
	storage storage.StorageInterface
}

func NewUploadHandler(store storage.StorageInterface) *UploadHandler {
	return &UploadHandler{storage: store}
}

func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		respondJSON(w, http.StatusBadRequest, envelope{"success": false, "error": "missing key"})
		return
	}

	if err := h.storage.SaveFile(key, r.Body); err != nil {
		logger.Error("Upload failed", "key", key, "error", err)
		respondJSON(w, http.StatusInternalServerError, envelope{"success": false, "error": "upload failed"})
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"key": key})
}

func (h *UploadHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		respondJSON(w, http.StatusBadRequest, envelope{"success": false, "error": "missing key"})
		return
	}

	file, err := h.storage.ReadFile(key)
	if err != nil {
		respondJSON(w, http.StatusNotFound, envelope{"success": false, "error": "file not found"})
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	if _, err := io.Copy(w, file); err != nil {
		logger.Error("Download failed", "key", key, "error", err)
	}
}
