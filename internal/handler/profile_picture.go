package handler

import (
	"log/slog"
	"net/http"

	"github.com/jgrady/homekeep/internal/model"
	"github.com/jgrady/homekeep/internal/store"
)

type ProfilePictureHandler struct {
	pictures *store.ProfilePictureStore
	logger   *slog.Logger
}

func NewProfilePictureHandler(pictures *store.ProfilePictureStore, logger *slog.Logger) *ProfilePictureHandler {
	return &ProfilePictureHandler{pictures: pictures, logger: logger}
}

func (h *ProfilePictureHandler) List(w http.ResponseWriter, r *http.Request) {
	pictures, err := h.pictures.List(r.URL.Query().Get("category"))
	if err != nil {
		h.logger.Error("list profile pictures", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list profile pictures")
		return
	}
	if pictures == nil {
		pictures = []model.ProfilePicture{}
	}
	writeJSON(w, http.StatusOK, pictures)
}
