package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jgrady/homekeep/internal/auth"
	"github.com/jgrady/homekeep/internal/store"
)

type UserHandler struct {
	users      *store.UserStore
	households *store.HouseholdStore
	pictures   *store.ProfilePictureStore
	logger     *slog.Logger
}

func NewUserHandler(users *store.UserStore, households *store.HouseholdStore, pictures *store.ProfilePictureStore, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, households: households, pictures: pictures, logger: logger}
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if len(req.Username) < 3 {
		writeError(w, http.StatusBadRequest, "username must be at least 3 characters")
		return
	}
	if !strings.Contains(req.Email, "@") {
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	}

	user, err := h.users.UpdateProfile(auth.UserID(r.Context()), req.Username, req.Email)
	if err != nil {
		if store.IsUniqueViolation(err) {
			writeError(w, http.StatusConflict, "username or email already taken")
			return
		}
		h.logger.Error("update user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Current string `json:"current"`
		New     string `json:"new"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.New) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	user, err := h.users.GetByID(auth.UserID(r.Context()))
	if err != nil || user == nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to change password")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Current) {
		writeError(w, http.StatusUnauthorized, "current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.New)
	if err != nil {
		h.logger.Error("hash password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to change password")
		return
	}
	if err := h.users.UpdatePassword(user.ID, hash); err != nil {
		h.logger.Error("update password", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to change password")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetProfilePicture assigns an avatar. Picture id 0 resets to the default.
func (h *UserHandler) SetProfilePicture(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProfilePictureID int64 `json:"profilePictureId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.ProfilePictureID < 0 {
		writeError(w, http.StatusBadRequest, "invalid profile picture id")
		return
	}

	var pictureID *int64
	if req.ProfilePictureID != 0 {
		picture, err := h.pictures.GetByID(req.ProfilePictureID)
		if err != nil {
			h.logger.Error("get profile picture", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to set profile picture")
			return
		}
		if picture == nil {
			writeError(w, http.StatusNotFound, "profile picture not found")
			return
		}
		pictureID = &picture.ID
	}

	userID := auth.UserID(r.Context())
	if err := h.users.SetProfilePicture(userID, pictureID); err != nil {
		h.logger.Error("set profile picture", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set profile picture")
		return
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		h.logger.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set profile picture")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserID(r.Context())

	// A user who owns a household takes it down with them.
	owned, err := h.households.GetByOwner(userID)
	if err != nil {
		h.logger.Error("lookup owned household", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}
	if owned != nil {
		if err := h.households.Delete(owned.ID); err != nil {
			h.logger.Error("delete owned household", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to delete user")
			return
		}
	}

	if err := h.users.Delete(userID); err != nil {
		h.logger.Error("delete user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
