package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/service"
)

type UserHandler struct {
	users service.UserService
}

func NewUserHandler(users service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Profile returns a user page: the user, the profile_stats aggregate and
// club memberships, assembled in one request.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := mux.Vars(r)["username"]
	user, stats, clubs, err := h.users.GetProfile(r.Context(), username)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if clubs == nil {
		clubs = []domain.Club{}
	}
	respondSuccess(w, http.StatusOK, envelope{
		"user":  user,
		"stats": stats,
		"clubs": clubs,
	})
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DisplayName     string `json:"display_name"`
		Email           string `json:"email"`
		ProfileImageURL string `json:"profile_image_url"`
		Location        string `json:"location"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	user := &domain.User{
		ID:              CallerID(r.Context()),
		DisplayName:     req.DisplayName,
		Email:           req.Email,
		ProfileImageURL: req.ProfileImageURL,
		Location:        req.Location,
	}
	if err := h.users.UpdateProfile(r.Context(), user); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"user": user})
}

func (h *UserHandler) RegisterDeviceToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Platform string `json:"platform"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.users.RegisterDeviceToken(r.Context(), CallerID(r.Context()), req.Token, req.Platform); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, nil)
}

func (h *UserHandler) RemoveDeviceToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.users.RemoveDeviceToken(r.Context(), CallerID(r.Context()), req.Token); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil)
}
