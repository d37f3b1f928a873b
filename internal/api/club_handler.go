package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/service"
)

type ClubHandler struct {
	clubs service.ClubService
}

func NewClubHandler(clubs service.ClubService) *ClubHandler {
	return &ClubHandler{clubs: clubs}
}

func (h *ClubHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string `json:"name"`
		Description    string `json:"description"`
		BannerImageURL string `json:"banner_image_url"`
		Location       string `json:"location"`
		ClubType       string `json:"club_type"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	club := &domain.Club{
		Name:           req.Name,
		Description:    req.Description,
		BannerImageURL: req.BannerImageURL,
		Location:       req.Location,
		ClubType:       domain.ClubType(req.ClubType),
	}
	if err := h.clubs.CreateClub(r.Context(), CallerID(r.Context()), club); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, envelope{"club": club})
}

func (h *ClubHandler) Get(w http.ResponseWriter, r *http.Request) {
	clubID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	club, users, members, err := h.clubs.GetClub(r.Context(), clubID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"club":    club,
		"users":   users,
		"members": members,
	})
}

func (h *ClubHandler) List(w http.ResponseWriter, r *http.Request) {
	clubs, err := h.clubs.ListClubs(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	if clubs == nil {
		clubs = []domain.Club{}
	}
	respondSuccess(w, http.StatusOK, envelope{"clubs": clubs})
}

func (h *ClubHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetUserID int32  `json:"targetUserId"`
		ClubID       int32  `json:"clubId"`
		Message      string `json:"message"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	msg, err := h.clubs.SendInvitation(r.Context(), CallerID(r.Context()), req.ClubID, req.TargetUserID, req.Message)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"message": msg})
}

func (h *ClubHandler) JoinRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClubID  int32  `json:"clubId"`
		Message string `json:"message"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := h.clubs.SendJoinRequest(r.Context(), CallerID(r.Context()), req.ClubID, req.Message); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil)
}

// Join is the direct path for open clubs.
func (h *ClubHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClubID int32 `json:"clubId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.clubs.JoinOpenClub(r.Context(), CallerID(r.Context()), req.ClubID); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil)
}

func (h *ClubHandler) Leave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClubID int32 `json:"clubId"`
		UserID int32 `json:"userId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.clubs.LeaveClub(r.Context(), CallerID(r.Context()), req.ClubID, req.UserID); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil)
}

func (h *ClubHandler) Mail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClubID  int32  `json:"club_id"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	count, err := h.clubs.SendClubMail(r.Context(), CallerID(r.Context()), req.ClubID, req.Subject, req.Message)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{
		"message": "Club mail sent to " + strconv.Itoa(count) + " members",
	})
}

func (h *ClubHandler) TransferLeadership(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClubID      int32 `json:"clubId"`
		NewLeaderID int32 `json:"newLeaderId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.clubs.TransferLeadership(r.Context(), CallerID(r.Context()), req.ClubID, req.NewLeaderID); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil)
}

// pathID parses a positive int32 path variable, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int32, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		respondJSON(w, http.StatusBadRequest, envelope{"success": false, "error": "invalid " + name})
		return 0, false
	}
	return int32(id), true
}
