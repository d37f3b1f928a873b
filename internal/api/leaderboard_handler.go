package api

import (
	"net/http"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/service"
)

type LeaderboardHandler struct {
	leaderboards service.LeaderboardService
}

func NewLeaderboardHandler(leaderboards service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboards: leaderboards}
}

func (h *LeaderboardHandler) Clubs(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboards.ClubLeaderboard(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.ClubLeaderboardEntry{}
	}
	respondSuccess(w, http.StatusOK, envelope{"leaderboard": entries})
}

func (h *LeaderboardHandler) Users(w http.ResponseWriter, r *http.Request) {
	entries, err := h.leaderboards.UserLeaderboard(r.Context(), r.URL.Query().Get("period"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.UserLeaderboardEntry{}
	}
	respondSuccess(w, http.StatusOK, envelope{"leaderboard": entries})
}
