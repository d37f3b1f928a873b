package api

import (
	"net/http"
	"strconv"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/service"
)

type InboxHandler struct {
	inbox service.InboxService
	clubs service.ClubService
}

func NewInboxHandler(inbox service.InboxService, clubs service.ClubService) *InboxHandler {
	return &InboxHandler{inbox: inbox, clubs: clubs}
}

func (h *InboxHandler) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 0)

	messages, total, err := h.inbox.GetInbox(r.Context(), CallerID(r.Context()), page, pageSize)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	respondSuccess(w, http.StatusOK, envelope{
		"messages":    messages,
		"total_count": total,
		"page":        page,
	})
}

func (h *InboxHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.inbox.UnreadCount(r.Context(), CallerID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, envelope{"unread_count": count})
}

func (h *InboxHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MessageID int32 `json:"messageId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.inbox.MarkAsRead(r.Context(), CallerID(r.Context()), req.MessageID); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil)
}

func (h *InboxHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RecipientID int32  `json:"recipientId"`
		Subject     string `json:"subject"`
		Message     string `json:"message"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	msg, err := h.inbox.SendDirectMessage(r.Context(), CallerID(r.Context()), req.RecipientID, req.Subject, req.Message)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, envelope{"message": msg})
}

// HandleInvitation resolves an invitation token. The clubId and inviterId
// fields are accepted for wire compatibility, but resolution keys off the
// message row alone.
func (h *InboxHandler) HandleInvitation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MessageID int32  `json:"messageId"`
		Action    string `json:"action"`
		ClubID    int32  `json:"clubId"`
		InviterID int32  `json:"inviterId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	var accept bool
	switch req.Action {
	case "accept":
		accept = true
	case "reject":
		accept = false
	default:
		respondJSON(w, http.StatusBadRequest, envelope{"success": false, "error": "action must be accept or reject"})
		return
	}

	if err := h.clubs.HandleInvitation(r.Context(), CallerID(r.Context()), req.MessageID, accept); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil)
}

// HandleJoinRequest resolves a join-request token; same contract as
// HandleInvitation with approve in place of accept.
func (h *InboxHandler) HandleJoinRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MessageID int32  `json:"messageId"`
		Action    string `json:"action"`
		ClubID    int32  `json:"clubId"`
		SenderID  int32  `json:"senderId"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	var approve bool
	switch req.Action {
	case "approve":
		approve = true
	case "reject":
		approve = false
	default:
		respondJSON(w, http.StatusBadRequest, envelope{"success": false, "error": "action must be approve or reject"})
		return
	}

	if err := h.clubs.HandleJoinRequest(r.Context(), CallerID(r.Context()), req.MessageID, approve); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil)
}

func queryInt32(r *http.Request, name string, fallback int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 0 {
		return fallback
	}
	return int32(v)
}
