package api

import (
	"net/http"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/service"
)

type EventHandler struct {
	events service.EventService
}

func NewEventHandler(events service.EventService) *EventHandler {
	return &EventHandler{events: events}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClubID      *int32 `json:"club_id"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Location    string `json:"location"`
		StartsOn    string `json:"starts_on"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	event := &domain.Event{
		ClubID:      req.ClubID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsOn:    req.StartsOn,
	}
	if err := h.events.CreateEvent(r.Context(), CallerID(r.Context()), event); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, envelope{"event": event})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	event, attendees, err := h.events.GetEvent(r.Context(), eventID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if attendees == nil {
		attendees = []domain.EventAttendee{}
	}
	respondSuccess(w, http.StatusOK, envelope{"event": event, "attendees": attendees})
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	var clubID *int32
	if v := queryInt32(r, "club_id", 0); v > 0 {
		clubID = &v
	}
	upcomingOnly := r.URL.Query().Get("upcoming") == "true"

	events, err := h.events.ListEvents(r.Context(), clubID, upcomingOnly)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if events == nil {
		events = []domain.Event{}
	}
	respondSuccess(w, http.StatusOK, envelope{"events": events})
}

func (h *EventHandler) RSVP(w http.ResponseWriter, r *http.Request) {
	eventID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.events.RSVP(r.Context(), CallerID(r.Context()), eventID, domain.RSVPStatus(req.Status)); err != nil {
		respondError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, nil)
}
