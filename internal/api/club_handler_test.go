package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"carscene-backend/internal/domain"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func TestClubHandler_Invite(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		clubs := new(MockClubService)
		h := NewClubHandler(clubs)

		clubs.On("SendInvitation", mock.Anything, int32(1), int32(10), int32(2), "come join").
			Return(&domain.Message{ID: 42, Status: domain.MessageStatusPending}, nil)

		body := []byte(`{"targetUserId": 2, "clubId": 10, "message": "come join"}`)
		rec := httptest.NewRecorder()
		h.Invite(rec, authedRequest(http.MethodPost, "/api/clubs/invite", body, 1))

		assert.Equal(t, http.StatusOK, rec.Code)
		payload := decodeEnvelope(t, rec)
		assert.Equal(t, true, payload["success"])
		clubs.AssertExpectations(t)
	})

	t.Run("ForbiddenMapsTo403", func(t *testing.T) {
		clubs := new(MockClubService)
		h := NewClubHandler(clubs)

		clubs.On("SendInvitation", mock.Anything, int32(3), int32(10), int32(2), "").
			Return(nil, fmt.Errorf("%w: only club leaders and admins can invite", domain.ErrForbidden))

		body := []byte(`{"targetUserId": 2, "clubId": 10}`)
		rec := httptest.NewRecorder()
		h.Invite(rec, authedRequest(http.MethodPost, "/api/clubs/invite", body, 3))

		assert.Equal(t, http.StatusForbidden, rec.Code)
		payload := decodeEnvelope(t, rec)
		assert.Equal(t, false, payload["success"])
	})

	t.Run("ConflictMapsTo400", func(t *testing.T) {
		clubs := new(MockClubService)
		h := NewClubHandler(clubs)

		clubs.On("SendInvitation", mock.Anything, int32(1), int32(10), int32(2), "").
			Return(nil, fmt.Errorf("%w: an invitation is already pending", domain.ErrConflict))

		body := []byte(`{"targetUserId": 2, "clubId": 10}`)
		rec := httptest.NewRecorder()
		h.Invite(rec, authedRequest(http.MethodPost, "/api/clubs/invite", body, 1))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		h := NewClubHandler(new(MockClubService))

		rec := httptest.NewRecorder()
		h.Invite(rec, authedRequest(http.MethodPost, "/api/clubs/invite", []byte(`{not json`), 1))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestClubHandler_Leave(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		clubs := new(MockClubService)
		h := NewClubHandler(clubs)

		clubs.On("LeaveClub", mock.Anything, int32(5), int32(10), int32(5)).Return(nil)

		body := []byte(`{"clubId": 10, "userId": 5}`)
		rec := httptest.NewRecorder()
		h.Leave(rec, authedRequest(http.MethodPost, "/api/clubs/leave", body, 5))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeEnvelope(t, rec)["success"])
	})

	t.Run("MissingClubMapsTo400", func(t *testing.T) {
		clubs := new(MockClubService)
		h := NewClubHandler(clubs)

		clubs.On("LeaveClub", mock.Anything, int32(5), int32(99), int32(5)).
			Return(fmt.Errorf("%w: club not found", domain.ErrValidation))

		body := []byte(`{"clubId": 99, "userId": 5}`)
		rec := httptest.NewRecorder()
		h.Leave(rec, authedRequest(http.MethodPost, "/api/clubs/leave", body, 5))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestClubHandler_Mail(t *testing.T) {
	clubs := new(MockClubService)
	h := NewClubHandler(clubs)

	clubs.On("SendClubMail", mock.Anything, int32(1), int32(10), "Meet Sunday", "9am at the wharf").
		Return(12, nil)

	body := []byte(`{"club_id": 10, "subject": "Meet Sunday", "message": "9am at the wharf"}`)
	rec := httptest.NewRecorder()
	h.Mail(rec, authedRequest(http.MethodPost, "/api/clubs/mail", body, 1))

	assert.Equal(t, http.StatusOK, rec.Code)
	payload := decodeEnvelope(t, rec)
	assert.Equal(t, "Club mail sent to 12 members", payload["message"])
}

func TestClubHandler_Get(t *testing.T) {
	t.Run("InvalidID", func(t *testing.T) {
		h := NewClubHandler(new(MockClubService))

		req := authedRequest(http.MethodGet, "/api/clubs/abc", nil, 1)
		req = mux.SetURLVars(req, map[string]string{"id": "abc"})
		rec := httptest.NewRecorder()
		h.Get(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		clubs := new(MockClubService)
		h := NewClubHandler(clubs)
		clubs.On("GetClub", mock.Anything, int32(99)).
			Return(nil, nil, nil, fmt.Errorf("%w: club not found", domain.ErrNotFound))

		req := authedRequest(http.MethodGet, "/api/clubs/99", nil, 1)
		req = mux.SetURLVars(req, map[string]string{"id": "99"})
		rec := httptest.NewRecorder()
		h.Get(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
