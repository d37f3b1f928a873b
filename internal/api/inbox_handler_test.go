package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"carscene-backend/internal/domain"
)

func TestInboxHandler_HandleInvitation(t *testing.T) {
	t.Run("Accept", func(t *testing.T) {
		clubs := new(MockClubService)
		h := NewInboxHandler(new(MockInboxService), clubs)

		clubs.On("HandleInvitation", mock.Anything, int32(2), int32(42), true).Return(nil)

		body := []byte(`{"messageId": 42, "action": "accept", "clubId": 10, "inviterId": 1}`)
		rec := httptest.NewRecorder()
		h.HandleInvitation(rec, authedRequest(http.MethodPost, "/api/inbox/handle-invitation", body, 2))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeEnvelope(t, rec)["success"])
		clubs.AssertExpectations(t)
	})

	t.Run("Reject", func(t *testing.T) {
		clubs := new(MockClubService)
		h := NewInboxHandler(new(MockInboxService), clubs)

		clubs.On("HandleInvitation", mock.Anything, int32(2), int32(42), false).Return(nil)

		body := []byte(`{"messageId": 42, "action": "reject"}`)
		rec := httptest.NewRecorder()
		h.HandleInvitation(rec, authedRequest(http.MethodPost, "/api/inbox/handle-invitation", body, 2))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("UnknownAction", func(t *testing.T) {
		clubs := new(MockClubService)
		h := NewInboxHandler(new(MockInboxService), clubs)

		body := []byte(`{"messageId": 42, "action": "maybe"}`)
		rec := httptest.NewRecorder()
		h.HandleInvitation(rec, authedRequest(http.MethodPost, "/api/inbox/handle-invitation", body, 2))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		clubs.AssertNotCalled(t, "HandleInvitation", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ResolvedTokenMapsTo404", func(t *testing.T) {
		clubs := new(MockClubService)
		h := NewInboxHandler(new(MockInboxService), clubs)

		clubs.On("HandleInvitation", mock.Anything, int32(2), int32(42), true).
			Return(fmt.Errorf("%w: no pending request found for this message", domain.ErrNotFound))

		body := []byte(`{"messageId": 42, "action": "accept"}`)
		rec := httptest.NewRecorder()
		h.HandleInvitation(rec, authedRequest(http.MethodPost, "/api/inbox/handle-invitation", body, 2))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestInboxHandler_HandleJoinRequest(t *testing.T) {
	t.Run("Approve", func(t *testing.T) {
		clubs := new(MockClubService)
		h := NewInboxHandler(new(MockInboxService), clubs)

		clubs.On("HandleJoinRequest", mock.Anything, int32(1), int32(43), true).Return(nil)

		body := []byte(`{"messageId": 43, "action": "approve", "clubId": 10, "senderId": 5}`)
		rec := httptest.NewRecorder()
		h.HandleJoinRequest(rec, authedRequest(http.MethodPost, "/api/inbox/handle-join-request", body, 1))

		assert.Equal(t, http.StatusOK, rec.Code)
		clubs.AssertExpectations(t)
	})

	t.Run("AcceptIsNotApprove", func(t *testing.T) {
		clubs := new(MockClubService)
		h := NewInboxHandler(new(MockInboxService), clubs)

		body := []byte(`{"messageId": 43, "action": "accept"}`)
		rec := httptest.NewRecorder()
		h.HandleJoinRequest(rec, authedRequest(http.MethodPost, "/api/inbox/handle-join-request", body, 1))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		clubs.AssertNotCalled(t, "HandleJoinRequest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("NonLeaderMapsTo403", func(t *testing.T) {
		clubs := new(MockClubService)
		h := NewInboxHandler(new(MockInboxService), clubs)

		clubs.On("HandleJoinRequest", mock.Anything, int32(7), int32(43), false).
			Return(fmt.Errorf("%w: only the club leader can respond to join requests", domain.ErrForbidden))

		body := []byte(`{"messageId": 43, "action": "reject"}`)
		rec := httptest.NewRecorder()
		h.HandleJoinRequest(rec, authedRequest(http.MethodPost, "/api/inbox/handle-join-request", body, 7))

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestInboxHandler_List(t *testing.T) {
	inbox := new(MockInboxService)
	h := NewInboxHandler(inbox, new(MockClubService))

	inbox.On("GetInbox", mock.Anything, int32(7), int32(2), int32(10)).
		Return([]domain.Message{{ID: 1}, {ID: 2}}, int32(14), nil)

	rec := httptest.NewRecorder()
	h.List(rec, authedRequest(http.MethodGet, "/api/inbox?page=2&page_size=10", nil, 7))

	assert.Equal(t, http.StatusOK, rec.Code)
	payload := decodeEnvelope(t, rec)
	assert.Equal(t, float64(14), payload["total_count"])
	assert.Len(t, payload["messages"], 2)
}

func TestInboxHandler_MarkRead(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		inbox := new(MockInboxService)
		h := NewInboxHandler(inbox, new(MockClubService))

		inbox.On("MarkAsRead", mock.Anything, int32(7), int32(42)).Return(nil)

		body := []byte(`{"messageId": 42}`)
		rec := httptest.NewRecorder()
		h.MarkRead(rec, authedRequest(http.MethodPost, "/api/inbox/mark-read", body, 7))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("SomeoneElsesMessage", func(t *testing.T) {
		inbox := new(MockInboxService)
		h := NewInboxHandler(inbox, new(MockClubService))

		inbox.On("MarkAsRead", mock.Anything, int32(8), int32(42)).
			Return(fmt.Errorf("%w: message not found", domain.ErrNotFound))

		body := []byte(`{"messageId": 42}`)
		rec := httptest.NewRecorder()
		h.MarkRead(rec, authedRequest(http.MethodPost, "/api/inbox/mark-read", body, 8))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
