package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/stretchr/testify/mock"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/security"
)

// authedRequest builds a request carrying the claims Authenticate would have
// attached, so handlers can be exercised without the middleware chain.
func authedRequest(method, target string, body []byte, userID int32) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	claims := &security.UserClaims{UserID: userID, Type: security.TokenTypeAccess}
	return req.WithContext(context.WithValue(req.Context(), userClaimsKey, claims))
}

type MockClubService struct{ mock.Mock }

func (m *MockClubService) CreateClub(ctx context.Context, leaderID int32, club *domain.Club) error {
	return m.Called(ctx, leaderID, club).Error(0)
}

func (m *MockClubService) GetClub(ctx context.Context, clubID int32) (*domain.Club, []domain.User, []domain.ClubMember, error) {
	args := m.Called(ctx, clubID)
	var club *domain.Club
	if args.Get(0) != nil {
		club = args.Get(0).(*domain.Club)
	}
	var users []domain.User
	if args.Get(1) != nil {
		users = args.Get(1).([]domain.User)
	}
	var members []domain.ClubMember
	if args.Get(2) != nil {
		members = args.Get(2).([]domain.ClubMember)
	}
	return club, users, members, args.Error(3)
}

func (m *MockClubService) ListClubs(ctx context.Context) ([]domain.Club, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Club), args.Error(1)
}

func (m *MockClubService) SendInvitation(ctx context.Context, callerID, clubID, targetUserID int32, body string) (*domain.Message, error) {
	args := m.Called(ctx, callerID, clubID, targetUserID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockClubService) SendJoinRequest(ctx context.Context, callerID, clubID int32, body string) (*domain.Message, error) {
	args := m.Called(ctx, callerID, clubID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockClubService) JoinOpenClub(ctx context.Context, callerID, clubID int32) error {
	return m.Called(ctx, callerID, clubID).Error(0)
}

func (m *MockClubService) HandleInvitation(ctx context.Context, callerID, messageID int32, accept bool) error {
	return m.Called(ctx, callerID, messageID, accept).Error(0)
}

func (m *MockClubService) HandleJoinRequest(ctx context.Context, callerID, messageID int32, approve bool) error {
	return m.Called(ctx, callerID, messageID, approve).Error(0)
}

func (m *MockClubService) LeaveClub(ctx context.Context, callerID, clubID, userID int32) error {
	return m.Called(ctx, callerID, clubID, userID).Error(0)
}

func (m *MockClubService) TransferLeadership(ctx context.Context, callerID, clubID, newLeaderID int32) error {
	return m.Called(ctx, callerID, clubID, newLeaderID).Error(0)
}

func (m *MockClubService) SendClubMail(ctx context.Context, callerID, clubID int32, subject, body string) (int, error) {
	args := m.Called(ctx, callerID, clubID, subject, body)
	return args.Int(0), args.Error(1)
}

type MockInboxService struct{ mock.Mock }

func (m *MockInboxService) GetInbox(ctx context.Context, userID, page, pageSize int32) ([]domain.Message, int32, error) {
	args := m.Called(ctx, userID, page, pageSize)
	var msgs []domain.Message
	if args.Get(0) != nil {
		msgs = args.Get(0).([]domain.Message)
	}
	return msgs, args.Get(1).(int32), args.Error(2)
}

func (m *MockInboxService) UnreadCount(ctx context.Context, userID int32) (int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockInboxService) MarkAsRead(ctx context.Context, userID, messageID int32) error {
	return m.Called(ctx, userID, messageID).Error(0)
}

func (m *MockInboxService) SendDirectMessage(ctx context.Context, senderID, recipientID int32, subject, body string) (*domain.Message, error) {
	args := m.Called(ctx, senderID, recipientID, subject, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}
