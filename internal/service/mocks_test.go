package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/push"
	"carscene-backend/internal/repository"
)

// fakeTx runs the transaction body against the mocks directly; the
// commit/rollback mechanics belong to the postgres store tests.
type fakeTx struct {
	users    repository.UserRepository
	clubs    repository.ClubRepository
	messages repository.MessageRepository
}

func (f *fakeTx) Users() repository.UserRepository       { return f.users }
func (f *fakeTx) Clubs() repository.ClubRepository       { return f.clubs }
func (f *fakeTx) Messages() repository.MessageRepository { return f.messages }

func (f *fakeTx) ExecTx(ctx context.Context, fn func(repository.Atomic) error) error {
	return fn(f)
}

type MockUserRepo struct{ mock.Mock }

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) GetProfileStats(ctx context.Context, userID int32) (*domain.ProfileStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfileStats), args.Error(1)
}

func (m *MockUserRepo) AddDeviceToken(ctx context.Context, token *domain.DeviceToken) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockUserRepo) ListDeviceTokens(ctx context.Context, userID int32) ([]domain.DeviceToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DeviceToken), args.Error(1)
}

func (m *MockUserRepo) DeleteDeviceToken(ctx context.Context, userID int32, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

type MockClubRepo struct{ mock.Mock }

func (m *MockClubRepo) Create(ctx context.Context, club *domain.Club) error {
	return m.Called(ctx, club).Error(0)
}

func (m *MockClubRepo) GetByID(ctx context.Context, id int32) (*domain.Club, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Club), args.Error(1)
}

func (m *MockClubRepo) List(ctx context.Context) ([]domain.Club, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Club), args.Error(1)
}

func (m *MockClubRepo) Update(ctx context.Context, club *domain.Club) error {
	return m.Called(ctx, club).Error(0)
}

func (m *MockClubRepo) UpdateLeader(ctx context.Context, clubID, newLeaderID int32) error {
	return m.Called(ctx, clubID, newLeaderID).Error(0)
}

func (m *MockClubRepo) AddMember(ctx context.Context, member *domain.ClubMember) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockClubRepo) GetMember(ctx context.Context, clubID, userID int32) (*domain.ClubMember, error) {
	args := m.Called(ctx, clubID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClubMember), args.Error(1)
}

func (m *MockClubRepo) ListMembers(ctx context.Context, clubID int32) ([]domain.User, []domain.ClubMember, error) {
	args := m.Called(ctx, clubID)
	var users []domain.User
	var members []domain.ClubMember
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	if args.Get(1) != nil {
		members = args.Get(1).([]domain.ClubMember)
	}
	return users, members, args.Error(2)
}

func (m *MockClubRepo) MemberIDs(ctx context.Context, clubID int32) ([]int32, error) {
	args := m.Called(ctx, clubID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int32), args.Error(1)
}

func (m *MockClubRepo) UpdateMemberRole(ctx context.Context, clubID, userID int32, role domain.ClubRole) error {
	return m.Called(ctx, clubID, userID, role).Error(0)
}

func (m *MockClubRepo) RemoveMember(ctx context.Context, clubID, userID int32) error {
	return m.Called(ctx, clubID, userID).Error(0)
}

func (m *MockClubRepo) ListByUser(ctx context.Context, userID int32) ([]domain.Club, []domain.ClubMember, error) {
	args := m.Called(ctx, userID)
	var clubs []domain.Club
	var members []domain.ClubMember
	if args.Get(0) != nil {
		clubs = args.Get(0).([]domain.Club)
	}
	if args.Get(1) != nil {
		members = args.Get(1).([]domain.ClubMember)
	}
	return clubs, members, args.Error(2)
}

type MockMessageRepo struct{ mock.Mock }

func (m *MockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockMessageRepo) GetByID(ctx context.Context, id int32) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepo) GetPendingToken(ctx context.Context, id int32) (*domain.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepo) FindPendingToken(ctx context.Context, clubID, senderID, recipientID int32, msgType domain.MessageType) (*domain.Message, error) {
	args := m.Called(ctx, clubID, senderID, recipientID, msgType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Message), args.Error(1)
}

func (m *MockMessageRepo) Resolve(ctx context.Context, id int32) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMessageRepo) ListByRecipient(ctx context.Context, userID int32, limit, offset int32) ([]domain.Message, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	var msgs []domain.Message
	if args.Get(0) != nil {
		msgs = args.Get(0).([]domain.Message)
	}
	return msgs, args.Get(1).(int32), args.Error(2)
}

func (m *MockMessageRepo) UnreadCount(ctx context.Context, userID int32) (int32, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockMessageRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockMessageRepo) PurgeResolvedTokens(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type MockEmailService struct{ mock.Mock }

func (m *MockEmailService) SendInvitationEmail(ctx context.Context, toEmail, toName, clubName, inviterName string) error {
	return m.Called(ctx, toEmail, toName, clubName, inviterName).Error(0)
}

func (m *MockEmailService) SendMembershipResultEmail(ctx context.Context, toEmail, toName, clubName string, accepted bool) error {
	return m.Called(ctx, toEmail, toName, clubName, accepted).Error(0)
}

// noopInvalidator and noopBroadcaster keep side-effect plumbing quiet in
// service tests.
type noopInvalidator struct{}

func (noopInvalidator) InvalidateTags(ctx context.Context, tags ...string)   {}
func (noopInvalidator) InvalidatePaths(ctx context.Context, paths ...string) {}

type noopBroadcaster struct{}

func (noopBroadcaster) NewMessage(ctx context.Context, recipientID int32, msg *domain.Message) {}
func (noopBroadcaster) BadgeIncrement(ctx context.Context, recipientID int32)                  {}

func newTestNotifier(users *MockUserRepo) *Notifier {
	// Push fan-out reads device tokens on every delivery; keep it permissive.
	users.On("ListDeviceTokens", mock.Anything, mock.Anything).Return([]domain.DeviceToken{}, nil).Maybe()
	return NewNotifier(users, noopInvalidator{}, noopBroadcaster{}, push.NoopSender{})
}
