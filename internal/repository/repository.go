package repository

import (
	"context"
	"time"

	"carscene-backend/internal/domain"
)

// Atomic is the view of the store bound to one database transaction. The
// membership workflow runs its check-then-write sequences through it so the
// existence checks and the writes they guard commit or roll back together.
type Atomic interface {
	Users() UserRepository
	Clubs() ClubRepository
	Messages() MessageRepository
}

// Transactor runs fn inside a single database transaction.
type Transactor interface {
	ExecTx(ctx context.Context, fn func(Atomic) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error

	// GetProfileStats invokes the profile_stats database function
	GetProfileStats(ctx context.Context, userID int32) (*domain.ProfileStats, error)

	// Device tokens for push delivery
	AddDeviceToken(ctx context.Context, token *domain.DeviceToken) error
	ListDeviceTokens(ctx context.Context, userID int32) ([]domain.DeviceToken, error)
	DeleteDeviceToken(ctx context.Context, userID int32, token string) error
}

type ClubRepository interface {
	Create(ctx context.Context, club *domain.Club) error
	GetByID(ctx context.Context, id int32) (*domain.Club, error)
	List(ctx context.Context) ([]domain.Club, error)
	Update(ctx context.Context, club *domain.Club) error
	UpdateLeader(ctx context.Context, clubID, newLeaderID int32) error

	AddMember(ctx context.Context, member *domain.ClubMember) error
	GetMember(ctx context.Context, clubID, userID int32) (*domain.ClubMember, error)
	ListMembers(ctx context.Context, clubID int32) ([]domain.User, []domain.ClubMember, error)
	MemberIDs(ctx context.Context, clubID int32) ([]int32, error)
	UpdateMemberRole(ctx context.Context, clubID, userID int32, role domain.ClubRole) error
	RemoveMember(ctx context.Context, clubID, userID int32) error
	ListByUser(ctx context.Context, userID int32) ([]domain.Club, []domain.ClubMember, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	GetByID(ctx context.Context, id int32) (*domain.Message, error)

	// Workflow tokens. GetPendingToken returns ErrNoRows via database/sql when
	// the token is absent or already resolved; FindPendingToken is the
	// pre-insert duplicate check.
	GetPendingToken(ctx context.Context, id int32) (*domain.Message, error)
	FindPendingToken(ctx context.Context, clubID, senderID, recipientID int32, msgType domain.MessageType) (*domain.Message, error)
	Resolve(ctx context.Context, id int32) error

	ListByRecipient(ctx context.Context, userID int32, limit, offset int32) ([]domain.Message, int32, error)
	UnreadCount(ctx context.Context, userID int32) (int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
	PurgeResolvedTokens(ctx context.Context, before time.Time) (int64, error)
}

type CarRepository interface {
	Create(ctx context.Context, car *domain.Car) error
	GetByID(ctx context.Context, id int32) (*domain.Car, error)
	Update(ctx context.Context, car *domain.Car) error
	Delete(ctx context.Context, id int32) error
	ListByOwner(ctx context.Context, ownerID int32) ([]domain.Car, error)

	// Gallery invokes the garage_gallery database function (pre-joined,
	// paginated aggregate read); ToggleLike invokes toggle_car_like.
	Gallery(ctx context.Context, viewerID, page, pageSize int32) (*domain.GalleryPage, error)
	ToggleLike(ctx context.Context, carID, userID int32) (bool, int32, error)

	// Image management (unified pending + confirmed)
	CreateImage(ctx context.Context, image *domain.CarImage) error
	GetImageByID(ctx context.Context, imageID int32) (*domain.CarImage, error)
	GetImages(ctx context.Context, carID int32) ([]domain.CarImage, error)
	ConfirmImage(ctx context.Context, imageID, carID int32, fileSize int64) error
	DeleteImage(ctx context.Context, imageID int32) error
	SetPrimaryImage(ctx context.Context, carID, imageID int32) error
	DeleteExpiredPendingImages(ctx context.Context) (int64, error)
}

type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) error
	GetByID(ctx context.Context, id int32) (*domain.Event, error)
	List(ctx context.Context, clubID *int32, upcomingOnly bool) ([]domain.Event, error)
	SetRSVP(ctx context.Context, attendee *domain.EventAttendee) error
	ListAttendees(ctx context.Context, eventID int32) ([]domain.EventAttendee, error)
}

type LeaderboardRepository interface {
	// Reads go through the club_leaderboard / user_leaderboard database
	// functions against the latest snapshots.
	ClubLeaderboard(ctx context.Context, period domain.LeaderboardPeriod) ([]domain.ClubLeaderboardEntry, error)
	UserLeaderboard(ctx context.Context, period domain.LeaderboardPeriod) ([]domain.UserLeaderboardEntry, error)

	// Snapshot recomputation, driven by the cron job
	SnapshotClubs(ctx context.Context, period domain.LeaderboardPeriod, start, end time.Time) error
	SnapshotUsers(ctx context.Context, period domain.LeaderboardPeriod, start, end time.Time) error
}
