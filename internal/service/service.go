package service

import (
	"context"
	"errors"

	"carscene-backend/internal/domain"
)

// ErrInvalidCredentials is returned by AuthService on a failed login or an
// unusable refresh token. The HTTP layer maps it to 401.
var ErrInvalidCredentials = errors.New("invalid credentials")

type AuthService interface {
	Signup(ctx context.Context, username, displayName, email, password string) (*domain.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*domain.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type UserService interface {
	GetProfile(ctx context.Context, username string) (*domain.User, *domain.ProfileStats, []domain.Club, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	RegisterDeviceToken(ctx context.Context, userID int32, token, platform string) error
	RemoveDeviceToken(ctx context.Context, userID int32, token string) error
}

type ClubService interface {
	CreateClub(ctx context.Context, leaderID int32, club *domain.Club) error
	GetClub(ctx context.Context, clubID int32) (*domain.Club, []domain.User, []domain.ClubMember, error)
	ListClubs(ctx context.Context) ([]domain.Club, error)

	// Membership workflow
	SendInvitation(ctx context.Context, callerID, clubID, targetUserID int32, body string) (*domain.Message, error)
	SendJoinRequest(ctx context.Context, callerID, clubID int32, body string) (*domain.Message, error)
	JoinOpenClub(ctx context.Context, callerID, clubID int32) error
	HandleInvitation(ctx context.Context, callerID, messageID int32, accept bool) error
	HandleJoinRequest(ctx context.Context, callerID, messageID int32, approve bool) error
	LeaveClub(ctx context.Context, callerID, clubID, userID int32) error
	TransferLeadership(ctx context.Context, callerID, clubID, newLeaderID int32) error

	// SendClubMail fans one announcement out to every member, the sender
	// included. Returns the number of inbox rows written.
	SendClubMail(ctx context.Context, callerID, clubID int32, subject, body string) (int, error)
}

type InboxService interface {
	GetInbox(ctx context.Context, userID, page, pageSize int32) ([]domain.Message, int32, error)
	UnreadCount(ctx context.Context, userID int32) (int32, error)
	MarkAsRead(ctx context.Context, userID, messageID int32) error
	SendDirectMessage(ctx context.Context, senderID, recipientID int32, subject, body string) (*domain.Message, error)
}

type GarageService interface {
	AddCar(ctx context.Context, car *domain.Car) error
	GetCar(ctx context.Context, carID int32) (*domain.Car, []domain.CarImage, error)
	UpdateCar(ctx context.Context, callerID int32, car *domain.Car) error
	DeleteCar(ctx context.Context, callerID, carID int32) error
	ListByOwner(ctx context.Context, ownerID int32) ([]domain.Car, error)
	Gallery(ctx context.Context, viewerID, page, pageSize int32) (*domain.GalleryPage, error)
	ToggleLike(ctx context.Context, callerID, carID int32) (liked bool, likeCount int32, err error)

	RequestImageUpload(ctx context.Context, callerID int32, carID *int32, filename, contentType string, isPrimary bool) (*ImageUploadTicket, error)
	ConfirmImageUpload(ctx context.Context, callerID, imageID, carID int32) (*domain.CarImage, error)
	ImageDownloadURL(ctx context.Context, imageID int32) (string, error)
	DeleteImage(ctx context.Context, callerID, imageID int32) error
}

// ImageUploadTicket is handed to a client that wants to upload a car photo:
// a presigned URL plus the pending image row it must confirm afterwards.
type ImageUploadTicket struct {
	ImageID   int32  `json:"image_id"`
	UploadURL string `json:"upload_url"`
	ExpiresIn int64  `json:"expires_in_seconds"`
}

type EventService interface {
	CreateEvent(ctx context.Context, hostID int32, event *domain.Event) error
	GetEvent(ctx context.Context, eventID int32) (*domain.Event, []domain.EventAttendee, error)
	ListEvents(ctx context.Context, clubID *int32, upcomingOnly bool) ([]domain.Event, error)
	RSVP(ctx context.Context, userID, eventID int32, status domain.RSVPStatus) error
}

type LeaderboardService interface {
	ClubLeaderboard(ctx context.Context, period string) ([]domain.ClubLeaderboardEntry, error)
	UserLeaderboard(ctx context.Context, period string) ([]domain.UserLeaderboardEntry, error)
}

// EmailService delivers transactional email. Callers treat it as best-effort
// and never fail a request on an email error.
type EmailService interface {
	SendInvitationEmail(ctx context.Context, toEmail, toName, clubName, inviterName string) error
	SendMembershipResultEmail(ctx context.Context, toEmail, toName, clubName string, accepted bool) error
}
