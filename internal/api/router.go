package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"carscene-backend/internal/security"
	"carscene-backend/internal/service"
	"carscene-backend/internal/storage"
)

// Services groups everything the router wires handlers to.
type Services struct {
	Auth         service.AuthService
	Users        service.UserService
	Clubs        service.ClubService
	Inbox        service.InboxService
	Garage       service.GarageService
	Events       service.EventService
	Leaderboards service.LeaderboardService
	Tokens       security.TokenManager
	Storage      storage.StorageInterface
}

// NewRouter builds the full HTTP surface. Everything under /api requires a
// Bearer token except the auth endpoints and the mock-storage presigned
// paths.
func NewRouter(s Services) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondSuccess(w, http.StatusOK, envelope{"status": "ok"})
	}).Methods(http.MethodGet)

	authHandler := NewAuthHandler(s.Auth)
	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/signup", authHandler.Signup).Methods(http.MethodPost)
	auth.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", authHandler.Refresh).Methods(http.MethodPost)

	// Presigned upload/download paths carry their own key, no bearer token.
	uploadHandler := NewUploadHandler(s.Storage)
	r.HandleFunc("/api/v1/upload/{token}", uploadHandler.Upload).Methods(http.MethodPut, http.MethodPost)
	r.HandleFunc("/api/v1/download/{hash}", uploadHandler.Download).Methods(http.MethodGet)

	protected := r.PathPrefix("/api").Subrouter()
	protected.Use(Authenticate(s.Tokens))

	userHandler := NewUserHandler(s.Users)
	protected.HandleFunc("/users/{username}", userHandler.Profile).Methods(http.MethodGet)
	protected.HandleFunc("/users/me", userHandler.UpdateMe).Methods(http.MethodPut)
	protected.HandleFunc("/users/me/device-tokens", userHandler.RegisterDeviceToken).Methods(http.MethodPost)
	protected.HandleFunc("/users/me/device-tokens", userHandler.RemoveDeviceToken).Methods(http.MethodDelete)

	clubHandler := NewClubHandler(s.Clubs)
	protected.HandleFunc("/clubs", clubHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/clubs", clubHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/clubs/invite", clubHandler.Invite).Methods(http.MethodPost)
	protected.HandleFunc("/clubs/join-request", clubHandler.JoinRequest).Methods(http.MethodPost)
	protected.HandleFunc("/clubs/join", clubHandler.Join).Methods(http.MethodPost)
	protected.HandleFunc("/clubs/leave", clubHandler.Leave).Methods(http.MethodPost)
	protected.HandleFunc("/clubs/mail", clubHandler.Mail).Methods(http.MethodPost)
	protected.HandleFunc("/clubs/transfer-leadership", clubHandler.TransferLeadership).Methods(http.MethodPost)
	protected.HandleFunc("/clubs/{id:[0-9]+}", clubHandler.Get).Methods(http.MethodGet)

	inboxHandler := NewInboxHandler(s.Inbox, s.Clubs)
	protected.HandleFunc("/inbox", inboxHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/inbox/unread-count", inboxHandler.UnreadCount).Methods(http.MethodGet)
	protected.HandleFunc("/inbox/mark-read", inboxHandler.MarkRead).Methods(http.MethodPost)
	protected.HandleFunc("/inbox/send", inboxHandler.Send).Methods(http.MethodPost)
	protected.HandleFunc("/inbox/handle-invitation", inboxHandler.HandleInvitation).Methods(http.MethodPost)
	protected.HandleFunc("/inbox/handle-join-request", inboxHandler.HandleJoinRequest).Methods(http.MethodPost)

	garageHandler := NewGarageHandler(s.Garage)
	protected.HandleFunc("/cars", garageHandler.AddCar).Methods(http.MethodPost)
	protected.HandleFunc("/cars", garageHandler.MyCars).Methods(http.MethodGet)
	protected.HandleFunc("/cars/{id:[0-9]+}", garageHandler.GetCar).Methods(http.MethodGet)
	protected.HandleFunc("/cars/{id:[0-9]+}", garageHandler.UpdateCar).Methods(http.MethodPut)
	protected.HandleFunc("/cars/{id:[0-9]+}", garageHandler.DeleteCar).Methods(http.MethodDelete)
	protected.HandleFunc("/cars/{id:[0-9]+}/like", garageHandler.ToggleLike).Methods(http.MethodPost)
	protected.HandleFunc("/garage/gallery", garageHandler.Gallery).Methods(http.MethodGet)
	protected.HandleFunc("/images/upload-url", garageHandler.RequestUpload).Methods(http.MethodPost)
	protected.HandleFunc("/images/{id:[0-9]+}/confirm", garageHandler.ConfirmUpload).Methods(http.MethodPost)
	protected.HandleFunc("/images/{id:[0-9]+}/download-url", garageHandler.DownloadURL).Methods(http.MethodGet)
	protected.HandleFunc("/images/{id:[0-9]+}", garageHandler.DeleteImage).Methods(http.MethodDelete)

	eventHandler := NewEventHandler(s.Events)
	protected.HandleFunc("/events", eventHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/events", eventHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/events/{id:[0-9]+}", eventHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/events/{id:[0-9]+}/rsvp", eventHandler.RSVP).Methods(http.MethodPost)

	leaderboardHandler := NewLeaderboardHandler(s.Leaderboards)
	protected.HandleFunc("/leaderboards/clubs", leaderboardHandler.Clubs).Methods(http.MethodGet)
	protected.HandleFunc("/leaderboards/users", leaderboardHandler.Users).Methods(http.MethodGet)

	return r
}
