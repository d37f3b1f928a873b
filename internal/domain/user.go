package domain

type User struct {
	ID              int32  `json:"id"`
	Username        string `json:"username"`
	DisplayName     string `json:"display_name"`
	Email           string `json:"email"`
	PasswordHash    string `json:"-"`
	ProfileImageURL string `json:"profile_image_url"`
	Location        string `json:"location"`
	CreatedOn       string `json:"created_on"`
	UpdatedOn       string `json:"updated_on"`
}

// ProfileStats is the aggregate returned by the profile_stats database
// function: pre-joined counts for a profile page.
type ProfileStats struct {
	UserID        int32 `json:"user_id"`
	CarCount      int32 `json:"car_count"`
	ClubCount     int32 `json:"club_count"`
	EventCount    int32 `json:"event_count"`
	LikesReceived int32 `json:"likes_received"`
}

// DeviceToken is a registered FCM push target for a user.
type DeviceToken struct {
	UserID    int32  `json:"user_id"`
	Token     string `json:"token"`
	Platform  string `json:"platform"`
	CreatedOn string `json:"created_on"`
}
