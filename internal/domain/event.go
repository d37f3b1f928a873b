package domain

type RSVPStatus string

const (
	RSVPGoing      RSVPStatus = "going"
	RSVPInterested RSVPStatus = "interested"
	RSVPDeclined   RSVPStatus = "declined"
)

type Event struct {
	ID            int32  `json:"id"`
	ClubID        *int32 `json:"club_id,omitempty"` // nil for public events
	HostID        int32  `json:"host_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Location      string `json:"location"`
	StartsOn      string `json:"starts_on"`
	AttendeeCount int32  `json:"attendee_count"`
	CreatedOn     string `json:"created_on"`
}

type EventAttendee struct {
	EventID   int32      `json:"event_id"`
	UserID    int32      `json:"user_id"`
	RSVP      RSVPStatus `json:"rsvp"`
	UpdatedOn string     `json:"updated_on"`
}
