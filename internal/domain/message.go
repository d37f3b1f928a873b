package domain

type MessageType string

const (
	MessageTypeDirect       MessageType = "direct"
	MessageTypeClubMessage  MessageType = "club_message"
	MessageTypeInvitation   MessageType = "club_invitation"
	MessageTypeJoinRequest  MessageType = "club_join_request"
	MessageTypeNotification MessageType = "club_notification"
	MessageTypeAnnouncement MessageType = "club_announcement"
)

type MessageStatus string

const (
	// MessageStatusPending marks an unresolved workflow token (invitation or
	// join request). Ordinary messages are created RESOLVED.
	MessageStatusPending  MessageStatus = "PENDING"
	MessageStatusResolved MessageStatus = "RESOLVED"
)

// Message is both an inbox item and, for club_invitation and
// club_join_request rows, a workflow token. A token's pending state lives in
// the status column; resolution flips it to RESOLVED and stamps ResolvedOn.
type Message struct {
	ID          int32         `json:"id"`
	MessageType MessageType   `json:"message_type"`
	SenderID    int32         `json:"sender_id"`
	RecipientID int32         `json:"recipient_id"`
	ClubID      *int32        `json:"club_id,omitempty"`
	Subject     string        `json:"subject"`
	Body        string        `json:"body"`
	Status      MessageStatus `json:"status"`
	IsRead      bool          `json:"is_read"`
	CreatedOn   string        `json:"created_on"`
	ResolvedOn  *string       `json:"resolved_on,omitempty"`

	// Display fields joined from users, populated on inbox reads
	SenderUsername string `json:"sender_username,omitempty"`
	SenderImageURL string `json:"sender_image_url,omitempty"`
	ClubName       string `json:"club_name,omitempty"`
}

// IsWorkflowToken reports whether this message type encodes a pending
// membership workflow state.
func (t MessageType) IsWorkflowToken() bool {
	return t == MessageTypeInvitation || t == MessageTypeJoinRequest
}
