package domain

type ClubType string

const (
	// ClubTypeOpen allows direct joins, no request needed.
	ClubTypeOpen ClubType = "open"
	// ClubTypeInvite requires an invitation or an approved join request.
	ClubTypeInvite ClubType = "invite"
	// ClubTypeClosed accepts members by invitation only.
	ClubTypeClosed ClubType = "closed"
)

type ClubRole string

const (
	ClubRoleLeader ClubRole = "leader"
	ClubRoleAdmin  ClubRole = "admin"
	ClubRoleMember ClubRole = "member"
)

type Club struct {
	ID             int32    `json:"id"`
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	BannerImageURL string   `json:"banner_image_url"`
	Location       string   `json:"location"`
	ClubType       ClubType `json:"club_type"`
	LeaderID       int32    `json:"leader_id"`
	MemberCount    int32    `json:"member_count"`
	CreatedOn      string   `json:"created_on"`
}

type ClubMember struct {
	ClubID   int32    `json:"club_id"`
	UserID   int32    `json:"user_id"`
	Role     ClubRole `json:"role"`
	JoinedOn string   `json:"joined_on"`
}

// CanManage reports whether the role may invite members, approve join
// requests, and send club mail.
func (r ClubRole) CanManage() bool {
	return r == ClubRoleLeader || r == ClubRoleAdmin
}
