package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"carscene-backend/internal/cache"
	"carscene-backend/internal/domain"
	"carscene-backend/internal/logger"
	"carscene-backend/internal/repository"
)

const uniqueViolationCode = "23505"

type clubService struct {
	tx       repository.Transactor
	clubs    repository.ClubRepository
	users    repository.UserRepository
	messages repository.MessageRepository
	cache    cache.Invalidator
	notifier *Notifier
	email    EmailService
}

func NewClubService(
	tx repository.Transactor,
	clubs repository.ClubRepository,
	users repository.UserRepository,
	messages repository.MessageRepository,
	invalidator cache.Invalidator,
	n *Notifier,
	email EmailService,
) ClubService {
	return &clubService{
		tx:       tx,
		clubs:    clubs,
		users:    users,
		messages: messages,
		cache:    invalidator,
		notifier: n,
		email:    email,
	}
}

func (s *clubService) CreateClub(ctx context.Context, leaderID int32, club *domain.Club) error {
	logger.EnterMethod("ClubService.CreateClub", "leaderId", leaderID, "name", club.Name)

	if club.Name == "" {
		return fmt.Errorf("%w: club name is required", domain.ErrValidation)
	}
	switch club.ClubType {
	case domain.ClubTypeOpen, domain.ClubTypeInvite, domain.ClubTypeClosed:
	case "":
		club.ClubType = domain.ClubTypeOpen
	default:
		return fmt.Errorf("%w: unknown club type %q", domain.ErrValidation, club.ClubType)
	}
	club.LeaderID = leaderID

	err := s.tx.ExecTx(ctx, func(a repository.Atomic) error {
		if err := a.Clubs().Create(ctx, club); err != nil {
			return err
		}
		return a.Clubs().AddMember(ctx, &domain.ClubMember{
			ClubID: club.ID,
			UserID: leaderID,
			Role:   domain.ClubRoleLeader,
		})
	})
	if err != nil {
		logger.ExitMethodWithError("ClubService.CreateClub", err)
		return err
	}

	s.cache.InvalidateTags(ctx, cache.ClubListTag(), cache.ProfileTag(leaderID))
	logger.ExitMethod("ClubService.CreateClub", "clubId", club.ID)
	return nil
}

func (s *clubService) GetClub(ctx context.Context, clubID int32) (*domain.Club, []domain.User, []domain.ClubMember, error) {
	club, err := s.clubs.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, fmt.Errorf("%w: club not found", domain.ErrNotFound)
		}
		return nil, nil, nil, err
	}
	users, members, err := s.clubs.ListMembers(ctx, clubID)
	if err != nil {
		return nil, nil, nil, err
	}
	return club, users, members, nil
}

func (s *clubService) ListClubs(ctx context.Context) ([]domain.Club, error) {
	return s.clubs.List(ctx)
}

// SendInvitation creates a pending invitation token addressed to the target
// user. The membership and duplicate checks run in the same transaction as
// the insert; a concurrent duplicate still trips the partial unique index.
func (s *clubService) SendInvitation(ctx context.Context, callerID, clubID, targetUserID int32, body string) (*domain.Message, error) {
	logger.EnterMethod("ClubService.SendInvitation", "callerId", callerID, "clubId", clubID, "targetUserId", targetUserID)

	if clubID <= 0 || targetUserID <= 0 {
		return nil, fmt.Errorf("%w: club_id and user_id are required", domain.ErrValidation)
	}
	if targetUserID == callerID {
		return nil, fmt.Errorf("%w: cannot invite yourself", domain.ErrValidation)
	}

	club, err := s.clubs.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: club not found", domain.ErrNotFound)
		}
		return nil, err
	}

	caller, err := s.clubs.GetMember(ctx, clubID, callerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: only club leaders and admins can invite", domain.ErrForbidden)
		}
		return nil, err
	}
	if !caller.Role.CanManage() {
		return nil, fmt.Errorf("%w: only club leaders and admins can invite", domain.ErrForbidden)
	}

	target, err := s.users.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
		}
		return nil, err
	}

	msg := &domain.Message{
		MessageType: domain.MessageTypeInvitation,
		SenderID:    callerID,
		RecipientID: targetUserID,
		ClubID:      &clubID,
		Subject:     fmt.Sprintf("Invitation to join %s", club.Name),
		Body:        body,
		Status:      domain.MessageStatusPending,
	}

	err = s.tx.ExecTx(ctx, func(a repository.Atomic) error {
		if _, err := a.Clubs().GetMember(ctx, clubID, targetUserID); err == nil {
			return fmt.Errorf("%w: user is already a member", domain.ErrConflict)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		if _, err := a.Messages().FindPendingToken(ctx, clubID, callerID, targetUserID, domain.MessageTypeInvitation); err == nil {
			return fmt.Errorf("%w: an invitation is already pending", domain.ErrConflict)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		return a.Messages().Create(ctx, msg)
	})
	if err != nil {
		if isUniqueViolation(err) {
			err = fmt.Errorf("%w: an invitation is already pending", domain.ErrConflict)
		}
		logger.ExitMethodWithError("ClubService.SendInvitation", err)
		return nil, err
	}

	inviter, invErr := s.users.GetByID(ctx, callerID)
	inviterName := "A club admin"
	if invErr == nil {
		inviterName = inviter.DisplayName
	}
	s.notifier.MessageDelivered(ctx, msg, "Club invitation", fmt.Sprintf("%s invited you to join %s", inviterName, club.Name))
	if err := s.email.SendInvitationEmail(ctx, target.Email, target.DisplayName, club.Name, inviterName); err != nil {
		logger.Warn("Invitation email failed", "userId", targetUserID, "error", err)
	}

	logger.ExitMethod("ClubService.SendInvitation", "messageId", msg.ID)
	return msg, nil
}

// SendJoinRequest creates a pending join-request token addressed to the club
// leader. Open clubs reject the request because no approval is needed, and
// closed clubs never accept requests.
func (s *clubService) SendJoinRequest(ctx context.Context, callerID, clubID int32, body string) (*domain.Message, error) {
	logger.EnterMethod("ClubService.SendJoinRequest", "callerId", callerID, "clubId", clubID)

	if clubID <= 0 {
		return nil, fmt.Errorf("%w: club_id is required", domain.ErrValidation)
	}

	club, err := s.clubs.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: club not found", domain.ErrNotFound)
		}
		return nil, err
	}
	switch club.ClubType {
	case domain.ClubTypeClosed:
		return nil, fmt.Errorf("%w: this club does not accept join requests", domain.ErrForbidden)
	case domain.ClubTypeOpen:
		return nil, fmt.Errorf("%w: this club is open, join it directly", domain.ErrValidation)
	}

	sender, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		return nil, err
	}

	msg := &domain.Message{
		MessageType: domain.MessageTypeJoinRequest,
		SenderID:    callerID,
		RecipientID: club.LeaderID,
		ClubID:      &clubID,
		Subject:     fmt.Sprintf("%s wants to join %s", sender.DisplayName, club.Name),
		Body:        body,
		Status:      domain.MessageStatusPending,
	}

	err = s.tx.ExecTx(ctx, func(a repository.Atomic) error {
		if _, err := a.Clubs().GetMember(ctx, clubID, callerID); err == nil {
			return fmt.Errorf("%w: you are already a member", domain.ErrConflict)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		if _, err := a.Messages().FindPendingToken(ctx, clubID, callerID, club.LeaderID, domain.MessageTypeJoinRequest); err == nil {
			return fmt.Errorf("%w: a join request is already pending", domain.ErrConflict)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		return a.Messages().Create(ctx, msg)
	})
	if err != nil {
		if isUniqueViolation(err) {
			err = fmt.Errorf("%w: a join request is already pending", domain.ErrConflict)
		}
		logger.ExitMethodWithError("ClubService.SendJoinRequest", err)
		return nil, err
	}

	s.notifier.MessageDelivered(ctx, msg, "Join request", fmt.Sprintf("%s wants to join %s", sender.DisplayName, club.Name))

	logger.ExitMethod("ClubService.SendJoinRequest", "messageId", msg.ID)
	return msg, nil
}

// JoinOpenClub is the direct path for open clubs, no workflow token involved.
func (s *clubService) JoinOpenClub(ctx context.Context, callerID, clubID int32) error {
	logger.EnterMethod("ClubService.JoinOpenClub", "callerId", callerID, "clubId", clubID)

	club, err := s.clubs.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: club not found", domain.ErrNotFound)
		}
		return err
	}
	if club.ClubType != domain.ClubTypeOpen {
		return fmt.Errorf("%w: this club requires an invitation or join request", domain.ErrForbidden)
	}

	err = s.tx.ExecTx(ctx, func(a repository.Atomic) error {
		if _, err := a.Clubs().GetMember(ctx, clubID, callerID); err == nil {
			return fmt.Errorf("%w: you are already a member", domain.ErrConflict)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return a.Clubs().AddMember(ctx, &domain.ClubMember{
			ClubID: clubID,
			UserID: callerID,
			Role:   domain.ClubRoleMember,
		})
	})
	if err != nil {
		if isUniqueViolation(err) {
			err = fmt.Errorf("%w: you are already a member", domain.ErrConflict)
		}
		logger.ExitMethodWithError("ClubService.JoinOpenClub", err)
		return err
	}

	s.cache.InvalidateTags(ctx, cache.ClubTag(clubID), cache.ProfileTag(callerID), cache.ClubListTag())
	logger.ExitMethod("ClubService.JoinOpenClub")
	return nil
}

// HandleInvitation resolves an invitation token. Only the invited user may
// respond.
func (s *clubService) HandleInvitation(ctx context.Context, callerID, messageID int32, accept bool) error {
	return s.resolveWorkflowToken(ctx, callerID, messageID, accept, domain.MessageTypeInvitation)
}

// HandleJoinRequest resolves a join-request token. Only the current club
// leader may respond.
func (s *clubService) HandleJoinRequest(ctx context.Context, callerID, messageID int32, approve bool) error {
	return s.resolveWorkflowToken(ctx, callerID, messageID, approve, domain.MessageTypeJoinRequest)
}

// resolveWorkflowToken is the single accept/reject path for both token kinds.
// The token load, authorization, membership re-check, member insert, token
// resolution and outcome notification all commit in one transaction.
func (s *clubService) resolveWorkflowToken(ctx context.Context, callerID, messageID int32, accept bool, kind domain.MessageType) error {
	logger.EnterMethod("ClubService.resolveWorkflowToken", "callerId", callerID, "messageId", messageID, "accept", accept, "kind", kind)

	if messageID <= 0 {
		return fmt.Errorf("%w: message_id is required", domain.ErrValidation)
	}

	var outcome *domain.Message
	var joiningUserID int32
	var clubForNotify *domain.Club

	err := s.tx.ExecTx(ctx, func(a repository.Atomic) error {
		token, err := a.Messages().GetPendingToken(ctx, messageID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: no pending request found for this message", domain.ErrNotFound)
			}
			return err
		}
		if token.MessageType != kind || token.ClubID == nil {
			return fmt.Errorf("%w: no pending request found for this message", domain.ErrNotFound)
		}

		club, err := a.Clubs().GetByID(ctx, *token.ClubID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: club not found", domain.ErrNotFound)
			}
			return err
		}

		// The token's addressee can be stale: leadership may have changed
		// since a join request was created, so authorize against current
		// state, not against recipient_id alone.
		var notifyUserID int32
		switch kind {
		case domain.MessageTypeInvitation:
			if token.RecipientID != callerID {
				return fmt.Errorf("%w: this invitation is not addressed to you", domain.ErrForbidden)
			}
			joiningUserID = token.RecipientID
			notifyUserID = token.SenderID
		case domain.MessageTypeJoinRequest:
			if club.LeaderID != callerID {
				return fmt.Errorf("%w: only the club leader can respond to join requests", domain.ErrForbidden)
			}
			joiningUserID = token.SenderID
			notifyUserID = token.SenderID
		default:
			return fmt.Errorf("%w: no pending request found for this message", domain.ErrNotFound)
		}

		if accept {
			_, err := a.Clubs().GetMember(ctx, club.ID, joiningUserID)
			switch {
			case err == nil:
				// Already a member via another path; resolving the token is
				// all that is left to do.
			case errors.Is(err, sql.ErrNoRows):
				if err := a.Clubs().AddMember(ctx, &domain.ClubMember{
					ClubID: club.ID,
					UserID: joiningUserID,
					Role:   domain.ClubRoleMember,
				}); err != nil {
					return err
				}
			default:
				return err
			}
		}

		if err := a.Messages().Resolve(ctx, token.ID); err != nil {
			return err
		}

		outcome = buildOutcomeMessage(club, kind, accept, callerID, notifyUserID)
		if err := a.Messages().Create(ctx, outcome); err != nil {
			return err
		}
		clubForNotify = club
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("ClubService.resolveWorkflowToken", err)
		return err
	}

	tags := []string{cache.InboxTag(callerID), cache.InboxTag(outcome.RecipientID)}
	if accept {
		tags = append(tags, cache.ClubTag(clubForNotify.ID), cache.ProfileTag(joiningUserID), cache.ClubListTag())
	}
	s.cache.InvalidateTags(ctx, tags...)
	s.notifier.MessageDelivered(ctx, outcome, outcome.Subject, outcome.Body)

	if kind == domain.MessageTypeJoinRequest {
		if requester, uerr := s.users.GetByID(ctx, outcome.RecipientID); uerr == nil {
			if merr := s.email.SendMembershipResultEmail(ctx, requester.Email, requester.DisplayName, clubForNotify.Name, accept); merr != nil {
				logger.Warn("Membership result email failed", "userId", requester.ID, "error", merr)
			}
		}
	}

	logger.ExitMethod("ClubService.resolveWorkflowToken", "clubId", clubForNotify.ID, "accepted", accept)
	return nil
}

// buildOutcomeMessage is the RESOLVED notification row telling the other
// party how the workflow ended.
func buildOutcomeMessage(club *domain.Club, kind domain.MessageType, accepted bool, senderID, recipientID int32) *domain.Message {
	var subject, body string
	switch {
	case kind == domain.MessageTypeInvitation && accepted:
		subject = fmt.Sprintf("Invitation to %s accepted", club.Name)
		body = fmt.Sprintf("Your invitation to join %s was accepted.", club.Name)
	case kind == domain.MessageTypeInvitation:
		subject = fmt.Sprintf("Invitation to %s declined", club.Name)
		body = fmt.Sprintf("Your invitation to join %s was declined.", club.Name)
	case accepted:
		subject = fmt.Sprintf("Welcome to %s", club.Name)
		body = fmt.Sprintf("Your request to join %s was approved.", club.Name)
	default:
		subject = fmt.Sprintf("Request to join %s declined", club.Name)
		body = fmt.Sprintf("Your request to join %s was not approved.", club.Name)
	}
	clubID := club.ID
	return &domain.Message{
		MessageType: domain.MessageTypeNotification,
		SenderID:    senderID,
		RecipientID: recipientID,
		ClubID:      &clubID,
		Subject:     subject,
		Body:        body,
		Status:      domain.MessageStatusResolved,
	}
}

// LeaveClub removes a membership. Users may only remove themselves, and a
// leader must transfer leadership first.
func (s *clubService) LeaveClub(ctx context.Context, callerID, clubID, userID int32) error {
	logger.EnterMethod("ClubService.LeaveClub", "callerId", callerID, "clubId", clubID, "userId", userID)

	if clubID <= 0 || userID <= 0 {
		return fmt.Errorf("%w: club_id and user_id are required", domain.ErrValidation)
	}
	if userID != callerID {
		return fmt.Errorf("%w: you can only remove yourself", domain.ErrForbidden)
	}

	err := s.tx.ExecTx(ctx, func(a repository.Atomic) error {
		club, err := a.Clubs().GetByID(ctx, clubID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: club not found", domain.ErrValidation)
			}
			return err
		}
		if club.LeaderID == userID {
			return fmt.Errorf("%w: transfer leadership before leaving", domain.ErrForbidden)
		}
		if _, err := a.Clubs().GetMember(ctx, clubID, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: not a member of this club", domain.ErrValidation)
			}
			return err
		}
		return a.Clubs().RemoveMember(ctx, clubID, userID)
	})
	if err != nil {
		logger.ExitMethodWithError("ClubService.LeaveClub", err)
		return err
	}

	s.cache.InvalidateTags(ctx, cache.ClubTag(clubID), cache.ProfileTag(userID), cache.ClubListTag())
	logger.ExitMethod("ClubService.LeaveClub")
	return nil
}

// TransferLeadership hands the club to another current member. The old leader
// stays on as admin.
func (s *clubService) TransferLeadership(ctx context.Context, callerID, clubID, newLeaderID int32) error {
	logger.EnterMethod("ClubService.TransferLeadership", "callerId", callerID, "clubId", clubID, "newLeaderId", newLeaderID)

	if clubID <= 0 || newLeaderID <= 0 {
		return fmt.Errorf("%w: club_id and new_leader_id are required", domain.ErrValidation)
	}
	if newLeaderID == callerID {
		return fmt.Errorf("%w: you are already the leader", domain.ErrValidation)
	}

	var club *domain.Club
	err := s.tx.ExecTx(ctx, func(a repository.Atomic) error {
		var err error
		club, err = a.Clubs().GetByID(ctx, clubID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: club not found", domain.ErrNotFound)
			}
			return err
		}
		if club.LeaderID != callerID {
			return fmt.Errorf("%w: only the club leader can transfer leadership", domain.ErrForbidden)
		}
		if _, err := a.Clubs().GetMember(ctx, clubID, newLeaderID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: new leader must be a current member", domain.ErrValidation)
			}
			return err
		}

		if err := a.Clubs().UpdateLeader(ctx, clubID, newLeaderID); err != nil {
			return err
		}
		if err := a.Clubs().UpdateMemberRole(ctx, clubID, newLeaderID, domain.ClubRoleLeader); err != nil {
			return err
		}
		return a.Clubs().UpdateMemberRole(ctx, clubID, callerID, domain.ClubRoleAdmin)
	})
	if err != nil {
		logger.ExitMethodWithError("ClubService.TransferLeadership", err)
		return err
	}

	clubIDCopy := clubID
	note := &domain.Message{
		MessageType: domain.MessageTypeNotification,
		SenderID:    callerID,
		RecipientID: newLeaderID,
		ClubID:      &clubIDCopy,
		Subject:     fmt.Sprintf("You are now the leader of %s", club.Name),
		Body:        fmt.Sprintf("Leadership of %s has been transferred to you.", club.Name),
		Status:      domain.MessageStatusResolved,
	}
	if err := s.messages.Create(ctx, note); err != nil {
		logger.Warn("Leadership notification failed", "clubId", clubID, "error", err)
	} else {
		s.notifier.MessageDelivered(ctx, note, note.Subject, note.Body)
	}

	s.cache.InvalidateTags(ctx, cache.ClubTag(clubID), cache.ClubListTag())
	logger.ExitMethod("ClubService.TransferLeadership")
	return nil
}

// SendClubMail writes one announcement row per member so each member's inbox,
// read state and badge behave like any other message.
func (s *clubService) SendClubMail(ctx context.Context, callerID, clubID int32, subject, body string) (int, error) {
	logger.EnterMethod("ClubService.SendClubMail", "callerId", callerID, "clubId", clubID)

	if clubID <= 0 || subject == "" || body == "" {
		return 0, fmt.Errorf("%w: club_id, subject and message are required", domain.ErrValidation)
	}

	club, err := s.clubs.GetByID(ctx, clubID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: club not found", domain.ErrValidation)
		}
		return 0, err
	}

	caller, err := s.clubs.GetMember(ctx, clubID, callerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: only club leaders and admins can send club mail", domain.ErrForbidden)
		}
		return 0, err
	}
	if !caller.Role.CanManage() {
		return 0, fmt.Errorf("%w: only club leaders and admins can send club mail", domain.ErrForbidden)
	}

	memberIDs, err := s.clubs.MemberIDs(ctx, clubID)
	if err != nil {
		return 0, err
	}

	// All copies, the sender's included, commit together.
	sent := make([]*domain.Message, 0, len(memberIDs))
	err = s.tx.ExecTx(ctx, func(a repository.Atomic) error {
		for _, memberID := range memberIDs {
			msg := &domain.Message{
				MessageType: domain.MessageTypeAnnouncement,
				SenderID:    callerID,
				RecipientID: memberID,
				ClubID:      &clubID,
				Subject:     subject,
				Body:        body,
				Status:      domain.MessageStatusResolved,
			}
			if err := a.Messages().Create(ctx, msg); err != nil {
				return err
			}
			sent = append(sent, msg)
		}
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("ClubService.SendClubMail", err)
		return 0, err
	}

	pushBody := fmt.Sprintf("New announcement from %s", club.Name)
	for _, msg := range sent {
		s.notifier.MessageDelivered(ctx, msg, subject, pushBody)
	}

	logger.ExitMethod("ClubService.SendClubMail", "recipients", len(sent))
	return len(sent), nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation, the backstop for races the in-transaction checks cannot see.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}
