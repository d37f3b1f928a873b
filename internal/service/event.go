package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/logger"
	"carscene-backend/internal/repository"
)

type eventService struct {
	events repository.EventRepository
	clubs  repository.ClubRepository
}

func NewEventService(events repository.EventRepository, clubs repository.ClubRepository) EventService {
	return &eventService{events: events, clubs: clubs}
}

func (s *eventService) CreateEvent(ctx context.Context, hostID int32, event *domain.Event) error {
	logger.EnterMethod("EventService.CreateEvent", "hostId", hostID, "title", event.Title)

	if event.Title == "" || event.StartsOn == "" {
		return fmt.Errorf("%w: title and starts_on are required", domain.ErrValidation)
	}
	if _, err := time.Parse(time.RFC3339, event.StartsOn); err != nil {
		return fmt.Errorf("%w: starts_on must be RFC 3339", domain.ErrValidation)
	}
	event.HostID = hostID

	// Club events may only be created by members of that club.
	if event.ClubID != nil {
		if _, err := s.clubs.GetByID(ctx, *event.ClubID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: club not found", domain.ErrNotFound)
			}
			return err
		}
		if _, err := s.clubs.GetMember(ctx, *event.ClubID, hostID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: only club members can host club events", domain.ErrForbidden)
			}
			return err
		}
	}

	if err := s.events.Create(ctx, event); err != nil {
		logger.ExitMethodWithError("EventService.CreateEvent", err)
		return err
	}
	logger.ExitMethod("EventService.CreateEvent", "eventId", event.ID)
	return nil
}

func (s *eventService) GetEvent(ctx context.Context, eventID int32) (*domain.Event, []domain.EventAttendee, error) {
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, fmt.Errorf("%w: event not found", domain.ErrNotFound)
		}
		return nil, nil, err
	}
	attendees, err := s.events.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	return event, attendees, nil
}

func (s *eventService) ListEvents(ctx context.Context, clubID *int32, upcomingOnly bool) ([]domain.Event, error) {
	return s.events.List(ctx, clubID, upcomingOnly)
}

func (s *eventService) RSVP(ctx context.Context, userID, eventID int32, status domain.RSVPStatus) error {
	switch status {
	case domain.RSVPGoing, domain.RSVPInterested, domain.RSVPDeclined:
	default:
		return fmt.Errorf("%w: unknown rsvp status %q", domain.ErrValidation, status)
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: event not found", domain.ErrNotFound)
		}
		return err
	}

	// Club events are members-only.
	if event.ClubID != nil {
		if _, err := s.clubs.GetMember(ctx, *event.ClubID, userID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: only club members can attend this event", domain.ErrForbidden)
			}
			return err
		}
	}

	return s.events.SetRSVP(ctx, &domain.EventAttendee{
		EventID: eventID,
		UserID:  userID,
		RSVP:    status,
	})
}
