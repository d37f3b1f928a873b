package postgres

import (
	"context"
	"time"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/repository"
)

type eventRepository struct {
	db DBTX
}

func NewEventRepository(db DBTX) repository.EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `INSERT INTO events (club_id, host_id, title, description, location, starts_on, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now()
	e.CreatedOn = now.Format(time.RFC3339)
	startsOn, err := time.Parse(time.RFC3339, e.StartsOn)
	if err != nil {
		return err
	}
	return r.db.QueryRowContext(ctx, query, e.ClubID, e.HostID, e.Title, e.Description, e.Location, startsOn, now).Scan(&e.ID)
}

const eventColumns = `e.id, e.club_id, e.host_id, e.title, COALESCE(e.description, ''), COALESCE(e.location, ''), e.starts_on, e.created_on,
	                 (SELECT COUNT(*) FROM event_attendees a WHERE a.event_id = e.id AND a.rsvp = 'going')`

func (r *eventRepository) GetByID(ctx context.Context, id int32) (*domain.Event, error) {
	e := &domain.Event{}
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1`
	var startsOn, createdOn time.Time
	err := r.db.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.ClubID, &e.HostID, &e.Title, &e.Description, &e.Location, &startsOn, &createdOn, &e.AttendeeCount)
	if err != nil {
		return nil, err
	}
	e.StartsOn = startsOn.Format(time.RFC3339)
	e.CreatedOn = createdOn.Format(time.RFC3339)
	return e, nil
}

func (r *eventRepository) List(ctx context.Context, clubID *int32, upcomingOnly bool) ([]domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE ($1::int IS NULL OR e.club_id = $1)`
	if upcomingOnly {
		query += ` AND e.starts_on >= NOW()`
	}
	query += ` ORDER BY e.starts_on`

	rows, err := r.db.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var e domain.Event
		var startsOn, createdOn time.Time
		if err := rows.Scan(&e.ID, &e.ClubID, &e.HostID, &e.Title, &e.Description, &e.Location, &startsOn, &createdOn, &e.AttendeeCount); err != nil {
			return nil, err
		}
		e.StartsOn = startsOn.Format(time.RFC3339)
		e.CreatedOn = createdOn.Format(time.RFC3339)
		events = append(events, e)
	}
	return events, rows.Err()
}

// SetRSVP upserts the caller's RSVP for an event
func (r *eventRepository) SetRSVP(ctx context.Context, a *domain.EventAttendee) error {
	query := `INSERT INTO event_attendees (event_id, user_id, rsvp, updated_on) VALUES ($1, $2, $3, $4)
	          ON CONFLICT (event_id, user_id) DO UPDATE SET rsvp = EXCLUDED.rsvp, updated_on = EXCLUDED.updated_on`
	now := time.Now()
	a.UpdatedOn = now.Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, query, a.EventID, a.UserID, a.RSVP, now)
	return err
}

func (r *eventRepository) ListAttendees(ctx context.Context, eventID int32) ([]domain.EventAttendee, error) {
	query := `SELECT event_id, user_id, rsvp, updated_on FROM event_attendees WHERE event_id = $1`
	rows, err := r.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attendees []domain.EventAttendee
	for rows.Next() {
		var a domain.EventAttendee
		var updatedOn time.Time
		if err := rows.Scan(&a.EventID, &a.UserID, &a.RSVP, &updatedOn); err != nil {
			return nil, err
		}
		a.UpdatedOn = updatedOn.Format(time.RFC3339)
		attendees = append(attendees, a)
	}
	return attendees, rows.Err()
}
