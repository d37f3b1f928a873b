package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/logger"
	"carscene-backend/internal/repository"
)

type messageRepository struct {
	db DBTX
}

func NewMessageRepository(db DBTX) repository.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, m *domain.Message) error {
	logger.DatabaseCall("INSERT", "messages", "type", m.MessageType, "senderID", m.SenderID, "recipientID", m.RecipientID)

	if m.Status == "" {
		// Only workflow tokens carry a pending state
		if m.MessageType.IsWorkflowToken() {
			m.Status = domain.MessageStatusPending
		} else {
			m.Status = domain.MessageStatusResolved
		}
	}

	query := `INSERT INTO messages (message_type, sender_id, recipient_id, club_id, subject, body, status, is_read, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now()
	m.CreatedOn = now.Format(time.RFC3339)
	err := r.db.QueryRowContext(ctx, query, m.MessageType, m.SenderID, m.RecipientID, m.ClubID, m.Subject, m.Body, m.Status, m.IsRead, now).Scan(&m.ID)
	logger.DatabaseResult("INSERT", 1, err, "messageID", m.ID)
	return err
}

const messageColumns = `m.id, m.message_type, m.sender_id, m.recipient_id, m.club_id, COALESCE(m.subject, ''), m.body, m.status, m.is_read, m.created_on, m.resolved_on`

func (r *messageRepository) scanMessage(row *sql.Row) (*domain.Message, error) {
	m := &domain.Message{}
	var createdOn time.Time
	var resolvedOn sql.NullTime
	err := row.Scan(&m.ID, &m.MessageType, &m.SenderID, &m.RecipientID, &m.ClubID, &m.Subject, &m.Body, &m.Status, &m.IsRead, &createdOn, &resolvedOn)
	if err != nil {
		return nil, err
	}
	m.CreatedOn = createdOn.Format(time.RFC3339)
	if resolvedOn.Valid {
		s := resolvedOn.Time.Format(time.RFC3339)
		m.ResolvedOn = &s
	}
	return m, nil
}

func (r *messageRepository) GetByID(ctx context.Context, id int32) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages m WHERE m.id = $1`
	return r.scanMessage(r.db.QueryRowContext(ctx, query, id))
}

func (r *messageRepository) GetPendingToken(ctx context.Context, id int32) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages m
	          WHERE m.id = $1 AND m.status = 'PENDING'
	            AND m.message_type IN ('club_invitation', 'club_join_request')`
	return r.scanMessage(r.db.QueryRowContext(ctx, query, id))
}

func (r *messageRepository) FindPendingToken(ctx context.Context, clubID, senderID, recipientID int32, msgType domain.MessageType) (*domain.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages m
	          WHERE m.club_id = $1 AND m.sender_id = $2 AND m.recipient_id = $3
	            AND m.message_type = $4 AND m.status = 'PENDING'`
	return r.scanMessage(r.db.QueryRowContext(ctx, query, clubID, senderID, recipientID, msgType))
}

func (r *messageRepository) Resolve(ctx context.Context, id int32) error {
	query := `UPDATE messages SET status = 'RESOLVED', resolved_on = $1 WHERE id = $2 AND status = 'PENDING'`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("workflow token not found or already resolved")
	}
	return nil
}

func (r *messageRepository) ListByRecipient(ctx context.Context, userID int32, limit, offset int32) ([]domain.Message, int32, error) {
	query := `SELECT ` + messageColumns + `,
	                 u.username, COALESCE(u.profile_image_url, ''), COALESCE(c.name, '')
	          FROM messages m
	          JOIN users u ON u.id = m.sender_id
	          LEFT JOIN clubs c ON c.id = m.club_id
	          WHERE m.recipient_id = $1
	          ORDER BY m.created_on DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		var createdOn time.Time
		var resolvedOn sql.NullTime
		if err := rows.Scan(
			&m.ID, &m.MessageType, &m.SenderID, &m.RecipientID, &m.ClubID, &m.Subject, &m.Body, &m.Status, &m.IsRead, &createdOn, &resolvedOn,
			&m.SenderUsername, &m.SenderImageURL, &m.ClubName,
		); err != nil {
			return nil, 0, err
		}
		m.CreatedOn = createdOn.Format(time.RFC3339)
		if resolvedOn.Valid {
			s := resolvedOn.Time.Format(time.RFC3339)
			m.ResolvedOn = &s
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var count int32
	countQuery := `SELECT count(*) FROM messages WHERE recipient_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&count); err != nil {
		return nil, 0, err
	}
	return msgs, count, nil
}

func (r *messageRepository) UnreadCount(ctx context.Context, userID int32) (int32, error) {
	var count int32
	query := `SELECT count(*) FROM messages WHERE recipient_id = $1 AND is_read = FALSE`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&count)
	return count, err
}

func (r *messageRepository) MarkAsRead(ctx context.Context, id, userID int32) error {
	query := `UPDATE messages SET is_read = TRUE WHERE id = $1 AND recipient_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Covers both a missing row and someone else's message
		return sql.ErrNoRows
	}
	return nil
}

func (r *messageRepository) PurgeResolvedTokens(ctx context.Context, before time.Time) (int64, error) {
	// Pending tokens are never purged; they stay until resolved.
	query := `DELETE FROM messages
	          WHERE status = 'RESOLVED' AND resolved_on < $1
	            AND message_type IN ('club_invitation', 'club_join_request')`
	result, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
