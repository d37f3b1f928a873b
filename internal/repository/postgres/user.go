package postgres

import (
	"context"
	"time"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/repository"
)

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (username, display_name, email, password_hash, profile_image_url, location, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	u.CreatedOn = now.Format(time.RFC3339)
	u.UpdatedOn = u.CreatedOn
	return r.db.QueryRowContext(ctx, query, u.Username, u.DisplayName, u.Email, u.PasswordHash, u.ProfileImageURL, u.Location, now, now).Scan(&u.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	return r.getBy(ctx, `WHERE id = $1`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.getBy(ctx, `WHERE LOWER(username) = LOWER($1)`, username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getBy(ctx, `WHERE LOWER(email) = LOWER($1)`, email)
}

func (r *userRepository) getBy(ctx context.Context, where string, arg any) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, username, display_name, email, password_hash, COALESCE(profile_image_url, ''), COALESCE(location, ''), created_on, updated_on FROM users ` + where
	var createdOn, updatedOn time.Time
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.DisplayName, &u.Email, &u.PasswordHash, &u.ProfileImageURL, &u.Location, &createdOn, &updatedOn)
	if err != nil {
		return nil, err
	}
	u.CreatedOn = createdOn.Format(time.RFC3339)
	u.UpdatedOn = updatedOn.Format(time.RFC3339)
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET display_name=$1, email=$2, profile_image_url=$3, location=$4, updated_on=$5 WHERE id=$6`
	now := time.Now()
	u.UpdatedOn = now.Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, query, u.DisplayName, u.Email, u.ProfileImageURL, u.Location, now, u.ID)
	return err
}

func (r *userRepository) GetProfileStats(ctx context.Context, userID int32) (*domain.ProfileStats, error) {
	stats := &domain.ProfileStats{UserID: userID}
	query := `SELECT car_count, club_count, event_count, likes_received FROM profile_stats($1)`
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&stats.CarCount, &stats.ClubCount, &stats.EventCount, &stats.LikesReceived)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *userRepository) AddDeviceToken(ctx context.Context, t *domain.DeviceToken) error {
	query := `INSERT INTO device_tokens (user_id, token, platform, created_on) VALUES ($1, $2, $3, $4)
	          ON CONFLICT (user_id, token) DO UPDATE SET platform = EXCLUDED.platform`
	now := time.Now()
	t.CreatedOn = now.Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, query, t.UserID, t.Token, t.Platform, now)
	return err
}

func (r *userRepository) ListDeviceTokens(ctx context.Context, userID int32) ([]domain.DeviceToken, error) {
	query := `SELECT user_id, token, platform, created_on FROM device_tokens WHERE user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []domain.DeviceToken
	for rows.Next() {
		var t domain.DeviceToken
		var createdOn time.Time
		if err := rows.Scan(&t.UserID, &t.Token, &t.Platform, &createdOn); err != nil {
			return nil, err
		}
		t.CreatedOn = createdOn.Format(time.RFC3339)
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}

func (r *userRepository) DeleteDeviceToken(ctx context.Context, userID int32, token string) error {
	query := `DELETE FROM device_tokens WHERE user_id = $1 AND token = $2`
	_, err := r.db.ExecContext(ctx, query, userID, token)
	return err
}
