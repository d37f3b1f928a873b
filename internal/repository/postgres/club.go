package postgres

import (
	"context"
	"fmt"
	"time"

	"carscene-backend/internal/domain"
	"carscene-backend/internal/logger"
	"carscene-backend/internal/repository"
)

type clubRepository struct {
	db DBTX
}

func NewClubRepository(db DBTX) repository.ClubRepository {
	return &clubRepository{db: db}
}

func (r *clubRepository) Create(ctx context.Context, c *domain.Club) error {
	query := `INSERT INTO clubs (name, description, banner_image_url, location, club_type, leader_id, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now()
	c.CreatedOn = now.Format(time.RFC3339)
	return r.db.QueryRowContext(ctx, query, c.Name, c.Description, c.BannerImageURL, c.Location, c.ClubType, c.LeaderID, now).Scan(&c.ID)
}

func (r *clubRepository) GetByID(ctx context.Context, id int32) (*domain.Club, error) {
	c := &domain.Club{}
	query := `SELECT c.id, c.name, COALESCE(c.description, ''), COALESCE(c.banner_image_url, ''), COALESCE(c.location, ''), c.club_type, c.leader_id, c.created_on,
	                 (SELECT COUNT(*) FROM club_members cm WHERE cm.club_id = c.id)
	          FROM clubs c WHERE c.id = $1`
	var createdOn time.Time
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Description, &c.BannerImageURL, &c.Location, &c.ClubType, &c.LeaderID, &createdOn, &c.MemberCount)
	if err != nil {
		return nil, err
	}
	c.CreatedOn = createdOn.Format(time.RFC3339)
	return c, nil
}

func (r *clubRepository) List(ctx context.Context) ([]domain.Club, error) {
	query := `SELECT c.id, c.name, COALESCE(c.description, ''), COALESCE(c.banner_image_url, ''), COALESCE(c.location, ''), c.club_type, c.leader_id, c.created_on,
	                 (SELECT COUNT(*) FROM club_members cm WHERE cm.club_id = c.id)
	          FROM clubs c ORDER BY c.name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clubs []domain.Club
	for rows.Next() {
		var c domain.Club
		var createdOn time.Time
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.BannerImageURL, &c.Location, &c.ClubType, &c.LeaderID, &createdOn, &c.MemberCount); err != nil {
			return nil, err
		}
		c.CreatedOn = createdOn.Format(time.RFC3339)
		clubs = append(clubs, c)
	}
	return clubs, rows.Err()
}

func (r *clubRepository) Update(ctx context.Context, c *domain.Club) error {
	query := `UPDATE clubs SET name=$1, description=$2, banner_image_url=$3, location=$4, club_type=$5 WHERE id=$6`
	_, err := r.db.ExecContext(ctx, query, c.Name, c.Description, c.BannerImageURL, c.Location, c.ClubType, c.ID)
	return err
}

func (r *clubRepository) UpdateLeader(ctx context.Context, clubID, newLeaderID int32) error {
	query := `UPDATE clubs SET leader_id = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, newLeaderID, clubID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("club not found")
	}
	return nil
}

func (r *clubRepository) AddMember(ctx context.Context, m *domain.ClubMember) error {
	logger.DatabaseCall("INSERT", "club_members", "clubID", m.ClubID, "userID", m.UserID, "role", m.Role)
	query := `INSERT INTO club_members (club_id, user_id, role, joined_on) VALUES ($1, $2, $3, $4)`
	now := time.Now()
	m.JoinedOn = now.Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, query, m.ClubID, m.UserID, m.Role, now)
	logger.DatabaseResult("INSERT", 1, err, "clubID", m.ClubID, "userID", m.UserID)
	return err
}

func (r *clubRepository) GetMember(ctx context.Context, clubID, userID int32) (*domain.ClubMember, error) {
	m := &domain.ClubMember{}
	query := `SELECT club_id, user_id, role, joined_on FROM club_members WHERE club_id = $1 AND user_id = $2`
	var joinedOn time.Time
	err := r.db.QueryRowContext(ctx, query, clubID, userID).Scan(&m.ClubID, &m.UserID, &m.Role, &joinedOn)
	if err != nil {
		return nil, err
	}
	m.JoinedOn = joinedOn.Format(time.RFC3339)
	return m, nil
}

func (r *clubRepository) ListMembers(ctx context.Context, clubID int32) ([]domain.User, []domain.ClubMember, error) {
	query := `SELECT u.id, u.username, u.display_name, u.email, u.password_hash, COALESCE(u.profile_image_url, ''), COALESCE(u.location, ''), u.created_on, u.updated_on,
	                 cm.club_id, cm.user_id, cm.role, cm.joined_on
	          FROM users u
	          JOIN club_members cm ON u.id = cm.user_id
	          WHERE cm.club_id = $1
	          ORDER BY cm.joined_on`
	rows, err := r.db.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var users []domain.User
	var members []domain.ClubMember
	for rows.Next() {
		var u domain.User
		var m domain.ClubMember
		var createdOn, updatedOn, joinedOn time.Time
		if err := rows.Scan(
			&u.ID, &u.Username, &u.DisplayName, &u.Email, &u.PasswordHash, &u.ProfileImageURL, &u.Location, &createdOn, &updatedOn,
			&m.ClubID, &m.UserID, &m.Role, &joinedOn,
		); err != nil {
			return nil, nil, err
		}
		u.CreatedOn = createdOn.Format(time.RFC3339)
		u.UpdatedOn = updatedOn.Format(time.RFC3339)
		m.JoinedOn = joinedOn.Format(time.RFC3339)
		users = append(users, u)
		members = append(members, m)
	}
	return users, members, rows.Err()
}

func (r *clubRepository) MemberIDs(ctx context.Context, clubID int32) ([]int32, error) {
	query := `SELECT user_id FROM club_members WHERE club_id = $1`
	rows, err := r.db.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *clubRepository) UpdateMemberRole(ctx context.Context, clubID, userID int32, role domain.ClubRole) error {
	query := `UPDATE club_members SET role = $1 WHERE club_id = $2 AND user_id = $3`
	result, err := r.db.ExecContext(ctx, query, role, clubID, userID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("member not found")
	}
	return nil
}

func (r *clubRepository) RemoveMember(ctx context.Context, clubID, userID int32) error {
	logger.DatabaseCall("DELETE", "club_members", "clubID", clubID, "userID", userID)
	query := `DELETE FROM club_members WHERE club_id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, clubID, userID)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err, "clubID", clubID)
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	logger.DatabaseResult("DELETE", rows, nil, "clubID", clubID, "userID", userID)
	if rows == 0 {
		return fmt.Errorf("membership not found")
	}
	return nil
}

func (r *clubRepository) ListByUser(ctx context.Context, userID int32) ([]domain.Club, []domain.ClubMember, error) {
	query := `SELECT c.id, c.name, COALESCE(c.description, ''), COALESCE(c.banner_image_url, ''), COALESCE(c.location, ''), c.club_type, c.leader_id, c.created_on,
	                 (SELECT COUNT(*) FROM club_members x WHERE x.club_id = c.id),
	                 cm.club_id, cm.user_id, cm.role, cm.joined_on
	          FROM clubs c
	          JOIN club_members cm ON c.id = cm.club_id
	          WHERE cm.user_id = $1`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var clubs []domain.Club
	var members []domain.ClubMember
	for rows.Next() {
		var c domain.Club
		var m domain.ClubMember
		var createdOn, joinedOn time.Time
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Description, &c.BannerImageURL, &c.Location, &c.ClubType, &c.LeaderID, &createdOn, &c.MemberCount,
			&m.ClubID, &m.UserID, &m.Role, &joinedOn,
		); err != nil {
			return nil, nil, err
		}
		c.CreatedOn = createdOn.Format(time.RFC3339)
		m.JoinedOn = joinedOn.Format(time.RFC3339)
		clubs = append(clubs, c)
		members = append(members, m)
	}
	return clubs, members, rows.Err()
}
