package postgres

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"carscene-backend/internal/domain"
)

func newClubRepoMock(t *testing.T) (*clubRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	return &clubRepository{db: db}, mock, func() { db.Close() }
}

func TestClubRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		repo, mock, done := newClubRepoMock(t)
		defer done()

		rows := sqlmock.NewRows([]string{
			"id", "name", "description", "banner_image_url", "location",
			"club_type", "leader_id", "created_on", "count",
		}).AddRow(10, "Skyline Owners", "R32-R34 crew", "", "Auckland",
			string(domain.ClubTypeInvite), 1, time.Now(), 12)

		mock.ExpectQuery(regexp.QuoteMeta(`FROM clubs c WHERE c.id = $1`)).
			WithArgs(int32(10)).
			WillReturnRows(rows)

		club, err := repo.GetByID(ctx, 10)
		assert.NoError(t, err)
		assert.Equal(t, "Skyline Owners", club.Name)
		assert.Equal(t, int32(12), club.MemberCount)
		assert.Equal(t, domain.ClubTypeInvite, club.ClubType)
	})

	t.Run("Missing", func(t *testing.T) {
		repo, mock, done := newClubRepoMock(t)
		defer done()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM clubs c WHERE c.id = $1`)).
			WithArgs(int32(99)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestClubRepository_AddMember(t *testing.T) {
	repo, mock, done := newClubRepoMock(t)
	defer done()

	member := &domain.ClubMember{ClubID: 10, UserID: 5, Role: domain.ClubRoleMember}
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO club_members (club_id, user_id, role, joined_on)`)).
		WithArgs(member.ClubID, member.UserID, member.Role, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.AddMember(context.Background(), member))
	assert.NotEmpty(t, member.JoinedOn)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClubRepository_GetMember(t *testing.T) {
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		repo, mock, done := newClubRepoMock(t)
		defer done()

		rows := sqlmock.NewRows([]string{"club_id", "user_id", "role", "joined_on"}).
			AddRow(10, 5, string(domain.ClubRoleAdmin), time.Now())
		mock.ExpectQuery(regexp.QuoteMeta(`FROM club_members WHERE club_id = $1 AND user_id = $2`)).
			WithArgs(int32(10), int32(5)).
			WillReturnRows(rows)

		m, err := repo.GetMember(ctx, 10, 5)
		assert.NoError(t, err)
		assert.Equal(t, domain.ClubRoleAdmin, m.Role)
	})

	t.Run("NotAMember", func(t *testing.T) {
		repo, mock, done := newClubRepoMock(t)
		defer done()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM club_members WHERE club_id = $1 AND user_id = $2`)).
			WithArgs(int32(10), int32(6)).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetMember(ctx, 10, 6)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})
}

func TestClubRepository_RemoveMember(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mock, done := newClubRepoMock(t)
		defer done()

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM club_members WHERE club_id = $1 AND user_id = $2`)).
			WithArgs(int32(10), int32(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.RemoveMember(ctx, 10, 5))
	})

	t.Run("NotAMember", func(t *testing.T) {
		repo, mock, done := newClubRepoMock(t)
		defer done()

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM club_members WHERE club_id = $1 AND user_id = $2`)).
			WithArgs(int32(10), int32(6)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.Error(t, repo.RemoveMember(ctx, 10, 6))
	})
}

func TestClubRepository_MemberIDs(t *testing.T) {
	repo, mock, done := newClubRepoMock(t)
	defer done()

	rows := sqlmock.NewRows([]string{"user_id"}).AddRow(1).AddRow(2).AddRow(3)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT user_id FROM club_members WHERE club_id = $1`)).
		WithArgs(int32(10)).
		WillReturnRows(rows)

	ids, err := repo.MemberIDs(context.Background(), 10)
	assert.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, ids)
}

func TestClubRepository_UpdateLeader(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, mock, done := newClubRepoMock(t)
		defer done()

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE clubs SET leader_id = $1 WHERE id = $2`)).
			WithArgs(int32(2), int32(10)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdateLeader(ctx, 10, 2))
	})

	t.Run("MissingClub", func(t *testing.T) {
		repo, mock, done := newClubRepoMock(t)
		defer done()

		mock.ExpectExec(regexp.QuoteMeta(`UPDATE clubs SET leader_id = $1 WHERE id = $2`)).
			WithArgs(int32(2), int32(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.Error(t, repo.UpdateLeader(ctx, 99, 2))
	})
}
