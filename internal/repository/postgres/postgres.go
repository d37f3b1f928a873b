package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"carscene-backend/internal/repository"

	_ "github.com/lib/pq"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same repository code
// serves plain calls and transactional sequences.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.ClubRepository
	repository.MessageRepository
	repository.CarRepository
	repository.EventRepository
	repository.LeaderboardRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		UserRepository:        NewUserRepository(db),
		ClubRepository:        NewClubRepository(db),
		MessageRepository:     NewMessageRepository(db),
		CarRepository:         NewCarRepository(db),
		EventRepository:       NewEventRepository(db),
		LeaderboardRepository: NewLeaderboardRepository(db),
	}
}

// Accessors satisfying repository.Atomic
func (s *Store) Users() repository.UserRepository       { return s.UserRepository }
func (s *Store) Clubs() repository.ClubRepository       { return s.ClubRepository }
func (s *Store) Messages() repository.MessageRepository { return s.MessageRepository }

// ExecTx runs fn with a store view bound to a single database transaction.
// The membership workflow uses this to close the gap between its existence
// checks and the write they guard.
func (s *Store) ExecTx(ctx context.Context, fn func(repository.Atomic) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	txStore := &Store{
		db:                    s.db,
		UserRepository:        NewUserRepository(tx),
		ClubRepository:        NewClubRepository(tx),
		MessageRepository:     NewMessageRepository(tx),
		CarRepository:         NewCarRepository(tx),
		EventRepository:       NewEventRepository(tx),
		LeaderboardRepository: NewLeaderboardRepository(tx),
	}

	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx error: %v, rollback error: %w", err, rbErr)
		}
		return err
	}
	return tx.Commit()
}
