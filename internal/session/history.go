package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/muzee/internal/shared"
)

// Login is a captured login event.
type Login struct {
	ID         string
	ReturnPath string
	LoggedInAt time.Time
}

// HistoryRepository persists [Login] records in the login_history table.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new [HistoryRepository] with the given database connection
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Record inserts a login with a generated ID.
func (r *HistoryRepository) Record(ctx context.Context, returnPath string) (*Login, error) {
	login := &Login{
		ID:         shared.GenerateID(),
		ReturnPath: returnPath,
		LoggedInAt: time.Now().UTC(),
	}

	query := `INSERT INTO login_history (id, return_path, logged_in_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, login.ID, login.ReturnPath, login.LoggedInAt); err != nil {
		return nil, fmt.Errorf("%w: failed to insert login: %v", shared.ErrStorage, err)
	}
	return login, nil
}

// Latest returns the most recent login, or nil when none was recorded.
func (r *HistoryRepository) Latest(ctx context.Context) (*Login, error) {
	query := `
		SELECT id, return_path, logged_in_at
		FROM login_history
		ORDER BY logged_in_at DESC
		LIMIT 1
	`

	var login Login
	err := r.db.QueryRowContext(ctx, query).Scan(&login.ID, &login.ReturnPath, &login.LoggedInAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query login: %v", shared.ErrStorage, err)
	}
	return &login, nil
}

// Count returns the number of recorded logins.
func (r *HistoryRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM login_history").Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: failed to count logins: %v", shared.ErrStorage, err)
	}
	return n, nil
}
