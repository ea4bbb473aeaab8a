package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"auction-house/internal/domain"
)

// MySQLUserDirectory answers the userExists contract from the users table
// owned by the registration flow.
type MySQLUserDirectory struct {
	db *sql.DB
}

func NewMySQLUserDirectory(db *sql.DB) *MySQLUserDirectory {
	return &MySQLUserDirectory{db: db}
}

func (d *MySQLUserDirectory) UserExists(ctx context.Context, userID string) (bool, error) {
	var one int
	err := d.db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE id = ?`, userID).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("%w: user lookup: %v", domain.ErrUnavailable, err)
	}
	return true, nil
}

// MySQLMediaStore answers the imageExists contract from the media table
// maintained by the upload flow; consulted only at auction creation.
type MySQLMediaStore struct {
	db *sql.DB
}

func NewMySQLMediaStore(db *sql.DB) *MySQLMediaStore {
	return &MySQLMediaStore{db: db}
}

func (m *MySQLMediaStore) ImageExists(ctx context.Context, imageRef string) (bool, error) {
	var one int
	err := m.db.QueryRowContext(ctx, `SELECT 1 FROM media WHERE ref = ?`, imageRef).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("%w: media lookup: %v", domain.ErrUnavailable, err)
	}
	return true, nil
}
