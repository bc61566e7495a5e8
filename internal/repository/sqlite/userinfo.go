package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/omarh/college-reviews/internal/apperror"
	"github.com/omarh/college-reviews/internal/model"
	"github.com/omarh/college-reviews/internal/repository"
)

// compile-time check that *DB implements repository.UserInfoRepository
var _ repository.UserInfoRepository = (*DB)(nil)

// UpsertIdentity records that userID logged in with the given email.
//
// ON CONFLICT ... DO UPDATE gives us the insert-or-overwrite semantics in a
// single statement: first login inserts the row, later logins refresh the
// email in case it changed at the provider. The nickname column is
// deliberately not in the update list — logging in again must never wipe a
// nickname the user already chose.
func (db *DB) UpsertIdentity(ctx context.Context, userID, email string) error {
	now := time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_info (user_id, email, nickname, created_at, updated_at)
		 VALUES (?, ?, '', ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			email = excluded.email,
			updated_at = excluded.updated_at`,
		userID,
		email,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting identity for user %s: %w", userID, err)
	}

	return nil
}

// SetNickname writes or overwrites the user's nickname.
//
// Last-write-wins by construction: repeated calls with the same userID leave
// only the latest nickname visible. The row is created if the login flow has
// not written it yet (the email stays empty until the next login refreshes it).
func (db *DB) SetNickname(ctx context.Context, userID, nickname string) error {
	now := time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_info (user_id, email, nickname, created_at, updated_at)
		 VALUES (?, '', ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			nickname = excluded.nickname,
			updated_at = excluded.updated_at`,
		userID,
		nickname,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("sqlite: setting nickname for user %s: %w", userID, err)
	}

	return nil
}

// Find is a point lookup by provider user id.
// Returns apperror.ErrNotFound if the user has never logged in or set a nickname.
func (db *DB) Find(ctx context.Context, userID string) (*model.UserInfo, error) {
	var u model.UserInfo

	err := db.conn.QueryRowContext(ctx,
		`SELECT user_id, email, nickname, created_at, updated_at
		 FROM user_info WHERE user_id = ?`,
		userID,
	).Scan(
		&u.UserID,
		&u.Email,
		&u.Nickname,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", userID)
		}
		return nil, fmt.Errorf("sqlite: finding user %s: %w", userID, err)
	}

	return &u, nil
}
