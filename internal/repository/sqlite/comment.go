package sqlite

import (
	"context"
	"fmt"

	"github.com/rs/xid"

	"github.com/omarh/college-reviews/internal/model"
	"github.com/omarh/college-reviews/internal/repository"
)

// compile-time check that *DB implements repository.CommentRepository
var _ repository.CommentRepository = (*DB)(nil)

// Insert appends a new comment.
//
// The repository only generates the row ID (xid: 20 chars, URL-safe,
// sortable by creation time). Name, message, timestamp, time, and school id
// arrive fully populated from the service — deliberately unvalidated, per
// the board's behavior — and are stored verbatim.
func (db *DB) Insert(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, name, message, timestamp, time, school_id)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.Name,
		comment.Message,
		comment.Timestamp,
		comment.Time,
		comment.SchoolID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment: %w", err)
	}

	return nil
}

// ListBySchool returns up to limit comments for one school, newest first.
//
// This is the board's single read query:
//
//	SELECT ... WHERE school_id = ? ORDER BY timestamp DESC LIMIT ?
//
// Results past the limit are silently truncated — there is no cursor or
// offset. Timestamp ties keep whatever order SQLite hands back.
func (db *DB) ListBySchool(ctx context.Context, schoolID, limit int) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, message, timestamp, time, school_id
		 FROM comments
		 WHERE school_id = ?
		 ORDER BY timestamp DESC
		 LIMIT ?`,
		schoolID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for school %d: %w", schoolID, err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0, limit)

	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Message, &c.Timestamp, &c.Time, &c.SchoolID,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}
