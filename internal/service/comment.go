// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-tier shape:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (business layer) → orchestrates identity + storage, sets policy
//	Repository (data layer)  → reads/writes the entity store
//
// Services accept primitives and return domain errors; they know nothing
// about HTTP. Handlers translate apperror values to status codes, so the
// same logic could back a CLI or a different transport unchanged.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/omarh/college-reviews/internal/apperror"
	"github.com/omarh/college-reviews/internal/identity"
	"github.com/omarh/college-reviews/internal/model"
	"github.com/omarh/college-reviews/internal/repository"
)

const (
	// PageSize is the fixed number of comments a list returns. There is no
	// pagination: older comments are silently truncated.
	PageSize = 10

	// storeTimeout bounds every datastore call so a hung store cannot pin a
	// request worker indefinitely.
	storeTimeout = 2 * time.Second
)

// formatDate renders an instant as the MM/DD/YYYY string stored alongside
// the millisecond timestamp. A pure function — no shared formatter state.
func formatDate(t time.Time) string {
	return t.Format("01/02/2006")
}

// CommentService orchestrates listing and creating comments.
type CommentService struct {
	comments repository.CommentRepository
	resolver *identity.Resolver
	logger   *slog.Logger
}

func NewCommentService(comments repository.CommentRepository, resolver *identity.Resolver, logger *slog.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		resolver: resolver,
		logger:   logger,
	}
}

// List returns the newest PageSize comments for one school, timestamp
// descending. Store failures surface as ErrUnavailable so the handler
// answers 5xx rather than an empty, silently "successful" list.
func (s *CommentService) List(ctx context.Context, schoolID int) ([]model.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	comments, err := s.comments.ListBySchool(ctx, schoolID, PageSize)
	if err != nil {
		s.logger.Error("failed to list comments",
			slog.Int("schoolID", schoolID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing comments: %w", apperror.Unavailable("listing comments"))
	}

	return comments, nil
}

// Create stores a new comment for the given school.
//
// NAME POLICY:
// When the caller has an authenticated session (userID non-empty), the
// stored name is always the nickname resolved from the identity record —
// the submitted name field is ignored, so a logged-in user cannot post under
// an arbitrary name. Only anonymous posts use the submitted name, and an
// empty anonymous name falls back to "Anonymous" so the stored name is
// always a display name.
//
// The message is stored as submitted: unvalidated, untrimmed, empty allowed.
// Timestamp is the server clock in milliseconds at creation, set once; the
// redundant human-readable date is derived from the same instant.
//
// A transient insert failure gets one retry before surfacing as
// ErrUnavailable; nothing read earlier is affected by a failed write.
func (s *CommentService) Create(ctx context.Context, schoolID int, submittedName, message, userID string) (*model.Comment, error) {
	now := time.Now()

	name := submittedName
	if userID != "" {
		name = s.resolver.ResolveNickname(ctx, userID)
	}
	if name == "" {
		name = identity.DefaultNickname
	}

	comment := &model.Comment{
		Name:      name,
		Message:   message,
		Timestamp: now.UnixMilli(),
		Time:      formatDate(now),
		SchoolID:  schoolID,
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	err := s.comments.Insert(ctx, comment)
	if err != nil && ctx.Err() == nil {
		s.logger.Warn("comment insert failed, retrying once",
			slog.Int("schoolID", schoolID),
			slog.String("error", err.Error()),
		)
		err = s.comments.Insert(ctx, comment)
	}
	if err != nil {
		s.logger.Error("failed to insert comment",
			slog.Int("schoolID", schoolID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment: %w", apperror.Unavailable("storing the comment"))
	}

	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.Int("schoolID", schoolID),
		slog.Bool("authenticated", userID != ""),
	)

	return comment, nil
}
