package repository

import (
	"context"

	"github.com/omarh/college-reviews/internal/model"
)

// CommentRepository is the comment side of the entity store: an append-only
// log of comments, queryable by school with a newest-first limit.
type CommentRepository interface {
	Insert(ctx context.Context, comment *model.Comment) error
	ListBySchool(ctx context.Context, schoolID, limit int) ([]model.Comment, error)
}

// UserInfoRepository stores one identity record per user, keyed by the
// opaque provider user id. Both writes are idempotent upserts: the login
// flow refreshes the email without touching the nickname, and the nickname
// form overwrites the nickname without touching the email.
type UserInfoRepository interface {
	UpsertIdentity(ctx context.Context, userID, email string) error
	SetNickname(ctx context.Context, userID, nickname string) error
	Find(ctx context.Context, userID string) (*model.UserInfo, error)
}
