package identity

import (
	"context"
	"errors"
	"log/slog"

	"github.com/omarh/college-reviews/internal/apperror"
	"github.com/omarh/college-reviews/internal/repository"
)

// DefaultNickname is the display name used when the caller has no stored
// nickname. An absent record is a normal, common outcome — most users never
// set one — so resolution has no error case.
const DefaultNickname = "Anonymous"

// Resolver looks up a caller's chosen display nickname.
type Resolver struct {
	users  repository.UserInfoRepository
	logger *slog.Logger
}

func NewResolver(users repository.UserInfoRepository, logger *slog.Logger) *Resolver {
	return &Resolver{
		users:  users,
		logger: logger,
	}
}

// ResolveNickname returns the stored nickname for userID, or DefaultNickname
// if the user has never set one.
//
// A store failure also falls back to the default: nickname resolution is a
// cosmetic lookup on the comment-posting path, and failing the whole post
// because the display name could not be fetched would lose the user's text.
// The failure is logged so it is not invisible.
func (r *Resolver) ResolveNickname(ctx context.Context, userID string) string {
	if userID == "" {
		return DefaultNickname
	}

	info, err := r.users.Find(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			r.logger.Warn("nickname lookup failed, using default",
				slog.String("userID", userID),
				slog.String("error", err.Error()),
			)
		}
		return DefaultNickname
	}

	if info.Nickname == "" {
		return DefaultNickname
	}
	return info.Nickname
}
