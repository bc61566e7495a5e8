package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/omarh/college-reviews/internal/apperror"
	"github.com/omarh/college-reviews/internal/model"
	"github.com/omarh/college-reviews/internal/repository"
)

// ReviewsPagePath is where the frontend shows a school's review board; both
// the comment form and the login/logout flows land back here.
func ReviewsPagePath(schoolID int) string {
	return fmt.Sprintf("/college-info.html?id=%d#reviews", schoolID)
}

// NicknamePagePath is the nickname-entry page a fresh login lands on.
func NicknamePagePath(schoolID int) string {
	return fmt.Sprintf("/nickname.html?id=%d", schoolID)
}

// SessionService reports login state and persists nickname choices.
type SessionService struct {
	users  repository.UserInfoRepository
	logger *slog.Logger
}

func NewSessionService(users repository.UserInfoRepository, logger *slog.Logger) *SessionService {
	return &SessionService{
		users:  users,
		logger: logger,
	}
}

// Status describes the caller's login state for the school they are viewing.
//
// Logged-in callers get their email and a logout URL that returns to the
// school's reviews page. Anonymous callers get a login URL that enters the
// auth flow and lands on the nickname page for the same school afterwards —
// mirroring how the board has always steered fresh logins toward picking a
// nickname first.
func (s *SessionService) Status(ctx context.Context, userID string, schoolID int) (*model.LoginStatus, error) {
	if userID == "" {
		return &model.LoginStatus{
			IsLoggedIn: false,
			LoginURL:   "/auth/login?next=" + url.QueryEscape(NicknamePagePath(schoolID)),
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	email := ""
	info, err := s.users.Find(ctx, userID)
	switch {
	case err == nil:
		email = info.Email
	case errors.Is(err, apperror.ErrNotFound):
		// Valid session but no stored record yet (first login not finished
		// upserting, or the record was purged). Still logged in, just no email.
	default:
		s.logger.Error("failed to load identity record",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("loading login status: %w", apperror.Unavailable("loading the identity record"))
	}

	return &model.LoginStatus{
		IsLoggedIn: true,
		Email:      email,
		LogoutURL:  "/auth/logout?next=" + url.QueryEscape(ReviewsPagePath(schoolID)),
	}, nil
}

// SetNickname persists the caller's chosen display name.
//
// Requires an active session: the nickname is keyed by the provider user id,
// so there is nothing to attach it to for an anonymous caller. The write is
// an idempotent last-write-wins upsert; a transient failure gets one retry.
func (s *SessionService) SetNickname(ctx context.Context, userID, nickname string) error {
	if userID == "" {
		return apperror.Unauthorized("login required to set a nickname")
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	err := s.users.SetNickname(ctx, userID, nickname)
	if err != nil && ctx.Err() == nil {
		s.logger.Warn("nickname upsert failed, retrying once",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		err = s.users.SetNickname(ctx, userID, nickname)
	}
	if err != nil {
		s.logger.Error("failed to set nickname",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("setting nickname: %w", apperror.Unavailable("storing the nickname"))
	}

	s.logger.Info("nickname set", slog.String("userID", userID))
	return nil
}

// RegisterLogin upserts the identity record after a completed OAuth
// exchange. First login creates the record; later logins refresh the email
// without touching any nickname the user already chose.
func (s *SessionService) RegisterLogin(ctx context.Context, userID, email string) error {
	if userID == "" {
		return fmt.Errorf("service/session: user id must not be empty")
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	err := s.users.UpsertIdentity(ctx, userID, email)
	if err != nil && ctx.Err() == nil {
		err = s.users.UpsertIdentity(ctx, userID, email)
	}
	if err != nil {
		s.logger.Error("failed to upsert identity",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("registering login: %w", apperror.Unavailable("storing the identity record"))
	}

	s.logger.Info("user logged in", slog.String("userID", userID))
	return nil
}
