package identity

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/omarh/college-reviews/internal/apperror"
	"github.com/omarh/college-reviews/internal/model"
)

// mockUserInfoRepo is an in-memory repository.UserInfoRepository.
type mockUserInfoRepo struct {
	records map[string]*model.UserInfo
	findErr error // forced error for simulating store failures
}

func newMockUserInfoRepo() *mockUserInfoRepo {
	return &mockUserInfoRepo{records: make(map[string]*model.UserInfo)}
}

func (m *mockUserInfoRepo) UpsertIdentity(_ context.Context, userID, email string) error {
	info, ok := m.records[userID]
	if !ok {
		info = &model.UserInfo{UserID: userID}
		m.records[userID] = info
	}
	info.Email = email
	return nil
}

func (m *mockUserInfoRepo) SetNickname(_ context.Context, userID, nickname string) error {
	info, ok := m.records[userID]
	if !ok {
		info = &model.UserInfo{UserID: userID}
		m.records[userID] = info
	}
	info.Nickname = nickname
	return nil
}

func (m *mockUserInfoRepo) Find(_ context.Context, userID string) (*model.UserInfo, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	info, ok := m.records[userID]
	if !ok {
		return nil, apperror.NotFound("user", userID)
	}
	result := *info
	return &result, nil
}

func newTestResolver(t *testing.T) (*Resolver, *mockUserInfoRepo) {
	t.Helper()
	repo := newMockUserInfoRepo()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewResolver(repo, logger), repo
}

func TestResolveNickname_StoredNickname(t *testing.T) {
	resolver, repo := newTestResolver(t)
	repo.records["u1"] = &model.UserInfo{UserID: "u1", Nickname: "Bob"}

	if got := resolver.ResolveNickname(context.Background(), "u1"); got != "Bob" {
		t.Errorf("ResolveNickname() = %q, want %q", got, "Bob")
	}
}

func TestResolveNickname_UnknownUserDefaults(t *testing.T) {
	resolver, _ := newTestResolver(t)

	if got := resolver.ResolveNickname(context.Background(), "nobody"); got != DefaultNickname {
		t.Errorf("ResolveNickname() = %q, want %q", got, DefaultNickname)
	}
}

func TestResolveNickname_EmptyNicknameDefaults(t *testing.T) {
	resolver, repo := newTestResolver(t)
	// Logged in at least once but never chose a nickname.
	repo.records["u1"] = &model.UserInfo{UserID: "u1", Email: "u1@example.com"}

	if got := resolver.ResolveNickname(context.Background(), "u1"); got != DefaultNickname {
		t.Errorf("ResolveNickname() = %q, want %q", got, DefaultNickname)
	}
}

func TestResolveNickname_EmptyUserIDDefaults(t *testing.T) {
	resolver, _ := newTestResolver(t)

	if got := resolver.ResolveNickname(context.Background(), ""); got != DefaultNickname {
		t.Errorf("ResolveNickname() = %q, want %q", got, DefaultNickname)
	}
}

func TestResolveNickname_StoreFailureDefaults(t *testing.T) {
	resolver, repo := newTestResolver(t)
	repo.findErr = errors.New("connection refused")

	if got := resolver.ResolveNickname(context.Background(), "u1"); got != DefaultNickname {
		t.Errorf("ResolveNickname() = %q, want %q", got, DefaultNickname)
	}
}

// Two lookups with no intervening write must return the same value.
func TestResolveNickname_Idempotent(t *testing.T) {
	resolver, repo := newTestResolver(t)
	repo.records["u1"] = &model.UserInfo{UserID: "u1", Nickname: "Bob"}

	first := resolver.ResolveNickname(context.Background(), "u1")
	second := resolver.ResolveNickname(context.Background(), "u1")
	if first != second {
		t.Errorf("ResolveNickname() not idempotent: %q then %q", first, second)
	}
}
