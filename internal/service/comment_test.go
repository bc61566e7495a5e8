package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"sort"
	"testing"
	"time"

	"github.com/omarh/college-reviews/internal/apperror"
	"github.com/omarh/college-reviews/internal/identity"
	"github.com/omarh/college-reviews/internal/model"
)

// mockCommentRepo is an in-memory repository.CommentRepository.
//
// failInserts makes the next N Insert calls fail with a transient error,
// which lets tests exercise the single-retry path; insertErr forces a
// permanent failure.
type mockCommentRepo struct {
	comments    []model.Comment
	nextID      int
	failInserts int
	insertErr   error
}

func newMockCommentRepo() *mockCommentRepo {
	return &mockCommentRepo{}
}

func (m *mockCommentRepo) Insert(_ context.Context, comment *model.Comment) error {
	if m.failInserts > 0 {
		m.failInserts--
		return errors.New("transient store failure")
	}
	if m.insertErr != nil {
		return m.insertErr
	}
	m.nextID++
	comment.ID = fmt.Sprintf("mock-%d", m.nextID)
	m.comments = append(m.comments, *comment)
	return nil
}

func (m *mockCommentRepo) ListBySchool(_ context.Context, schoolID, limit int) ([]model.Comment, error) {
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	result := make([]model.Comment, 0, limit)
	for _, c := range m.comments {
		if c.SchoolID == schoolID {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp > result[j].Timestamp })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// mockUserInfoRepo is an in-memory repository.UserInfoRepository shared by
// the comment and session service tests.
type mockUserInfoRepo struct {
	records    map[string]*model.UserInfo
	failWrites int
	writeErr   error
	findErr    error
}

func newMockUserInfoRepo() *mockUserInfoRepo {
	return &mockUserInfoRepo{records: make(map[string]*model.UserInfo)}
}

func (m *mockUserInfoRepo) writeFailure() error {
	if m.failWrites > 0 {
		m.failWrites--
		return errors.New("transient store failure")
	}
	return m.writeErr
}

func (m *mockUserInfoRepo) UpsertIdentity(_ context.Context, userID, email string) error {
	if err := m.writeFailure(); err != nil {
		return err
	}
	info, ok := m.records[userID]
	if !ok {
		info = &model.UserInfo{UserID: userID}
		m.records[userID] = info
	}
	info.Email = email
	return nil
}

func (m *mockUserInfoRepo) SetNickname(_ context.Context, userID, nickname string) error {
	if err := m.writeFailure(); err != nil {
		return err
	}
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

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestCommentService(t *testing.T) (*CommentService, *mockCommentRepo, *mockUserInfoRepo) {
	t.Helper()
	comments := newMockCommentRepo()
	users := newMockUserInfoRepo()
	logger := testLogger()
	resolver := identity.NewResolver(users, logger)
	svc := NewCommentService(comments, resolver, logger)
	return svc, comments, users
}

var dateRe = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

// =========================================================================
// CREATE
// =========================================================================

func TestCreate_AnonymousUsesSubmittedName(t *testing.T) {
	svc, _, _ := newTestCommentService(t)

	c, err := svc.Create(context.Background(), 42, "Alice", "Great campus", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if c.Name != "Alice" {
		t.Errorf("Name = %q, want %q", c.Name, "Alice")
	}
	if c.Message != "Great campus" {
		t.Errorf("Message = %q, want %q", c.Message, "Great campus")
	}
	if c.SchoolID != 42 {
		t.Errorf("SchoolID = %d, want 42", c.SchoolID)
	}
}

func TestCreate_AnonymousEmptyNameDefaults(t *testing.T) {
	svc, _, _ := newTestCommentService(t)

	c, err := svc.Create(context.Background(), 42, "", "no name given", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.Name != identity.DefaultNickname {
		t.Errorf("Name = %q, want %q", c.Name, identity.DefaultNickname)
	}
}

// A logged-in caller posts under their resolved nickname no matter what the
// form field says.
func TestCreate_SessionNicknameOverridesSubmittedName(t *testing.T) {
	svc, _, users := newTestCommentService(t)
	users.records["u1"] = &model.UserInfo{UserID: "u1", Nickname: "Bob"}

	c, err := svc.Create(context.Background(), 42, "Mallory", "hi", "u1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.Name != "Bob" {
		t.Errorf("Name = %q, want session nickname %q", c.Name, "Bob")
	}
}

func TestCreate_SessionWithoutNicknameDefaults(t *testing.T) {
	svc, _, users := newTestCommentService(t)
	users.records["u1"] = &model.UserInfo{UserID: "u1", Email: "u1@example.com"}

	c, err := svc.Create(context.Background(), 42, "Mallory", "hi", "u1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.Name != identity.DefaultNickname {
		t.Errorf("Name = %q, want %q", c.Name, identity.DefaultNickname)
	}
}

func TestCreate_SetsTimestampAndDate(t *testing.T) {
	svc, _, _ := newTestCommentService(t)

	before := time.Now().UnixMilli()
	c, err := svc.Create(context.Background(), 42, "Alice", "hi", "")
	after := time.Now().UnixMilli()
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if c.Timestamp < before || c.Timestamp > after {
		t.Errorf("Timestamp = %d, want between %d and %d", c.Timestamp, before, after)
	}
	if !dateRe.MatchString(c.Time) {
		t.Errorf("Time = %q, want MM/DD/YYYY", c.Time)
	}

	// The date string must derive from the same instant as the timestamp.
	want := time.UnixMilli(c.Timestamp).Format("01/02/2006")
	if c.Time != want {
		t.Errorf("Time = %q, want %q (derived from Timestamp)", c.Time, want)
	}
}

func TestCreate_MessageStoredVerbatim(t *testing.T) {
	svc, repo, _ := newTestCommentService(t)

	msg := "  untrimmed \t message  "
	if _, err := svc.Create(context.Background(), 1, "Alice", msg, ""); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if repo.comments[0].Message != msg {
		t.Errorf("stored Message = %q, want %q", repo.comments[0].Message, msg)
	}
}

func TestCreate_StoreFailureIsUnavailable(t *testing.T) {
	svc, repo, _ := newTestCommentService(t)
	repo.insertErr = errors.New("disk on fire")

	_, err := svc.Create(context.Background(), 42, "Alice", "hi", "")
	if err == nil {
		t.Fatal("Create() should propagate a store failure")
	}
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestCreate_RetriesOnceOnTransientFailure(t *testing.T) {
	svc, repo, _ := newTestCommentService(t)
	repo.failInserts = 1

	c, err := svc.Create(context.Background(), 42, "Alice", "hi", "")
	if err != nil {
		t.Fatalf("Create() should succeed after one retry, got %v", err)
	}
	if c.ID == "" {
		t.Error("retried insert did not assign an ID")
	}
}

func TestCreate_DoesNotRetryTwice(t *testing.T) {
	svc, repo, _ := newTestCommentService(t)
	repo.failInserts = 2

	_, err := svc.Create(context.Background(), 42, "Alice", "hi", "")
	if err == nil {
		t.Fatal("Create() should give up after a single retry")
	}
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

// =========================================================================
// LIST
// =========================================================================

func TestList_CapsAtPageSize(t *testing.T) {
	svc, repo, _ := newTestCommentService(t)

	for i := 0; i < PageSize+2; i++ {
		repo.comments = append(repo.comments, model.Comment{
			ID:        fmt.Sprintf("c%d", i),
			SchoolID:  1,
			Timestamp: int64(1000 + i),
		})
	}

	comments, err := svc.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(comments) != PageSize {
		t.Errorf("List() returned %d comments, want %d", len(comments), PageSize)
	}
}

func TestList_StoreFailureIsUnavailable(t *testing.T) {
	svc, repo, _ := newTestCommentService(t)
	repo.insertErr = errors.New("disk on fire")

	_, err := svc.List(context.Background(), 1)
	if err == nil {
		t.Fatal("List() should propagate a store failure, not return an empty list")
	}
	if !errors.Is(err, apperror.ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

// Post-then-list: the new comment is the first element.
func TestCreateThenList_NewestFirst(t *testing.T) {
	svc, repo, _ := newTestCommentService(t)

	for i := 0; i < 3; i++ {
		repo.comments = append(repo.comments, model.Comment{
			ID:        fmt.Sprintf("old-%d", i),
			SchoolID:  42,
			Timestamp: int64(i), // long in the past
		})
	}

	created, err := svc.Create(context.Background(), 42, "Alice", "Great campus", "")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	comments, err := svc.List(context.Background(), 42)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(comments) != 4 {
		t.Fatalf("List() returned %d comments, want 4", len(comments))
	}
	if comments[0].ID != created.ID {
		t.Errorf("List()[0].ID = %q, want the new comment %q first", comments[0].ID, created.ID)
	}
}
