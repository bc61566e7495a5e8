package handler

import (
	"log/slog"
	"net/http"

	"github.com/omarh/college-reviews/internal/auth"
	"github.com/omarh/college-reviews/internal/identity"
	"github.com/omarh/college-reviews/internal/service"
)

// SessionHandler serves the /user endpoint: login status for the page the
// caller is viewing, and the nickname form submission.
type SessionHandler struct {
	sessions *service.SessionService
	logger   *slog.Logger
}

func NewSessionHandler(sessions *service.SessionService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
		logger:   logger,
	}
}

// HandleStatus reports whether the caller is logged in.
//
// HTTP: GET /user?id=<int>
//
// Logged in:  {"isLoggedIn":true,"email":...,"logoutURL":...}
// Logged out: {"isLoggedIn":false,"loginURL":...}
//
// The school id is required because both URLs route back to pages scoped to
// the school the caller is viewing.
func (h *SessionHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	schoolID, err := identity.ParseSchoolID(r)
	if err != nil {
		h.logger.Warn("login status: bad school id", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	userID, _ := auth.UserIDFromContext(r.Context())

	status, err := h.sessions.Status(r.Context(), userID, schoolID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

// HandleSetNickname persists the caller's chosen display name.
//
// HTTP: POST /user with form fields "nickname" and "id".
//
// Requires an active session; an anonymous caller is redirected to /user,
// the neutral login entry point, rather than shown a bare 401 — the form is
// posted by a browser, not an API client. On success the browser is sent
// back to the school's reviews page.
func (h *SessionHandler) HandleSetNickname(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/user", http.StatusSeeOther)
		return
	}

	schoolID, err := identity.ParseSchoolID(r)
	if err != nil {
		h.logger.Warn("set nickname: bad school id", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	nickname := r.FormValue("nickname")

	if err := h.sessions.SetNickname(r.Context(), userID, nickname); err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, service.ReviewsPagePath(schoolID), http.StatusSeeOther)
}
