package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/rs/xid"

	"github.com/omarh/college-reviews/internal/auth"
	"github.com/omarh/college-reviews/internal/service"
)

// AuthHandler manages the OAuth login flow and the session cookie.
//
//   - HandleLogin    → redirect the browser to the provider's authorization page
//   - HandleCallback → receive the code, exchange it for a user, issue the session
//   - HandleLogout   → clear the session cookie and bounce back to the board
//
// The login and logout URLs handed out by GET /user point here with a "next"
// parameter naming the page to land on afterwards, so the flow returns the
// caller to the school they were viewing.
type AuthHandler struct {
	provider *auth.GitHubProvider
	tokens   *auth.TokenService
	sessions *service.SessionService
	logger   *slog.Logger
}

func NewAuthHandler(
	provider *auth.GitHubProvider,
	tokens *auth.TokenService,
	sessions *service.SessionService,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		provider: provider,
		tokens:   tokens,
		sessions: sessions,
		logger:   logger,
	}
}

// safeNext returns a redirect target that stays on this site. Only local
// absolute paths are accepted; anything else (full URLs, protocol-relative
// "//evil.com") falls back to the root, so the login flow cannot be used as
// an open redirect.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/"
	}
	return next
}

// HandleLogin starts the OAuth flow.
//
// HTTP: GET /auth/login?next=<path>
//
// The random state value is stored in a short-lived cookie and verified on
// callback (CSRF protection); the next target rides in a second cookie so
// the callback knows where to land.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_next",
		Value:    safeNext(r.URL.Query().Get("next")),
		Path:     "/",
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleCallback completes the OAuth flow.
//
// HTTP: GET /auth/callback?code=xxx&state=yyy
//
//  1. Verify the state parameter against the cookie (CSRF check)
//  2. Exchange the code for the provider's user profile
//  3. Upsert the identity record (email refresh, nickname untouched)
//  4. Issue the session JWT in an HttpOnly cookie
//  5. Redirect to the next target captured at login time
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" {
		h.logger.Warn("auth callback: missing state cookie")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Error(w, "invalid OAuth state", http.StatusBadRequest)
		return
	}

	// State is single-use.
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	next := "/"
	if nextCookie, err := r.Cookie("oauth_next"); err == nil {
		next = safeNext(nextCookie.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: "oauth_next", Value: "", Path: "/", MaxAge: -1})

	// The user may have denied authorization on the provider's page.
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("auth callback: authorization denied", slog.String("error", errParam))
		http.Redirect(w, r, "/?auth=denied", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing OAuth code", http.StatusBadRequest)
		return
	}

	ghUser, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("auth callback: exchange failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	userID := ghUser.UserID()
	if err := h.sessions.RegisterLogin(r.Context(), userID, ghUser.Email); err != nil {
		h.logger.Error("auth callback: registering login failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	tokenStr, err := h.tokens.Generate(userID)
	if err != nil {
		h.logger.Error("auth callback: token generation failed", slog.String("error", err.Error()))
		http.Error(w, "authentication failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    tokenStr,
		Path:     "/",
		MaxAge:   24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // enable behind HTTPS
	})

	http.Redirect(w, r, next, http.StatusSeeOther)
}

// HandleLogout clears the session cookie.
//
// HTTP: GET /auth/logout?next=<path>
//
// Logout is reachable by GET because the status JSON exposes it as a plain
// link the frontend renders directly. Clearing the cookie is all there is to
// it — the JWT itself simply expires.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusSeeOther)
}
