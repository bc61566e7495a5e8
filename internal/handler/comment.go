// Package handler contains the HTTP request handlers for the review board.
//
// Handlers are the glue between HTTP and the services: they parse the
// request, call business logic, and write the response. No business rules
// live here.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/omarh/college-reviews/internal/auth"
	"github.com/omarh/college-reviews/internal/identity"
	"github.com/omarh/college-reviews/internal/service"
)

// CommentHandler serves the /data endpoint: the paginated comment list for a
// school and the comment submission form.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		comments: comments,
		logger:   logger,
	}
}

// HandleList returns the newest comments for one school.
//
// HTTP: GET /data?id=<int>
//
// Response: JSON array of comment objects, at most 10, newest first.
// A missing or non-numeric id is a 400 — never an empty list against a
// made-up school id.
func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	schoolID, err := identity.ParseSchoolID(r)
	if err != nil {
		h.logger.Warn("list comments: bad school id", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	comments, err := h.comments.List(r.Context(), schoolID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// HandleCreate stores a new comment and sends the browser back to the
// reviews page it came from.
//
// HTTP: POST /data with form fields "name-input" (optional), "text-input"
// (optional), "id" (required).
//
// The name-input field only matters for anonymous posts; a logged-in
// caller's stored name is always their resolved nickname (see
// CommentService.Create). On success the response is a 303 redirect — the
// form post pattern the frontend relies on — with no JSON body.
func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	schoolID, err := identity.ParseSchoolID(r)
	if err != nil {
		h.logger.Warn("create comment: bad school id", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	name := r.FormValue("name-input")
	message := r.FormValue("text-input")
	userID, _ := auth.UserIDFromContext(r.Context())

	if _, err := h.comments.Create(r.Context(), schoolID, name, message, userID); err != nil {
		writeError(w, err)
		return
	}

	http.Redirect(w, r, service.ReviewsPagePath(schoolID), http.StatusSeeOther)
}
