// Package identity resolves who and what a request is about: the school the
// caller is looking at, and the display name the caller should post under.
package identity

import (
	"net/http"
	"strconv"

	"github.com/omarh/college-reviews/internal/apperror"
)

// ParseSchoolID reads the required "id" parameter from the request.
//
// It works for both GET (query string) and POST (form body) because
// Request.FormValue checks both. A missing or non-numeric id is a hard
// failure: callers must reject the request rather than proceed with a
// poisoned value, so an explicit validation error is returned instead of
// a -1 sentinel.
func ParseSchoolID(r *http.Request) (int, error) {
	raw := r.FormValue("id")
	if raw == "" {
		return 0, apperror.ValidationFailed("id", "school id is required")
	}

	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed("id", "school id must be a number")
	}

	return id, nil
}
