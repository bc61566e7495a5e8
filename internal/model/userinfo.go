// Package model defines the data structures used throughout the application.
package model

import "time"

// UserInfo is the stored identity record for a logged-in user.
//
// UserID is the opaque id supplied by the identity provider and is the
// primary key — at most one record exists per user, and writes are
// last-write-wins upserts. Nickname is empty until the user picks one;
// comment posting falls back to "Anonymous" in that case.
//
// WHY Email string (not *string)?
// The identity provider may withhold the email (e.g. hidden in profile
// settings). We use an empty string as the zero value rather than a
// nullable pointer — simpler to work with and safe to display.
type UserInfo struct {
	UserID    string    `json:"userId"    db:"user_id"`
	Email     string    `json:"email"     db:"email"`
	Nickname  string    `json:"nickname"  db:"nickname"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// LoginStatus is the response body of GET /user.
//
// Exactly one of LoginURL / LogoutURL is present depending on IsLoggedIn;
// omitempty keeps the absent fields out of the JSON entirely, matching
// what the frontend expects.
type LoginStatus struct {
	IsLoggedIn bool   `json:"isLoggedIn"`
	Email      string `json:"email,omitempty"`
	LogoutURL  string `json:"logoutURL,omitempty"`
	LoginURL   string `json:"loginURL,omitempty"`
}
