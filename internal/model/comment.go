// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

// Comment is a single review on a school's comment board.
//
// The `json:"..."` tags control the wire shape the frontend consumes.
// Timestamp is milliseconds since epoch, set once at creation and never
// mutated; Time is the same instant pre-formatted as MM/DD/YYYY so the
// frontend can render it without date logic. SchoolID is the partition
// key — a comment belongs to exactly one school.
//
// Comments are insert-only: there is no update or delete path.
type Comment struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
	Time      string `json:"time"`
	SchoolID  int    `json:"schoolId"`
}
