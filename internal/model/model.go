// Package model holds the persistent domain types of the planner and the
// conversions from untrusted input into them.
package model

import (
	"strings"
	"time"

	"github.com/username/workshop-planner/internal/apperr"
)

// Category is the work-type bucket a job belongs to.
type Category string

const (
	CategoryRoutine    Category = "routine"
	CategoryInspection Category = "inspection"
	CategoryMajor      Category = "major"
)

// ParseCategory converts untrusted input into a Category.
func ParseCategory(value string) (Category, error) {
	switch Category(strings.TrimSpace(strings.ToLower(value))) {
	case CategoryRoutine:
		return CategoryRoutine, nil
	case CategoryInspection:
		return CategoryInspection, nil
	case CategoryMajor:
		return CategoryMajor, nil
	default:
		return "", apperr.Validationf("invalid category: %q", value)
	}
}

// Status is the lifecycle state of a job.
type Status string

const (
	StatusPending Status = "pending"
	StatusArrived Status = "arrived"
	StatusDone    Status = "done"
)

// ParseStatus converts untrusted input into a Status.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.TrimSpace(strings.ToLower(value))) {
	case StatusPending:
		return StatusPending, nil
	case StatusArrived:
		return StatusArrived, nil
	case StatusDone:
		return StatusDone, nil
	default:
		return "", apperr.Validationf("invalid status: %q", value)
	}
}

// Next returns the next status in the pending → arrived → done cycle.
// The cycle has no terminal state; done wraps back to pending.
func (s Status) Next() Status {
	switch s {
	case StatusPending:
		return StatusArrived
	case StatusArrived:
		return StatusDone
	default:
		return StatusPending
	}
}

// Job is one workshop appointment.
type Job struct {
	ID          int64        `json:"id"`
	Date        string       `json:"date"` // YYYY-MM-DD
	Time        *string      `json:"time"` // HH:MM, nil means all day
	Category    Category     `json:"category"`
	Title       string       `json:"title"`
	Customer    string       `json:"customer,omitempty"`
	Contact     string       `json:"contact,omitempty"`
	Vehicle     string       `json:"vehicle,omitempty"`
	License     string       `json:"license,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	WorkUnits   string       `json:"aw,omitempty"`
	LoanerCar   bool         `json:"loanerCar"`
	TireStorage bool         `json:"tireStorage"`
	Status      Status       `json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	Attachments []Attachment `json:"attachments"`
}

// Attachment is the metadata record linking one stored file to a job.
type Attachment struct {
	ID         int64     `json:"id"`
	JobID      int64     `json:"jobId"`
	Filename   string    `json:"filename"`
	StoredName string    `json:"storedName"`
	MimeType   string    `json:"mimeType"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ClipboardNote is a free-form scratch note, unrelated to jobs.
type ClipboardNote struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"createdAt"`
}

// ParseFormBool normalizes the textual truthy forms produced by form-encoded
// checkboxes. Anything not in the accepted set is false.
func ParseFormBool(value string) bool {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "true", "on", "1", "ja":
		return true
	default:
		return false
	}
}
