package adminreq

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/elevezen/elevezen/core"
)

// Statuses. A request starts out pending; the super-admin either approves or
// rejects it; an approved request is completed by the requester validating the
// emailed code. rejected and completed are terminal.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"

	// StatusExpired is a display-only status derived at read time; it is
	// never stored.
	StatusExpired = "expired"
)

var nowFunc = time.Now // mockable

// Request is a privilege-elevation request for one user.
type Request struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Status    string `json:"status"`
	// the code is only ever delivered by email
	ValidationCode null.String `json:"-"`
	CodeExpiresAt  null.Time   `json:"code_expires_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"` // UTC
	UpdatedAt      time.Time   `json:"updated_at"` // UTC
}

// Terminal reports whether the request has reached an end state.
func (r Request) Terminal() bool {
	return r.Status == StatusRejected || r.Status == StatusCompleted
}

// Expired reports whether an approved request's validation code has lapsed.
// Expiry is evaluated lazily against the wall clock; no background sweep
// transitions the stored status.
func (r Request) Expired() bool {
	return r.Status == StatusApproved && r.CodeExpiresAt.Valid && nowFunc().After(r.CodeExpiresAt.Time)
}

// DisplayStatus is the status as presented to the requester.
func (r Request) DisplayStatus() string {
	if r.Expired() {
		return StatusExpired
	}
	return r.Status
}

// ValidateCodeInput carries the code submitted by the requester.
type ValidateCodeInput struct {
	Code string `json:"code" validate:"required"`
}

func (vi *ValidateCodeInput) Validate() error {
	vi.Code = core.CleanString(vi.Code)
	return core.Validate.Struct(vi)
}
