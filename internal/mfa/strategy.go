package mfa

import (
	"context"
	"encoding/json"
)

// PrepareInput carries what a strategy needs to set up an enrollment
// form for a user.
type PrepareInput struct {
	UserId      string
	Email       string
	PhoneNumber string
	// SessionKey scopes server-side ceremony state to the caller's
	// session.
	SessionKey string
	// Credentials holds the serialized credentials of the user's
	// existing enrollments for this interface, when any.
	Credentials [][]byte
}

// Prepared is the strategy-specific payload for the enrollment form.
type Prepared struct {
	Secret          string
	ProvisioningUri string
	QrCode          string
	Challenge       json.RawMessage
	PhoneNumber     string
	Fields          []FormField
}

// ValidateInput carries the user's submitted proof of possession.
type ValidateInput struct {
	UserId      string
	Email       string
	SessionKey  string
	Secret      string
	Otp         string
	PhoneNumber string
	DeviceName  string
	Response    []byte
	Credentials [][]byte
}

// Material is what a successful validation yields for persistence.
// When Pending is set, nothing is persisted yet: the strategy kicked
// off an out-of-band delivery and the caller must resubmit with the
// received code.
type Material struct {
	Secret      string
	PhoneNumber string
	Credential  []byte
	DeviceName  string
	Pending     bool
}

// Strategy is a second-factor interface's enrollment behaviour. The
// set of implementations is closed: totp, sms and u2f.
type Strategy interface {
	Kind() Kind
	Capabilities() Capabilities
	FormFields() []FormField
	// Prepare builds the enrollment form payload.
	Prepare(ctx context.Context, input PrepareInput) (*Prepared, error)
	// Validate checks the submitted proof and returns the material to
	// persist, or Pending when an out-of-band step was triggered.
	Validate(ctx context.Context, input ValidateInput) (*Material, error)
}
