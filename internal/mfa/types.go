// Package mfa implements second-factor authenticator enrollment: the
// interface registry, per-interface enrollment strategies, and the
// orchestration that turns a verified proof into a persisted
// authenticator with its follow-up account hygiene.
package mfa

import "time"

// Kind identifies a second-factor interface. The values double as the
// path segment in the enrollment endpoints and as the column value in
// storage.
type Kind string

const (
	KindTotp     Kind = "totp"
	KindSms      Kind = "sms"
	KindWebauthn Kind = "u2f"
)

// EnrollmentStatus is the resolved meaning of an enrollment attempt
// for an interface the user may already have.
type EnrollmentStatus string

const (
	// EnrollmentStatusNone means no prior enrollment exists; proceed
	// with a fresh one.
	EnrollmentStatusNone EnrollmentStatus = "none"
	// EnrollmentStatusMulti means prior enrollments exist and the
	// interface supports several in parallel; add another.
	EnrollmentStatusMulti EnrollmentStatus = "multi"
	// EnrollmentStatusRotation means a prior enrollment exists and is
	// replaced in place, keeping its identifier.
	EnrollmentStatusRotation EnrollmentStatus = "rotation"
)

// Capabilities declares how an interface behaves when the user already
// has it enrolled. At most one of the allow flags is expected to be
// set per interface.
type Capabilities struct {
	AllowMultiEnrollment  bool
	AllowRotationInPlace  bool
	DisallowNewEnrollment bool
}

// FormField describes one input the client must render for the
// interface's enrollment form.
type FormField struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// Authenticator is a persisted second-factor enrollment.
type Authenticator struct {
	Id          string
	UserId      string
	Kind        Kind
	Secret      string
	PhoneNumber string
	Credential  []byte
	DeviceName  string
	CreatedAt   time.Time
	VerifiedAt  *time.Time
}
