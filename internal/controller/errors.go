package controller

import "errors"

var (
	ErrorAuthRequired        = errors.New("auth_required")
	ErrorInvalidInput        = errors.New("invalid_input")
	ErrorInvalidCredentials  = errors.New("invalid_credentials")
	ErrorDatabaseIssue       = errors.New("database_issue")
	ErrorAlreadyEnrolled     = errors.New("already_enrolled")
	ErrorUnknownInterface    = errors.New("unknown_interface")
	ErrorEnrollmentForbidden = errors.New("enrollment_forbidden")
	ErrorRateLimited         = errors.New("rate_limited")
	ErrorSmsDeliveryFailed   = errors.New("sms_delivery_failed")
	ErrorInsufficientScope   = errors.New("insufficient_scope")
	ErrorMemberNotFound      = errors.New("member_not_found")
	ErrorGeneric             = errors.New("generic_error")

	ErrorInvalidPublicServerUrl    = errors.New("invalid_public_server_url")
	ErrorMissingDatabaseConnection = errors.New("missing_database_connection")
	ErrorMissingServiceLog         = errors.New("missing_service_log")
	ErrorMissingSigningToken       = errors.New("missing_signing_token")
)

// Constant `details` strings returned in error envelopes. Clients
// match on these, so they never change.
const (
	detailsAlreadyEnrolled         = "Already enrolled"
	detailsInvalidOtp              = "Invalid OTP"
	detailsInvalidAuthState        = "Invalid auth state"
	detailsInvalidAttestation      = "Invalid attestation"
	detailsNewEnrollmentDisallowed = "New enrollments for this 2FA interface are not allowed"
	detailsEnrollOnBehalf          = "Cannot enroll on behalf of another user"
	detailsUnknownInterface        = "Unknown 2FA interface"
	detailsRateLimited             = "Rate limited"
	detailsSmsSendFailed           = "Error sending SMS"
	detailsPhoneNumberRequired     = "Phone number is required"
	detailsInvalidMemberId         = "Invalid member ID"
)
