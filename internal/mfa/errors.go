package mfa

import "errors"

var (
	ErrorUnknownInterface        = errors.New("unknown_interface")
	ErrorAlreadyEnrolled         = errors.New("already_enrolled")
	ErrorNewEnrollmentDisallowed = errors.New("new_enrollment_disallowed")
	ErrorInvalidOtp              = errors.New("invalid_otp")
	ErrorInvalidAuthState        = errors.New("invalid_auth_state")
	ErrorInvalidAttestation      = errors.New("invalid_attestation")
	ErrorPhoneNumberRequired     = errors.New("phone_number_required")
	ErrorSmsSendFailed           = errors.New("sms_send_failed")
	ErrorSmsRateLimited          = errors.New("sms_rate_limited")
	ErrorRateLimited             = errors.New("enroll_rate_limited")
)
