package auth

import "errors"

var (
	ErrorInvalidToken   = errors.New("invalid_token")
	ErrorExpiredToken   = errors.New("expired_token")
	ErrorOtpMismatch    = errors.New("otp_mismatch")
	ErrorOtpNotIssued   = errors.New("otp_not_issued")
	ErrorSmsUnavailable = errors.New("sms_unavailable")
)
