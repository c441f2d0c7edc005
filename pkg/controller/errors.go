package controller

import "errors"

// Sentinel errors mirroring the controller service's error codes;
// consistency is asserted by pkg/controller/tests.
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
)

var knownErrors = []error{
	ErrorAuthRequired,
	ErrorInvalidInput,
	ErrorInvalidCredentials,
	ErrorDatabaseIssue,
	ErrorAlreadyEnrolled,
	ErrorUnknownInterface,
	ErrorEnrollmentForbidden,
	ErrorRateLimited,
	ErrorSmsDeliveryFailed,
	ErrorInsufficientScope,
	ErrorMemberNotFound,
}

func errorByCode(code string) error {
	for _, knownError := range knownErrors {
		if knownError.Error() == code {
			return knownError
		}
	}
	return ErrorGeneric
}
