// Package validate holds input validators for values that cross the
// API boundary.
package validate

import "errors"

var (
	ErrorEmailMissing       = errors.New("email_missing")
	ErrorEmailInvalidAt     = errors.New("email_invalid_at")
	ErrorEmailDomainInvalid = errors.New("email_domain_invalid")

	ErrorPhoneNumberMissing = errors.New("phone_number_missing")
	ErrorPhoneNumberInvalid = errors.New("phone_number_invalid")

	ErrorInvalidUuid = errors.New("invalid_uuid")
)
