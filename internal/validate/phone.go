package validate

import "regexp"

// E.164: a leading plus followed by up to 15 digits
var phoneRegex = regexp.MustCompile(`^\+[1-9][0-9]{4,14}$`)

func PhoneNumber(phoneNumber string) error {
	if phoneNumber == "" {
		return ErrorPhoneNumberMissing
	}
	if !phoneRegex.MatchString(phoneNumber) {
		return ErrorPhoneNumberInvalid
	}
	return nil
}
