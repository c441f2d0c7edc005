package validate

import (
	"regexp"
	"strings"
)

var domainRegex = regexp.MustCompile(
	`^(?i:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)(?:\.(?i:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?))*\.[a-z]{2,}$`,
)

func Email(email string) error {
	if len(email) <= 3 {
		return ErrorEmailMissing
	}
	at := strings.IndexByte(email, '@')
	if at <= 0 || at != strings.LastIndexByte(email, '@') {
		return ErrorEmailInvalidAt
	}
	domain := email[at+1:]
	if !domainRegex.MatchString(domain) {
		return ErrorEmailDomainInvalid
	}
	return nil
}
