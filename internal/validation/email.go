package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// EmailChecker validates institutional email addresses of the form
// first.last@domain and derives display names from them.
type EmailChecker struct {
	domain string
	regex  *regexp.Regexp
}

// NewEmailChecker creates a checker for addresses at the given domain
func NewEmailChecker(domain string) *EmailChecker {
	pattern := fmt.Sprintf(`^([\w\d\-]+)\.([\w\d\-]+)@%s$`, regexp.QuoteMeta(domain))
	return &EmailChecker{
		domain: domain,
		regex:  regexp.MustCompile(pattern),
	}
}

// Check reports whether the email is an individual address at the
// institutional domain
func (c *EmailChecker) Check(email string) bool {
	return c.regex.MatchString(email)
}

// FullName derives (first, last) from the email local-part, capitalized.
// Emails that do not match the institutional form yield the raw address as
// the first name and an empty last name.
func (c *EmailChecker) FullName(email string) (string, string) {
	match := c.regex.FindStringSubmatch(email)
	if match == nil {
		return email, ""
	}
	return capitalize(match[1]), capitalize(match[2])
}

// SafeEmail returns the URL-safe percent-encoded form of an email address,
// usable as a path segment.
func SafeEmail(email string) string {
	return url.QueryEscape(email)
}

// UnsafeEmail reverses SafeEmail. Invalid encodings return the input
// unchanged so lookups simply miss.
func UnsafeEmail(safeEmail string) string {
	email, err := url.QueryUnescape(safeEmail)
	if err != nil {
		return safeEmail
	}
	return email
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
