// Package validators holds the field-level predicates used by candidate
// intake and the shared go-playground validator that exposes them as tags.
package validators

import (
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

const (
	NameMinLen     = 2
	NameMaxLen     = 50
	PhoneMinDigits = 7
	PhoneMaxDigits = 15
)

var (
	nameRe  = regexp.MustCompile(`^[\p{L}\p{M} '\-]+$`)
	phoneRe = regexp.MustCompile(`^\+?[0-9 ()\-]+$`)

	dateLayouts = []string{
		"2006-01-02",
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
	}
)

// IsValidName accepts 2-50 letters (accented included), spaces, hyphens and apostrophes.
func IsValidName(s string) bool {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	if n < NameMinLen || n > NameMaxLen {
		return false
	}
	if !nameRe.MatchString(s) {
		return false
	}
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

// IsValidEmail checks the local@domain.tld shape after trimming.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if shared().Var(s, "email") != nil {
		return false
	}
	at := strings.LastIndex(s, "@")
	domain := s[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && len(domain)-dot-1 >= 2
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsValidPhone accepts an optional leading + followed by digits and
// space, hyphen or parenthesis separators, with 7 to 15 digits.
func IsValidPhone(s string) bool {
	s = strings.TrimSpace(s)
	if !phoneRe.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= PhoneMinDigits && digits <= PhoneMaxDigits
}

// IsValidURL reports whether s is an absolute URL with scheme and host.
func IsValidURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || shared().Var(s, "url") != nil {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// IsValidDate reports whether s parses as a calendar date.
func IsValidDate(s string) bool {
	_, ok := ParseDate(s)
	return ok
}

// ParseDate parses YYYY-MM-DD or an RFC 3339 timestamp and returns the UTC calendar day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}
