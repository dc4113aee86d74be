// Package email derives display names from email addresses for use in
// generated correspondence when no explicit contact name is available.
package email

import (
	"strings"
	"unicode"
)

// DeriveFullName builds a "First Last" display name from the local part of
// an email address. Single-segment locals get a "User" surname so the
// result always reads like a full name.
func DeriveFullName(addr string) string {
	first, last := DeriveNameFromEmail(addr)
	return first + " " + last
}

// DeriveNameFromEmail splits the local part of an email address on common
// separators and returns capitalized first and last name guesses.
func DeriveNameFromEmail(addr string) (string, string) {
	localPart := addr
	if at := strings.IndexByte(addr, '@'); at > 0 {
		localPart = addr[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
