package verification

import (
	"strings"
	"time"
)

// dateLayouts are tried in order; the first successful parse wins. US-style
// month-first layouts come before day-first because certificates in the
// primary market use them.
var dateLayouts = []string{
	"01/02/2006",
	"01-02-2006",
	"01/02/06",
	"01-02-06",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02",
	"2006/01/02",
}

// maxDeathAgeYears bounds how far in the past a plausible death date can be.
const maxDeathAgeYears = 150

// ValidateDeathDate parses a certificate date string and checks it is
// plausible: not in the future and not older than 150 years.
func ValidateDeathDate(dateString string) DateValidation {
	return validateDeathDateAt(dateString, time.Now())
}

func validateDeathDateAt(dateString string, now time.Time) DateValidation {
	trimmed := strings.TrimSpace(dateString)
	if trimmed == "" {
		return DateValidation{Error: "Date string is empty"}
	}

	var parsed time.Time
	var ok bool
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			parsed = t
			ok = true
			break
		}
	}
	if !ok {
		return DateValidation{Error: "Unable to parse date format: " + trimmed}
	}

	today := now.Truncate(24 * time.Hour)
	if parsed.After(today) {
		return DateValidation{Error: "Death date cannot be in the future", ParsedDate: parsed}
	}

	minDate := time.Date(now.Year()-maxDeathAgeYears, time.January, 1, 0, 0, 0, 0, time.UTC)
	if parsed.Before(minDate) {
		return DateValidation{Error: "Death date is too far in the past", ParsedDate: parsed}
	}

	return DateValidation{IsValid: true, ParsedDate: parsed}
}
