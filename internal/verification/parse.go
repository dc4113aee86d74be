package verification

import (
	"regexp"
	"strings"
)

// Certificate field patterns. OCR text is uppercased and flattened to one
// line before matching, so the patterns only deal with uppercase input.
var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`NAME[:\s]+([A-Z\s,\.]+?)(?:\s+DATE|$)`),
		regexp.MustCompile(`DECEDENT[:\s]+([A-Z\s,\.]+?)(?:\s+DATE|$)`),
		regexp.MustCompile(`DECEASED[:\s]+([A-Z\s,\.]+?)(?:\s+DATE|$)`),
		regexp.MustCompile(`FULL NAME[:\s]+([A-Z\s,\.]+?)(?:\s+DATE|$)`),
	}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`DATE OF DEATH[:\s]+(\d{1,2}[\/\-]\d{1,2}[\/\-]\d{2,4})`),
		regexp.MustCompile(`DEATH DATE[:\s]+(\d{1,2}[\/\-]\d{1,2}[\/\-]\d{2,4})`),
		regexp.MustCompile(`DIED[:\s]+(\d{1,2}[\/\-]\d{1,2}[\/\-]\d{2,4})`),
		regexp.MustCompile(`(\d{1,2}[\/\-]\d{1,2}[\/\-]\d{2,4})`),
	}

	idPatterns = []*regexp.Regexp{
		regexp.MustCompile(`CERTIFICATE\s+(?:NO|NUMBER|ID)[:\s]+([A-Z0-9\-]+)`),
		regexp.MustCompile(`CERT\s+(?:NO|NUMBER|ID)[:\s]+([A-Z0-9\-]+)`),
		regexp.MustCompile(`ID[:\s]+([A-Z0-9\-]{5,})`),
		regexp.MustCompile(`NUMBER[:\s]+([A-Z0-9\-]{5,})`),
	}

	titleWords = regexp.MustCompile(`\b(MR|MRS|MS|DR|PROF)\b\.?`)
	multiSpace = regexp.MustCompile(`\s+`)
)

// Confidence contribution per extracted field.
const (
	nameConfidence = 0.5
	dateConfidence = 0.3
	idConfidence   = 0.2
)

// minimum lengths that separate real values from OCR noise
const (
	minNameLen   = 4
	minCertIDLen = 5
)

// ParseCertificate extracts the decedent name, date of death, and
// certificate number from raw OCR text. Missing fields stay empty and lower
// the confidence score.
func ParseCertificate(text string) CertificateData {
	var data CertificateData

	normalized := strings.ToUpper(text)
	normalized = strings.NewReplacer("\n", " ", "\r", " ").Replace(normalized)

	for _, pattern := range namePatterns {
		match := pattern.FindStringSubmatch(normalized)
		if match == nil {
			continue
		}
		name := strings.Trim(strings.TrimSpace(match[1]), ",.")
		name = multiSpace.ReplaceAllString(name, " ")
		name = strings.TrimSpace(titleWords.ReplaceAllString(name, ""))
		if len(name) >= minNameLen {
			data.FullName = titleCase(name)
			break
		}
	}

	for _, pattern := range datePatterns {
		if match := pattern.FindStringSubmatch(normalized); match != nil {
			data.DateOfDeath = match[1]
			break
		}
	}

	for _, pattern := range idPatterns {
		match := pattern.FindStringSubmatch(normalized)
		if match == nil {
			continue
		}
		certID := strings.TrimSpace(match[1])
		if len(certID) >= minCertIDLen {
			data.CertificateID = certID
			break
		}
	}

	if data.FullName != "" {
		data.ConfidenceScore += nameConfidence
	}
	if data.DateOfDeath != "" {
		data.ConfidenceScore += dateConfidence
	}
	if data.CertificateID != "" {
		data.ConfidenceScore += idConfidence
	}

	return data
}

func titleCase(upper string) string {
	words := strings.Fields(strings.ToLower(upper))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ValidateCertificate checks parsed data for format problems. A low
// confidence score is surfaced as a warning rather than an error so the
// caller can route the case to manual review instead of rejecting it.
func ValidateCertificate(data CertificateData, minConfidence float64) ValidationResult {
	result := ValidationResult{}

	if data.FullName == "" {
		result.Errors = append(result.Errors, "Full name not found in certificate")
	}
	if data.DateOfDeath == "" {
		result.Errors = append(result.Errors, "Date of death not found in certificate")
	} else {
		if dv := ValidateDeathDate(data.DateOfDeath); !dv.IsValid {
			result.Errors = append(result.Errors, "Invalid date format: "+dv.Error)
		}
	}
	if data.ConfidenceScore < minConfidence {
		result.Warnings = append(result.Warnings, "Low confidence in extracted data")
	}

	result.IsValid = len(result.Errors) == 0
	return result
}
