package verification

import "time"

// CertificateData holds the fields parsed from a death certificate's OCR
// text, with an additive confidence score reflecting which fields were found.
type CertificateData struct {
	FullName        string  `json:"full_name"`
	DateOfDeath     string  `json:"date_of_death"`
	CertificateID   string  `json:"certificate_id"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// ValidationResult reports format-level problems with parsed certificate
// data. Errors block verification; warnings do not.
type ValidationResult struct {
	IsValid  bool     `json:"is_valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// NameMatch reports the outcome of fuzzy-matching the certificate name
// against the profile name.
type NameMatch struct {
	IsMatch             bool    `json:"is_match"`
	SimilarityScore     float64 `json:"similarity_score"`
	CharacterSimilarity float64 `json:"character_similarity"`
	WordMatchRatio      float64 `json:"word_match_ratio"`
	ExtractedNormalized string  `json:"extracted_normalized"`
	ProfileNormalized   string  `json:"profile_normalized"`
	Error               string  `json:"error,omitempty"`
}

// DateValidation reports whether a certificate date parses and is plausible.
type DateValidation struct {
	IsValid    bool      `json:"is_valid"`
	Error      string    `json:"error,omitempty"`
	ParsedDate time.Time `json:"parsed_date,omitzero"`
}

// Details bundles everything the matcher looked at, returned to callers and
// recorded in the audit trail.
type Details struct {
	NameMatch          NameMatch      `json:"name_match"`
	DateValidation     DateValidation `json:"date_validation"`
	CertificateID      string         `json:"certificate_id"`
	VerificationPassed bool           `json:"verification_passed"`
}

// ProcessResult is the outcome of the OCR and parse stage.
type ProcessResult struct {
	Status               string           `json:"status"`
	ErrorMessage         string           `json:"error_message,omitempty"`
	ExtractedData        *CertificateData `json:"extracted_data"`
	ValidationResult     *ValidationResult `json:"validation_result,omitempty"`
	RawText              string           `json:"raw_text,omitempty"`
	RequiresManualReview bool             `json:"requires_manual_review,omitempty"`
	RetryAfter           time.Duration    `json:"retry_after,omitempty"`
}

// VerifyResult is the outcome of cross-referencing extracted data against
// the user profile.
type VerifyResult struct {
	Status       string   `json:"status"`
	Message      string   `json:"message,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Details      *Details `json:"verification_details"`
}

// Status values shared by ProcessResult and VerifyResult.
const (
	StatusSuccess            = "success"
	StatusError              = "error"
	StatusServiceUnavailable = "service_unavailable"
	StatusVerificationFailed = "verification_failed"
)
