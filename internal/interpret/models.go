package interpret

import (
	"time"

	id "legatum/pkg/domain"
)

// Interpretation is the structured action plan produced for one policy. The
// JSON tags form the contract with the language model; the response must
// deserialize into exactly these fields.
type Interpretation struct {
	ActionType            string   `json:"action_type"`
	PlatformName          string   `json:"platform_name"`
	AccountIdentifier     string   `json:"account_identifier"`
	Confidence            float64  `json:"interpretation_confidence"`
	StructuredActions     []string `json:"structured_actions"`
	RequiredDocumentation []string `json:"required_documentation"`
	EstimatedTimeline     string   `json:"estimated_timeline"`
	PotentialIssues       []string `json:"potential_issues"`
	RequiresManualReview  bool     `json:"requires_manual_review"`
	AmbiguityFlags        []string `json:"ambiguity_flags"`

	// Metadata attached after parsing; not part of the model contract.
	PolicyID            id.PolicyID `json:"policy_id"`
	InterpretedAt       time.Time   `json:"interpretation_timestamp"`
	InterpretationError string      `json:"interpretation_error,omitempty"`
	Fallback            bool        `json:"fallback_interpretation,omitempty"`
	ValidationPassed    bool        `json:"validation_passed"`
	ValidationIssues    []string    `json:"validation_issues,omitempty"`
}
