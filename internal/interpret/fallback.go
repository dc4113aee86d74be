package interpret

import (
	"fmt"

	"legatum/internal/domain"
)

// fallbackConfidence is assigned when the model could not produce a usable
// interpretation. It sits below the review threshold, so every fallback is
// routed to manual review.
const fallbackConfidence = 0.5

// newFallbackInterpretation builds a conservative plan from the policy's own
// fields when AI interpretation fails. It always requires manual review.
func newFallbackInterpretation(policy domain.ActionPolicy) Interpretation {
	return Interpretation{
		ActionType:        string(policy.ActionType),
		PlatformName:      policy.PlatformName,
		AccountIdentifier: policy.AccountIdentifier,
		Confidence:        fallbackConfidence,
		StructuredActions: []string{
			fmt.Sprintf("Contact %s customer service", policy.PlatformName),
			fmt.Sprintf("Request %s action for account %s", policy.ActionType, policy.AccountIdentifier),
			"Provide death certificate and identification",
			"Follow platform-specific procedures",
		},
		RequiredDocumentation: []string{"death_certificate", "id_verification"},
		EstimatedTimeline:     "2-4 weeks",
		PotentialIssues: []string{
			"May require additional documentation",
			"Platform-specific procedures may vary",
		},
		RequiresManualReview: true,
		AmbiguityFlags:       []string{"AI interpretation failed - manual review required"},
		Fallback:             true,
	}
}
