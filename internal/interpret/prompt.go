package interpret

import (
	"encoding/json"
	"fmt"
	"strings"

	"legatum/internal/domain"
)

const systemPrompt = "You are an AI assistant that interprets digital legacy policies and generates structured action plans. Always respond with valid JSON."

// buildPrompt renders the interpretation request for one policy. The
// numbered field list matches the Interpretation JSON tags.
func buildPrompt(policy domain.ActionPolicy) string {
	conditions, _ := json.Marshal(policy.Conditions)
	if policy.Conditions == nil {
		conditions = []byte("[]")
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Interpret the following digital legacy policy and generate a structured action plan:

Platform: %s
Asset Type: %s
Account Identifier: %s
Requested Action: %s
Priority: %d

Natural Language Policy: %q
Specific Instructions: %q
Conditions: %s

`, policy.PlatformName, policy.AssetType, policy.AccountIdentifier,
		policy.ActionType, policy.Priority,
		policy.PolicyText(), policy.SpecificInstructions, conditions)

	b.WriteString(`Please analyze this policy and respond with a JSON object containing:
1. "action_type": The specific action to take (delete, memorialize, lock, transfer)
2. "platform_name": The platform name (normalized)
3. "account_identifier": The account to act upon
4. "interpretation_confidence": A score from 0.0 to 1.0 indicating confidence in interpretation
5. "structured_actions": A list of specific steps to execute the policy
6. "required_documentation": List of documents needed for the platform
7. "estimated_timeline": Expected time to complete the action
8. "potential_issues": List of potential complications or requirements
9. "requires_manual_review": Boolean indicating if human review is needed
10. "ambiguity_flags": List of any ambiguous aspects that need clarification

Consider platform-specific requirements and procedures. If the policy is ambiguous or conflicting, set "requires_manual_review" to true and explain the issues in "ambiguity_flags".

Respond only with valid JSON.`)
	return b.String()
}
