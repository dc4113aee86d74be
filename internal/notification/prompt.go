package notification

import (
	"encoding/json"
	"fmt"
	"strings"

	"legatum/internal/interpret"
)

// buildNotificationPrompt renders the drafting request for one interpreted
// policy. The JSON structure in the prompt matches the Notification tags.
func buildNotificationPrompt(interpretation interpret.Interpretation, info DeceasedInfo, reqs PlatformRequirements) string {
	structuredActions, _ := json.MarshalIndent(interpretation.StructuredActions, "", "  ")
	if interpretation.StructuredActions == nil {
		structuredActions = []byte("[]")
	}

	var b strings.Builder
	fmt.Fprintf(&b, `Generate a professional notification for %s to %s the account of a deceased person.

Deceased Person Information:
- Full Name: %s
- Date of Death: %s
- Account Identifier: %s

Requested Action: %s
Platform Requirements:
- Required Documents: %s
- Contact Method: %s
- Special Instructions: %s

Policy Details:
%s

`,
		interpretation.PlatformName,
		interpretation.ActionType,
		info.FullName,
		info.DateOfDeath,
		interpretation.AccountIdentifier,
		interpretation.ActionType,
		strings.Join(reqs.RequiredDocs, ", "),
		strings.Join(reqs.ContactMethods, ", "),
		strings.Join(reqs.SpecialRequirements, "; "),
		structuredActions,
	)

	b.WriteString(`Please generate a formal notification with the following JSON structure:
{
    "subject": "Professional email subject line",
    "body": "Formal notification body with all required information",
    "required_documents": ["list", "of", "required", "documents"],
    "contact_information": "Contact details for follow-up",
    "delivery_method": "email/form/phone/mail",
    "urgency_level": "normal/high/urgent",
    "follow_up_timeline": "Expected response timeframe",
    "additional_notes": "Any special considerations or instructions"
}

The notification should be:
1. Professional and respectful in tone
2. Include all necessary legal and identification information
3. Reference the specific account and requested action
4. List all required documentation
5. Provide clear next steps and contact information
6. Follow platform-specific procedures when known

Respond only with valid JSON.`)
	return b.String()
}
