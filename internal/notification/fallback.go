package notification

import (
	"fmt"

	"legatum/internal/interpret"
)

// fallback builds a static notification when model generation is
// unavailable. It is deliberately conservative and always flagged for
// review before delivery.
func (g *Generator) fallback(interpretation interpret.Interpretation, info DeceasedInfo, reqs PlatformRequirements) Notification {
	action := titleWord(interpretation.ActionType)
	body := fmt.Sprintf(`Dear %s Customer Service,

I am writing to notify you of the death of %s and to request that their account be %sd according to their wishes.

Account Information:
- Account Holder: %s
- Account Identifier: %s
- Date of Death: %s

Requested Action: %s the account

I have attached the required documentation as per your platform's procedures. Please let me know if you need any additional information or documentation.

Thank you for your assistance during this difficult time.

Sincerely,
[Trusted Contact Name]
[Contact Information]`,
		interpretation.PlatformName,
		info.FullName,
		interpretation.ActionType,
		info.FullName,
		interpretation.AccountIdentifier,
		info.DateOfDeath,
		action,
	)

	return Notification{
		Subject:            fmt.Sprintf("Death Notification - Account %s Request for %s", action, info.FullName),
		Body:               body,
		RequiredDocuments:  reqs.RequiredDocs,
		ContactInformation: "Please provide trusted contact information",
		DeliveryMethod:     preferredDeliveryMethod(reqs.ContactMethods),
		UrgencyLevel:       UrgencyNormal,
		FollowUpTimeline:   defaultFollowUpTimeline,
		AdditionalNotes:    "This is a fallback notification - manual review recommended",
		Fallback:           true,
	}
}

// preferredDeliveryMethod picks the first contact method the dispatcher can
// actually drive; phone and mail channels need a human.
func preferredDeliveryMethod(contactMethods []string) string {
	for _, method := range contactMethods {
		if validDeliveryMethods[method] {
			return method
		}
	}
	return TemplateEmail
}
