package notification

import "strings"

// ContactInfo holds the channels a platform publishes for deceased-account
// requests.
type ContactInfo struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	FormURL string `json:"form_url,omitempty"`
}

// Line renders the contact channels as a single human-readable string.
func (c ContactInfo) Line() string {
	var parts []string
	if c.Email != "" {
		parts = append(parts, "Email: "+c.Email)
	}
	if c.Phone != "" {
		parts = append(parts, "Phone: "+c.Phone)
	}
	if c.Address != "" {
		parts = append(parts, "Address: "+c.Address)
	}
	if c.FormURL != "" {
		parts = append(parts, "Online Form: "+c.FormURL)
	}
	if len(parts) == 0 {
		return "Contact customer service"
	}
	return strings.Join(parts, " | ")
}

// PlatformRequirements describes what a platform demands before it will act
// on a death notification.
type PlatformRequirements struct {
	RequiredDocs        []string    `json:"required_docs"`
	ContactMethods      []string    `json:"contact_methods"`
	SpecialRequirements []string    `json:"special_requirements"`
	ProcessingTime      string      `json:"processing_time"`
	Contact             ContactInfo `json:"contact_info"`
}

// platformRequirements is the registry of known platform procedures.
// Sourced from each platform's published deceased-account process.
var platformRequirements = map[string]PlatformRequirements{
	"google": {
		RequiredDocs:        []string{"death_certificate", "id_verification", "account_recovery_info"},
		ContactMethods:      []string{"email", "form"},
		SpecialRequirements: []string{"Google account recovery information required"},
		ProcessingTime:      "2-4 weeks",
		Contact: ContactInfo{
			Email:   "accounts-support@google.com",
			FormURL: "https://support.google.com/accounts/contact/deceased",
		},
	},
	"facebook": {
		RequiredDocs:        []string{"death_certificate", "relationship_proof"},
		ContactMethods:      []string{"form"},
		SpecialRequirements: []string{"Must use Facebook memorialization request form"},
		ProcessingTime:      "1-2 weeks",
		Contact: ContactInfo{
			FormURL: "https://www.facebook.com/help/contact/228813257197480",
		},
	},
	"instagram": {
		RequiredDocs:        []string{"death_certificate", "relationship_proof"},
		ContactMethods:      []string{"form"},
		SpecialRequirements: []string{"Must use Instagram memorialization request form"},
		ProcessingTime:      "1-2 weeks",
		Contact: ContactInfo{
			FormURL: "https://help.instagram.com/contact/1474899482730688",
		},
	},
	"twitter": {
		RequiredDocs:        []string{"death_certificate", "id_verification"},
		ContactMethods:      []string{"email", "form"},
		SpecialRequirements: []string{"Use Twitter deactivation request process"},
		ProcessingTime:      "1-3 weeks",
		Contact: ContactInfo{
			Email:   "support@twitter.com",
			FormURL: "https://help.twitter.com/forms/privacy",
		},
	},
	"linkedin": {
		RequiredDocs:        []string{"death_certificate", "relationship_proof"},
		ContactMethods:      []string{"form"},
		SpecialRequirements: []string{"Use LinkedIn memorial request form"},
		ProcessingTime:      "1-2 weeks",
		Contact: ContactInfo{
			FormURL: "https://www.linkedin.com/help/linkedin/answer/2842",
		},
	},
	"chase_bank": {
		RequiredDocs:        []string{"death_certificate", "estate_documents", "id_verification"},
		ContactMethods:      []string{"phone", "mail", "email"},
		SpecialRequirements: []string{"Contact estate services department", "Executor documentation required"},
		ProcessingTime:      "2-6 weeks",
		Contact: ContactInfo{
			Phone:   "1-800-935-9935",
			Email:   "estate.services@chase.com",
			Address: "Chase Estate Services, P.O. Box 36520, Louisville, KY 40233",
		},
	},
	"wells_fargo": {
		RequiredDocs:        []string{"death_certificate", "estate_documents", "id_verification"},
		ContactMethods:      []string{"phone", "mail", "email"},
		SpecialRequirements: []string{"Contact estate services department", "Probate documentation may be required"},
		ProcessingTime:      "2-6 weeks",
		Contact: ContactInfo{
			Phone: "1-800-869-3557",
			Email: "estate.services@wellsfargo.com",
		},
	},
	"bank_of_america": {
		RequiredDocs:        []string{"death_certificate", "estate_documents", "id_verification"},
		ContactMethods:      []string{"phone", "mail", "email"},
		SpecialRequirements: []string{"Contact estate administration services", "Legal documentation required"},
		ProcessingTime:      "3-8 weeks",
		Contact: ContactInfo{
			Phone: "1-800-432-1000",
			Email: "estate.administration@bankofamerica.com",
		},
	},
	"apple": {
		RequiredDocs:        []string{"death_certificate", "court_order"},
		ContactMethods:      []string{"email", "form"},
		SpecialRequirements: []string{"Apple requires court order for account access", "Legal process required"},
		ProcessingTime:      "4-12 weeks",
		Contact: ContactInfo{
			Email:   "privacy@apple.com",
			FormURL: "https://privacy.apple.com/contact",
		},
	},
	"microsoft": {
		RequiredDocs:        []string{"death_certificate", "id_verification"},
		ContactMethods:      []string{"form", "email"},
		SpecialRequirements: []string{"Use Microsoft account closure request"},
		ProcessingTime:      "2-4 weeks",
		Contact: ContactInfo{
			FormURL: "https://account.microsoft.com/profile/contact-info",
		},
	},
}

// normalizePlatform lowercases a platform name and folds product names onto
// their operator (a gmail policy follows Google's process).
func normalizePlatform(platform string) string {
	key := strings.ToLower(strings.TrimSpace(platform))
	if key == "gmail" {
		return "google"
	}
	return key
}

// RequirementsFor returns the registered requirements for a platform, or a
// conservative default for platforms the registry does not know.
func RequirementsFor(platform string) PlatformRequirements {
	if reqs, ok := platformRequirements[normalizePlatform(platform)]; ok {
		return reqs
	}
	return PlatformRequirements{
		RequiredDocs:        []string{"death_certificate"},
		ContactMethods:      []string{"email"},
		SpecialRequirements: []string{"Contact customer service"},
		ProcessingTime:      "2-4 weeks",
	}
}
