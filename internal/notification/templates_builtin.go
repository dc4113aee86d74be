package notification

// builtinTemplates ships the formats for the platforms most frequently named
// in policies. The generic set covers everything else; platform/action pairs
// absent from both route to model generation.
var builtinTemplates = map[templateKey]Template{
	{Platform: "google", Action: "delete", Type: TemplateEmail}: {
		Subject: "Request for Account Closure - {full_name} (Deceased)",
		Body: `Dear Google Account Support,

I am writing to request the closure of a Google account belonging to {full_name}, who passed away on {date_of_death}.

Account Information:
- Account Holder: {full_name}
- Email Address: {account_identifier}
- Date of Death: {date_of_death}

I am {relationship} and am authorized to handle the digital affairs of the deceased. I am requesting that this account be permanently deleted in accordance with the deceased person's wishes.

Required Documentation:
I have attached the following required documentation:
- Certified copy of death certificate
- My identification as the authorized representative
- Google account recovery information (if available)

Please confirm receipt of this request and provide information about the account closure process and timeline.

Thank you for your assistance during this difficult time.

Sincerely,
{contact_name}
{relationship} of {full_name}
{contact_email}
{contact_phone}

Date: {current_date}`,
		RequiredDocs:   []string{"death_certificate", "id_verification", "account_recovery_info"},
		DeliveryMethod: TemplateEmail,
	},
	{Platform: "google", Action: "memorialize", Type: TemplateEmail}: {
		Subject: "Request for Account Memorialization - {full_name} (Deceased)",
		Body: `Dear Google Account Support,

I am writing to request the memorialization of a Google account belonging to {full_name}, who passed away on {date_of_death}.

Account Information:
- Account Holder: {full_name}
- Email Address: {account_identifier}
- Date of Death: {date_of_death}

I am {relationship} and am authorized to handle the digital affairs of the deceased. I am requesting that this account be converted to a memorial account to preserve the digital legacy of the deceased.

Required Documentation:
I have attached the following required documentation:
- Certified copy of death certificate
- My identification and proof of relationship to the deceased
- Google account recovery information (if available)

Please provide information about the memorialization process and any additional steps required.

Thank you for your assistance.

Sincerely,
{contact_name}
{relationship} of {full_name}
{contact_email}
{contact_phone}

Date: {current_date}`,
		RequiredDocs:   []string{"death_certificate", "relationship_proof", "account_recovery_info"},
		DeliveryMethod: TemplateEmail,
	},
	{Platform: "facebook", Action: "delete", Type: TemplateForm}: {
		Subject: "Request for Account Deletion - {full_name} (Deceased)",
		Body: `I am submitting a request for the deletion of a Facebook account belonging to {full_name}, who passed away on {date_of_death}.

Account Information:
- Account Holder: {full_name}
- Profile URL/Email: {account_identifier}
- Date of Death: {date_of_death}

The deceased person specifically requested that their Facebook account be deleted after their death. I am {relationship} and have the authority to make this request.

I have attached the required documentation including the death certificate and proof of my relationship to the deceased.

Please process this deletion request and confirm when the account has been permanently removed.

Contact Information:
{contact_name}
{contact_email}
{contact_phone}`,
		RequiredDocs:   []string{"death_certificate", "relationship_proof"},
		DeliveryMethod: TemplateForm,
		FormURL:        "https://www.facebook.com/help/contact/228813257197480",
	},
	{Platform: "facebook", Action: "memorialize", Type: TemplateForm}: {
		Subject: "Request for Account Memorialization - {full_name} (Deceased)",
		Body: `I am submitting a request for the memorialization of a Facebook account belonging to {full_name}, who passed away on {date_of_death}.

Account Information:
- Account Holder: {full_name}
- Profile URL/Email: {account_identifier}
- Date of Death: {date_of_death}

I would like to request that this account be converted to a memorial account to honor the memory of the deceased. I am {relationship} and have the authority to make this request.

I have attached the required documentation including the death certificate and proof of my relationship to the deceased.

Please provide information about the memorialization process and timeline.

Contact Information:
{contact_name}
{contact_email}
{contact_phone}`,
		RequiredDocs:   []string{"death_certificate", "relationship_proof"},
		DeliveryMethod: TemplateForm,
		FormURL:        "https://www.facebook.com/help/contact/228813257197480",
	},
	{Platform: "chase_bank", Action: "lock", Type: TemplateEmail}: {
		Subject: "Estate Services - Account Security Request for {full_name} (Deceased)",
		Body: `Dear Chase Estate Services,

I am writing to notify you of the death of {full_name} and to request that their banking accounts be secured immediately.

Deceased Account Holder Information:
- Full Name: {full_name}
- Date of Death: {date_of_death}
- Account Number/Identifier: {account_identifier}

I am {relationship} and am the authorized representative for the estate. I am requesting that all accounts be frozen to prevent unauthorized access while estate matters are being resolved.

Required Documentation:
I have attached the following required documentation:
- Certified copy of death certificate
- Estate documentation (will, probate court appointment, etc.)
- My identification as the authorized representative

Please confirm that the accounts have been secured and provide information about the next steps in the estate process.

Contact Information for Follow-up:
{contact_name}
{relationship} of {full_name}
Email: {contact_email}
Phone: {contact_phone}
Address: {contact_address}

Thank you for your prompt attention to this matter.

Sincerely,
{contact_name}

Date: {current_date}`,
		RequiredDocs:   []string{"death_certificate", "estate_documents", "id_verification"},
		DeliveryMethod: TemplateEmail,
	},
	{Platform: "chase_bank", Action: "delete", Type: TemplateEmail}: {
		Subject: "Estate Services - Account Closure Request for {full_name} (Deceased)",
		Body: `Dear Chase Estate Services,

I am writing to notify you of the death of {full_name} and to request the closure of their banking accounts.

Deceased Account Holder Information:
- Full Name: {full_name}
- Date of Death: {date_of_death}
- Account Number/Identifier: {account_identifier}

I am {relationship} and am the authorized representative for the estate. I am requesting that all accounts be closed and funds be handled according to estate procedures.

Required Documentation:
I have attached the following required documentation:
- Certified copy of death certificate
- Estate documentation (will, letters testamentary, etc.)
- My identification as the authorized representative
- Tax identification number for the estate (if applicable)

Please contact me to discuss the account closure process, fund distribution, and any additional requirements.

Contact Information:
{contact_name}
{relationship} of {full_name}
Email: {contact_email}
Phone: {contact_phone}
Address: {contact_address}

Thank you for your assistance.

Sincerely,
{contact_name}

Date: {current_date}`,
		RequiredDocs:   []string{"death_certificate", "estate_documents", "id_verification"},
		DeliveryMethod: TemplateEmail,
	},
	{Platform: "generic", Action: "delete", Type: TemplateEmail}: {
		Subject: "Death Notification - Account Deletion Request for {full_name}",
		Body: `Dear {platform_name} Customer Service,

I am writing to notify you of the death of {full_name} and to request that their account be deleted.

Account Information:
- Account Holder: {full_name}
- Account Identifier: {account_identifier}
- Date of Death: {date_of_death}

I am {relationship} and am authorized to handle the digital affairs of the deceased. The deceased person requested that their {platform_name} account be permanently deleted.

I have attached the required documentation as per your platform's procedures. Please let me know if you need any additional information or documentation.

Thank you for your assistance during this difficult time.

Sincerely,
{contact_name}
{contact_email}
{contact_phone}

Date: {current_date}`,
		RequiredDocs:   []string{"death_certificate", "id_verification"},
		DeliveryMethod: TemplateEmail,
	},
	{Platform: "generic", Action: "memorialize", Type: TemplateEmail}: {
		Subject: "Death Notification - Account Memorialization Request for {full_name}",
		Body: `Dear {platform_name} Customer Service,

I am writing to notify you of the death of {full_name} and to request that their account be memorialized.

Account Information:
- Account Holder: {full_name}
- Account Identifier: {account_identifier}
- Date of Death: {date_of_death}

I am {relationship} and am authorized to handle the digital affairs of the deceased. I would like to request that this account be converted to a memorial account to preserve the digital legacy of the deceased.

I have attached the required documentation as per your platform's procedures. Please provide information about your memorialization process and any additional steps required.

Thank you for your assistance.

Sincerely,
{contact_name}
{contact_email}
{contact_phone}

Date: {current_date}`,
		RequiredDocs:   []string{"death_certificate", "relationship_proof"},
		DeliveryMethod: TemplateEmail,
	},
}
