package domain

import (
	"time"

	id "legatum/pkg/domain"
)

// UserStatus tracks the lifecycle of a registered user.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusDeceased  UserStatus = "deceased"
	UserStatusSuspended UserStatus = "suspended"
)

// VerificationStatus tracks KYC and trusted-contact verification.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// UserProfile is the registered account holder. The core pipeline reads the
// profile to cross-check certificate data; KYC field validation and
// credential encryption are owned by the registration service.
type UserProfile struct {
	UserID      id.UserID
	Email       string
	PhoneNumber string
	FullName    string
	DateOfBirth time.Time

	KYCStatus     VerificationStatus
	PhoneVerified VerificationStatus
	EmailVerified VerificationStatus

	Status    UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TrustedContact is a third party pre-authorized by the user to submit
// death verification on their behalf.
type TrustedContact struct {
	ContactID          string
	UserID             id.UserID
	FullName           string
	Email              string
	Relationship       string
	VerificationStatus VerificationStatus
	CreatedAt          time.Time
}

// CanSubmitVerification reports whether this contact may trigger death
// verification for its user.
func (c TrustedContact) CanSubmitVerification() bool {
	return c.VerificationStatus == VerificationVerified
}
