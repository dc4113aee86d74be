package domain

import (
	"github.com/google/uuid"

	dErrors "legatum/pkg/domain-errors"
)

// Typed IDs prevent cross-entity assignment at compile time. Parse functions
// enforce validity at trust boundaries (HTTP handlers, store lookups).

type UserID uuid.UUID

type PolicyID uuid.UUID

type NotificationID uuid.UUID

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool            { return uuid.UUID(id) == uuid.Nil }
func (id PolicyID) String() string       { return uuid.UUID(id).String() }
func (id PolicyID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) String() string { return uuid.UUID(id).String() }
func (id NotificationID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// The IDs travel through JSON payloads as canonical UUID strings.

func (id UserID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }
func (id PolicyID) MarshalText() ([]byte, error)       { return []byte(id.String()), nil }
func (id NotificationID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// Unmarshaling is lenient about empty and nil values so stored records
// round-trip; the Parse functions stay the strict trust-boundary check.

func (id *UserID) UnmarshalText(data []byte) error {
	parsed, err := lenientUUID(data)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid user id")
	}
	*id = UserID(parsed)
	return nil
}

func (id *PolicyID) UnmarshalText(data []byte) error {
	parsed, err := lenientUUID(data)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid policy id")
	}
	*id = PolicyID(parsed)
	return nil
}

func (id *NotificationID) UnmarshalText(data []byte) error {
	parsed, err := lenientUUID(data)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid notification id")
	}
	*id = NotificationID(parsed)
	return nil
}

func lenientUUID(data []byte) (uuid.UUID, error) {
	if len(data) == 0 {
		return uuid.Nil, nil
	}
	return uuid.Parse(string(data))
}

// NewNotificationID mints a fresh notification identifier.
func NewNotificationID() NotificationID {
	return NotificationID(uuid.New())
}

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is required")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid "+kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be the nil UUID")
	}
	return parsed, nil
}

func ParseUserID(s string) (UserID, error) {
	parsed, err := parseUUID(s, "user id")
	return UserID(parsed), err
}

func ParsePolicyID(s string) (PolicyID, error) {
	parsed, err := parseUUID(s, "policy id")
	return PolicyID(parsed), err
}

func ParseNotificationID(s string) (NotificationID, error) {
	parsed, err := parseUUID(s, "notification id")
	return NotificationID(parsed), err
}
