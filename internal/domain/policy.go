package domain

import (
	"strings"
	"time"

	id "legatum/pkg/domain"
)

// ActionType is the post-mortem action a policy requests for an asset.
type ActionType string

const (
	ActionDelete      ActionType = "delete"
	ActionMemorialize ActionType = "memorialize"
	ActionTransfer    ActionType = "transfer"
	ActionLock        ActionType = "lock"
)

// ParseActionType normalizes and validates an action type string.
func ParseActionType(s string) (ActionType, bool) {
	switch ActionType(strings.ToLower(strings.TrimSpace(s))) {
	case ActionDelete:
		return ActionDelete, true
	case ActionMemorialize:
		return ActionMemorialize, true
	case ActionTransfer:
		return ActionTransfer, true
	case ActionLock:
		return ActionLock, true
	default:
		return "", false
	}
}

// ActionPolicy is a user-authored rule for one digital asset. The core reads
// policies; authoring and encrypted persistence belong to the vault service.
// Every caller shares this one shape — ad hoc policy-like structs are not
// allowed.
type ActionPolicy struct {
	PolicyID          id.PolicyID
	UserID            id.UserID
	AssetType         string
	PlatformName      string
	AccountIdentifier string
	ActionType        ActionType
	Priority          int

	NaturalLanguagePolicy string
	SpecificInstructions  string
	Conditions            []string

	CreatedAt time.Time
}

// PolicyText returns the natural-language policy, synthesizing a minimal one
// when the user never wrote free text.
func (p ActionPolicy) PolicyText() string {
	if p.NaturalLanguagePolicy != "" {
		return p.NaturalLanguagePolicy
	}
	return string(p.ActionType) + " my " + p.PlatformName + " account"
}
