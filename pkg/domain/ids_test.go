package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "legatum/pkg/domain-errors"
)

// The parse functions guard trust boundaries: IDs must be valid, non-empty,
// non-nil UUIDs.
func TestParseIDs(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParsePolicyID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseNotificationID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		parsed, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), parsed)
		assert.False(t, parsed.IsNil())
	})
}

// Parsing must reject attack vectors at API entry points.
func TestParseID_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE user_profiles;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"Oversized input", strings.Repeat("a", 1000), true},
		{"Unicode zero-width space", "550e8400​-e29b-41d4-a716-446655440000", true},
		{"Empty string", "", true},
		{"Nil UUID", uuid.Nil.String(), true},
		{"Whitespace only", "   ", true},
		{"Uppercase valid UUID", "550E8400-E29B-41D4-A716-446655440000", false},
		{"Valid UUID lowercase", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseUserID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// Inconsistent validation across ID types could create security holes.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String()}

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errUser := ParseUserID(validUUID)
		_, errPolicy := ParsePolicyID(validUUID)
		_, errNotification := ParseNotificationID(validUUID)

		require.NoError(t, errUser)
		require.NoError(t, errPolicy)
		require.NoError(t, errNotification)
	})

	for _, input := range invalidInputs {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errUser := ParseUserID(input)
			_, errPolicy := ParsePolicyID(input)
			_, errNotification := ParseNotificationID(input)

			require.Error(t, errUser)
			require.Error(t, errPolicy)
			require.Error(t, errNotification)
		})
	}
}

func TestNewNotificationID(t *testing.T) {
	first := NewNotificationID()
	second := NewNotificationID()
	assert.False(t, first.IsNil())
	assert.NotEqual(t, first, second)
}

// IDs travel through JSON as canonical UUID strings; stored zero values
// round-trip instead of failing strict trust-boundary validation.
func TestIDJSONRoundTrip(t *testing.T) {
	t.Run("marshals as UUID string", func(t *testing.T) {
		userID := UserID(uuid.New())
		raw, err := json.Marshal(userID)
		require.NoError(t, err)
		assert.Equal(t, `"`+userID.String()+`"`, string(raw))
	})

	t.Run("unmarshal round trips", func(t *testing.T) {
		original := NewNotificationID()
		raw, err := json.Marshal(original)
		require.NoError(t, err)

		var decoded NotificationID
		require.NoError(t, json.Unmarshal(raw, &decoded))
		assert.Equal(t, original, decoded)
	})

	t.Run("unmarshal accepts nil UUID", func(t *testing.T) {
		var decoded PolicyID
		require.NoError(t, json.Unmarshal([]byte(`"`+uuid.Nil.String()+`"`), &decoded))
		assert.True(t, decoded.IsNil())
	})

	t.Run("unmarshal rejects garbage", func(t *testing.T) {
		var decoded UserID
		assert.Error(t, json.Unmarshal([]byte(`"not-a-uuid"`), &decoded))
	})
}
