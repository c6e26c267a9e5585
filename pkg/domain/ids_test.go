package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDrawID(t *testing.T) {
	t.Run("parses a canonical UUID", func(t *testing.T) {
		raw := uuid.New()
		parsed, err := ParseDrawID(raw.String())
		require.NoError(t, err)
		assert.Equal(t, DrawID(raw), parsed)
		assert.Equal(t, raw.String(), parsed.String())
	})

	invalid := []struct {
		name string
		in   string
	}{
		{"empty string", ""},
		{"malformed", "not-a-uuid"},
		{"truncated", "123e4567-e89b-12d3-a456"},
		{"nil uuid", "00000000-0000-0000-0000-000000000000"},
	}
	for _, tt := range invalid {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := ParseDrawID(tt.in)
			assert.Error(t, err)
		})
	}
}

func TestParseUserIDAndPropertyID(t *testing.T) {
	raw := uuid.New()

	userID, err := ParseUserID(raw.String())
	require.NoError(t, err)
	assert.Equal(t, UserID(raw), userID)

	propertyID, err := ParsePropertyID(raw.String())
	require.NoError(t, err)
	assert.Equal(t, PropertyID(raw), propertyID)

	_, err = ParseUserID("")
	assert.Error(t, err)
	_, err = ParsePropertyID("nope")
	assert.Error(t, err)
}

func TestIsNil(t *testing.T) {
	assert.True(t, DrawID{}.IsNil())
	assert.True(t, UserID{}.IsNil())
	assert.True(t, PropertyID{}.IsNil())
	assert.False(t, DrawID(uuid.New()).IsNil())
}

func TestJSONRoundTrip(t *testing.T) {
	// Named array types need explicit text marshalers for JSON to render
	// canonical UUID strings instead of byte arrays.
	original := UserID(uuid.New())

	raw, err := json.Marshal(original)
	require.NoError(t, err)
	assert.JSONEq(t, `"`+original.String()+`"`, string(raw))

	var decoded UserID
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, original, decoded)
}
