package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	codec := NewCodec(testSecret, "gameforum").WithClock(fixedClock(now))

	ids := []Identity{
		{UserID: 1, Email: "a@x.com"},
		{UserID: 1789455001234567168, Email: "alice@example.org"},
		{UserID: 42, Email: ""},
	}
	for _, id := range ids {
		token, err := codec.Encode(id, 7*24*time.Hour)
		require.NoError(t, err)

		claims, err := codec.Decode(token)
		require.NoError(t, err)
		assert.Equal(t, id, claims.Identity)
		assert.True(t, claims.ExpiryTime().Equal(now.Add(7*24*time.Hour)))
		assert.True(t, claims.IssuedTime().Equal(now))
	}
}

func TestDecodeExpired(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	codec := NewCodec(testSecret, "gameforum").WithClock(fixedClock(issued))
	token, err := codec.Encode(Identity{UserID: 7, Email: "b@x.com"}, time.Hour)
	require.NoError(t, err)

	later := codec.WithClock(fixedClock(issued.Add(2 * time.Hour)))
	_, err = later.Decode(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestDecodeMalformed(t *testing.T) {
	codec := NewCodec(testSecret, "gameforum")
	good, err := codec.Encode(Identity{UserID: 7, Email: "b@x.com"}, time.Hour)
	require.NoError(t, err)

	other := NewCodec("another-secret-0123456", "gameforum")
	forged, err := other.Encode(Identity{UserID: 1, Email: "admin@x.com"}, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(good, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"wrong secret": forged,
		"tampered":     tampered,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decode(token)
			assert.ErrorIs(t, err, ErrTokenMalformed)
		})
	}
}

func TestDecodeRejectsForeignIssuer(t *testing.T) {
	foreign := NewCodec(testSecret, "someone-else")
	token, err := foreign.Encode(Identity{UserID: 3}, time.Hour)
	require.NoError(t, err)

	_, err = NewCodec(testSecret, "gameforum").Decode(token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}
