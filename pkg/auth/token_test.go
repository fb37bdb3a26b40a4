package auth

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func token(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	enc := base64.RawURLEncoding
	header, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)
	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + ".sig"
}

func TestDecodeReadsSubjectAndNumericID(t *testing.T) {
	c := Decode(token(t, map[string]interface{}{"sub": "a@b.com", "user_id": 42}))
	assert.Equal(t, "a@b.com", c.Subject)
	assert.Equal(t, int64(42), c.UserID)
}

func TestDecodeIDClaimPrecedence(t *testing.T) {
	c := Decode(token(t, map[string]interface{}{"id": 1, "user_id": 2, "usuario_id": 3}))
	assert.Equal(t, int64(1), c.UserID)
}

func TestDecodeMalformedTokensYieldZeroClaims(t *testing.T) {
	for _, bad := range []string{"", "x", "x.y", "not base64.at all.no", "a.b.c.d"} {
		c := Decode(bad)
		assert.Zero(t, c.UserID, "token %q", bad)
		assert.Empty(t, c.Subject, "token %q", bad)
	}
}

func TestPseudoIDDeterministicAndPositive(t *testing.T) {
	a := PseudoID("a@b.com")
	b := PseudoID("a@b.com")
	assert.Equal(t, a, b)
	assert.Greater(t, a, int64(0))

	assert.NotEqual(t, a, PseudoID("c@d.com"))
	assert.Zero(t, PseudoID(""))
}
