package identity

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licorgest/licorgest/internal/api"
)

// fakeToken builds an unsigned JWT carrying the given claims. Resolution
// only reads the payload, so the signature does not matter.
func fakeToken(t *testing.T, claims map[string]interface{}) string {
	t.Helper()
	enc := base64.RawURLEncoding

	header, err := json.Marshal(map[string]string{"alg": "none", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	return enc.EncodeToString(header) + "." + enc.EncodeToString(payload) + ".x"
}

func TestExplicitUserWinsOverEverything(t *testing.T) {
	token := fakeToken(t, map[string]interface{}{"id": 99, "sub": "a@b.com"})

	res := Resolve(&api.User{ID: 7, Email: "cajero@licor.ec"}, &api.User{ID: 8}, token)
	assert.Equal(t, int64(7), res.UserID)
	assert.Equal(t, SourceExplicit, res.Source)
	assert.True(t, res.Resolved())
}

func TestCachedSessionProfileBeatsToken(t *testing.T) {
	token := fakeToken(t, map[string]interface{}{"id": 99})

	res := Resolve(nil, &api.User{ID: 8, Email: "admin@licor.ec"}, token)
	assert.Equal(t, int64(8), res.UserID)
	assert.Equal(t, SourceSession, res.Source)
}

func TestTokenNumericClaimUsed(t *testing.T) {
	for _, claim := range []string{"id", "user_id", "usuario_id"} {
		token := fakeToken(t, map[string]interface{}{claim: 42, "sub": "a@b.com"})
		res := Resolve(nil, nil, token)
		assert.Equal(t, int64(42), res.UserID, "claim %s", claim)
		assert.Equal(t, SourceToken, res.Source)
	}
}

func TestPseudoIDDerivedFromSubject(t *testing.T) {
	token := fakeToken(t, map[string]interface{}{"sub": "a@b.com"})

	first := Resolve(nil, nil, token)
	second := Resolve(nil, nil, token)

	assert.Equal(t, SourceDerived, first.Source)
	assert.True(t, first.Resolved())
	assert.Equal(t, "a@b.com", first.Email)

	// Deterministic: the same subject always yields the same id.
	assert.Equal(t, first.UserID, second.UserID)

	other := Resolve(nil, nil, fakeToken(t, map[string]interface{}{"sub": "c@d.com"}))
	assert.NotEqual(t, first.UserID, other.UserID)
}

func TestMalformedTokenNeverPanicsOrErrors(t *testing.T) {
	for _, token := range []string{"", "garbage", "a.b", "a.b.c", "...."} {
		res := Resolve(nil, nil, token)
		assert.False(t, res.Resolved(), "token %q", token)
	}
}

func TestDisplayNameFallbackChain(t *testing.T) {
	assert.Equal(t, "María", DisplayName(&api.User{Nombre: "María", Username: "mari", Email: "m@x.com"}))
	assert.Equal(t, "mari", DisplayName(&api.User{Username: "mari", Email: "m@x.com"}))
	assert.Equal(t, "m", DisplayName(&api.User{Email: "m@x.com"}))
	assert.Equal(t, "", DisplayName(nil))
}
