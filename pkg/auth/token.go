// Package auth extracts identity hints from JWT access tokens.
//
// Tokens issued by the inventory API are verified server-side on every call;
// here we only need to read the payload to recover a user id when the session
// cache is empty. Decoding therefore never validates the signature and never
// returns an error: a malformed token simply yields no claims.
package auth

import (
	"hash/fnv"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded, unverified JWT payload.
type Claims struct {
	// Subject is the `sub` claim. The inventory API puts the user's email here.
	Subject string
	// UserID is the first numeric id found among the id-bearing claims
	// (`id`, `user_id`, `usuario_id`), or 0 when none is present.
	UserID int64
}

// Decode reads the payload of token without verifying its signature.
// Malformed or empty tokens return zero Claims, never an error.
func Decode(token string) Claims {
	if token == "" {
		return Claims{}
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return Claims{}
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}
	}

	var c Claims
	if sub, err := mc.GetSubject(); err == nil {
		c.Subject = sub
	}
	for _, key := range []string{"id", "user_id", "usuario_id"} {
		if n, ok := numericClaim(mc, key); ok {
			c.UserID = n
			break
		}
	}

	return c
}

// PseudoID derives a stable positive id from an email address (or any
// string subject) using FNV-1a. Used as a last-resort purchase owner when
// the token carries no numeric user id. The same subject always maps to
// the same id.
func PseudoID(subject string) int64 {
	if subject == "" {
		return 0
	}
	h := fnv.New32a()
	h.Write([]byte(subject))
	// Keep it positive and clear of real id ranges.
	return int64(h.Sum32()%900000) + 100000
}

func numericClaim(mc jwt.MapClaims, key string) (int64, bool) {
	v, ok := mc[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}
