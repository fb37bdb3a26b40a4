// Package identity resolves which user a sale belongs to.
//
// The inventory API requires a numeric user id on every purchase, but the
// POS may be operating with nothing more than a bearer token. Resolution
// walks a fallback chain and never fails on bad input; at worst the sale is
// recorded against a derived pseudo-id so the checkout can proceed.
package identity

import (
	"encoding/json"
	"strings"

	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/pkg/auth"
	"github.com/licorgest/licorgest/pkg/session"
)

// Resolution sources, in fallback order.
const (
	SourceExplicit = "explicit" // caller handed over a full user
	SourceSession  = "session"  // cached profile from a previous login
	SourceToken    = "token"    // numeric id claim inside the JWT payload
	SourceDerived  = "derived"  // pseudo-id hashed from the token subject
)

// Resolution is the outcome of the fallback chain.
type Resolution struct {
	UserID int64
	Source string
	Email  string
}

// Resolved reports whether a usable user id was found.
func (r Resolution) Resolved() bool { return r.UserID > 0 }

// Resolve walks the fallback chain: explicit user, cached session profile,
// token id claim, then a pseudo-id derived from the token's email subject.
// A malformed token never causes an error; it simply contributes nothing.
func Resolve(explicit *api.User, cached *api.User, token string) Resolution {
	if explicit != nil && explicit.ID > 0 {
		return Resolution{UserID: explicit.ID, Source: SourceExplicit, Email: explicit.Email}
	}
	if cached != nil && cached.ID > 0 {
		return Resolution{UserID: cached.ID, Source: SourceSession, Email: cached.Email}
	}

	claims := auth.Decode(token)
	if claims.UserID > 0 {
		return Resolution{UserID: claims.UserID, Source: SourceToken, Email: claims.Subject}
	}
	if claims.Subject != "" {
		return Resolution{
			UserID: auth.PseudoID(claims.Subject),
			Source: SourceDerived,
			Email:  claims.Subject,
		}
	}

	return Resolution{}
}

// FromSession resolves identity out of a request session: the cached
// profile under "user_data" plus the stored bearer token.
func FromSession(sess *session.Session) Resolution {
	return Resolve(nil, CachedUser(sess), sess.Token())
}

// CachedUser decodes the profile stored in the session, or nil.
// Session values round-trip through JSON, so the cached profile may arrive
// as a generic map; re-marshalling normalizes it.
func CachedUser(sess *session.Session) *api.User {
	v, ok := sess.Get(session.KeyUserData)
	if !ok || v == nil {
		return nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}

	var u api.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil
	}
	if u.ID == 0 && u.Email == "" {
		return nil
	}
	return &u
}

// DisplayName picks what the header should show for a user:
// full name, then username, then the local part of the email.
func DisplayName(u *api.User) string {
	if u == nil {
		return ""
	}
	if u.Nombre != "" {
		return u.Nombre
	}
	if u.Username != "" {
		return u.Username
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}
