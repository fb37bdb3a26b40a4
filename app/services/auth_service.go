package services

import (
	"context"
	"net/http"

	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/internal/identity"
	"github.com/licorgest/licorgest/pkg/session"
	"github.com/licorgest/licorgest/pkg/ws"
)

// AuthService manages login state against the inventory API and mirrors it
// into the request session, the server-side stand-in for the browser's
// local storage.
type AuthService struct {
	client *api.Client
	hub    *ws.Hub
}

func NewAuthService(client *api.Client, hub *ws.Hub) *AuthService {
	return &AuthService{client: client, hub: hub}
}

// Login authenticates against the API and caches token, profile and display
// name in the session. Connected screens are told the user changed.
func (s *AuthService) Login(ctx context.Context, sess *session.Session, w http.ResponseWriter, creds api.Credentials) (*api.User, error) {
	tok, err := s.client.Login(ctx, creds)
	if err != nil {
		return nil, err
	}

	user := tok.User
	if user == nil {
		// Some deployments return only the token; fetch the profile.
		if me, err := s.client.Me(ctx, tok.AccessToken); err == nil {
			user = &me
		}
	}

	sess.Set(session.KeyToken, tok.AccessToken)
	if user != nil {
		sess.Set(session.KeyUserData, user)
		sess.Set(session.KeyUserName, identity.DisplayName(user))
	}
	if err := sess.Save(w); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastEvent("user_changed", map[string]interface{}{
			"name": identity.DisplayName(user),
		})
	}

	return user, nil
}

// Logout clears the session and notifies connected screens.
func (s *AuthService) Logout(sess *session.Session, w http.ResponseWriter) error {
	sess.Invalidate()
	if err := sess.Save(w); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.BroadcastEvent("user_changed", map[string]interface{}{"name": ""})
	}
	return nil
}

// CurrentUser returns the cached profile, refreshing it from the API when
// the session only holds a token.
func (s *AuthService) CurrentUser(ctx context.Context, sess *session.Session) *api.User {
	if u := identity.CachedUser(sess); u != nil {
		return u
	}
	token := sess.Token()
	if token == "" {
		return nil
	}
	me, err := s.client.Me(ctx, token)
	if err != nil {
		return nil
	}
	sess.Set(session.KeyUserData, me)
	sess.Set(session.KeyUserName, identity.DisplayName(&me))
	return &me
}

// Register creates an account on the API. The caller logs in separately.
func (s *AuthService) Register(ctx context.Context, u api.User) (api.User, error) {
	return s.client.Register(ctx, u)
}

// Verify asks the API whether the session's token is still valid.
func (s *AuthService) Verify(ctx context.Context, sess *session.Session) bool {
	token := sess.Token()
	if token == "" {
		return false
	}
	return s.client.VerifyToken(ctx, token) == nil
}
