package controllers

import (
	"net/http"

	"github.com/licorgest/licorgest/app/services"
	"github.com/licorgest/licorgest/internal/api"
	"github.com/licorgest/licorgest/internal/identity"
	"github.com/licorgest/licorgest/pkg/bind"
	"github.com/licorgest/licorgest/pkg/response"
	"github.com/licorgest/licorgest/pkg/session"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

// Login authenticates and establishes the session.
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if errs, err := bind.JSON(r, &creds); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	sess := session.FromCtx(r)
	user, err := c.service.Login(r.Context(), sess, w, creds)
	if err != nil {
		if api.IsUnauthorized(err) {
			response.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		response.Error(w, http.StatusBadGateway, "login unavailable")
		return
	}

	response.Success(w, map[string]interface{}{
		"user": user,
		"name": identity.DisplayName(user),
	})
}

// Register creates an account.
func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Nombre   string `json:"nombre" validate:"required,min=2,max=100"`
		Username string `json:"username" validate:"required,min=3,max=50"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if len(errs) > 0 {
		response.ValidationError(w, errs)
		return
	}

	created, err := c.service.Register(r.Context(), api.User{
		Nombre:   body.Nombre,
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		response.Error(w, http.StatusBadGateway, "registration failed")
		return
	}
	created.Password = ""
	response.Created(w, created)
}

// Logout destroys the session.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := c.service.Logout(session.FromCtx(r), w); err != nil {
		response.Error(w, http.StatusInternalServerError, "logout failed")
		return
	}
	response.Message(w, "logged out")
}

// Me returns the current profile plus the resolved purchase identity, so the
// header can render without a round trip per second.
func (c *AuthController) Me(w http.ResponseWriter, r *http.Request) {
	sess := session.FromCtx(r)
	user := c.service.CurrentUser(r.Context(), sess)
	who := identity.Resolve(nil, user, sess.Token())

	if user == nil && !who.Resolved() {
		response.Unauthorized(w)
		return
	}

	response.Success(w, map[string]interface{}{
		"user":        user,
		"name":        identity.DisplayName(user),
		"user_id":     who.UserID,
		"user_source": who.Source,
	})
}

// Verify reports whether the session token is still accepted by the API.
func (c *AuthController) Verify(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]bool{
		"valid": c.service.Verify(r.Context(), session.FromCtx(r)),
	})
}
