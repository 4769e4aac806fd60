package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/umar/usergroups/internal/apierror"
	"github.com/umar/usergroups/internal/models"
	"github.com/umar/usergroups/internal/users"
	"github.com/umar/usergroups/internal/validation"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (req *loginRequest) Normalize() {
	req.Email = strings.TrimSpace(req.Email)
}

type loginResponse struct {
	Token *Token       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterHandler exchanges email and password for a bearer token.
func RegisterHandler(svc *users.Service, issuer *Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if apiErr := validation.DecodeAndValidate(r, &req); apiErr != nil {
			apierror.Write(w, apiErr)
			return
		}

		user, err := svc.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, users.ErrInvalidCredentials) {
				apierror.Write(w, apierror.BadRequest("invalid email or password"))
				return
			}
			slog.Error("failed to authenticate user", "error", err)
			apierror.Write(w, apierror.Internal())
			return
		}

		token, err := issuer.Issue(r.Context(), user)
		if err != nil {
			slog.Error("failed to issue token", "error", err, "user_id", user.ID)
			apierror.Write(w, apierror.Internal())
			return
		}

		apierror.WriteJSON(w, http.StatusCreated, loginResponse{Token: token, User: user})
	}
}

func LogoutHandler(issuer *Issuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := issuer.Revoke(r.Context(), TokenID(r.Context())); err != nil {
			slog.Error("failed to revoke session", "error", err)
			apierror.Write(w, apierror.Internal())
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func MeHandler(svc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.Get(r.Context(), UserID(r.Context()))
		if err != nil {
			if errors.Is(err, users.ErrNotFound) {
				apierror.Write(w, apierror.NotFound("user not found"))
				return
			}
			slog.Error("failed to get user", "error", err)
			apierror.Write(w, apierror.Internal())
			return
		}
		apierror.WriteJSON(w, http.StatusOK, map[string]interface{}{"user": user})
	}
}
