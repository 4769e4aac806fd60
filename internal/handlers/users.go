package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/umar/usergroups/internal/apierror"
	"github.com/umar/usergroups/internal/auth"
	"github.com/umar/usergroups/internal/events"
	"github.com/umar/usergroups/internal/models"
	"github.com/umar/usergroups/internal/users"
	"github.com/umar/usergroups/internal/validation"
)

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Avatar   string `json:"avatar" validate:"omitempty,url"`
}

func (req *createUserRequest) Normalize() {
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	req.Avatar = strings.TrimSpace(req.Avatar)
}

type updateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Avatar   string `json:"avatar" validate:"omitempty,url"`
}

func (req *updateUserRequest) Normalize() {
	req.Email = strings.TrimSpace(req.Email)
	req.Avatar = strings.TrimSpace(req.Avatar)
}

type userResponse struct {
	User *models.User `json:"user"`
}

// publicProfile is what other users may see about an account.
type publicProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

func writeUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		apierror.Write(w, apierror.Conflict("email already in use"))
	case errors.Is(err, users.ErrUsernameTaken):
		apierror.Write(w, apierror.Conflict("username already in use"))
	case errors.Is(err, users.ErrPasswordTooLong):
		apierror.Write(w, apierror.Unprocessable("validation failed", apierror.FieldError{
			Field: "password", Rule: "max", Message: "password must be at most 72 bytes",
		}))
	case errors.Is(err, users.ErrNotFound):
		apierror.Write(w, apierror.NotFound("user not found"))
	default:
		slog.Error("user operation failed", "error", err)
		apierror.Write(w, apierror.Internal())
	}
}

func CreateUser(svc *users.Service, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if apiErr := validation.DecodeAndValidate(r, &req); apiErr != nil {
			apierror.Write(w, apiErr)
			return
		}

		user, err := svc.Create(r.Context(), users.CreateInput{
			Email:    req.Email,
			Username: req.Username,
			Password: req.Password,
			Avatar:   req.Avatar,
		})
		if err != nil {
			writeUserError(w, err)
			return
		}

		profile := publicProfile{ID: user.ID, Username: user.Username, Avatar: user.Avatar}
		if err := pub.Publish(r.Context(), "", events.TypeUserCreated, profile); err != nil {
			slog.Error("failed to publish event", "error", err, "type", events.TypeUserCreated)
		}

		apierror.WriteJSON(w, http.StatusCreated, userResponse{User: user})
	}
}

func GetUser(svc *users.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := svc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			writeUserError(w, err)
			return
		}
		if user.ID != auth.UserID(r.Context()) {
			apierror.WriteJSON(w, http.StatusOK, map[string]publicProfile{
				"user": {ID: user.ID, Username: user.Username, Avatar: user.Avatar},
			})
			return
		}
		apierror.WriteJSON(w, http.StatusOK, userResponse{User: user})
	}
}

// UpdateUser replaces email, password and avatar. The body is validated
// before ownership is checked.
func UpdateUser(svc *users.Service, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateUserRequest
		if apiErr := validation.DecodeAndValidate(r, &req); apiErr != nil {
			apierror.Write(w, apiErr)
			return
		}

		id := mux.Vars(r)["id"]
		if id != auth.UserID(r.Context()) {
			apierror.Write(w, apierror.Forbidden("cannot update another user"))
			return
		}

		user, err := svc.Update(r.Context(), id, users.UpdateInput{
			Email:    req.Email,
			Password: req.Password,
			Avatar:   req.Avatar,
		})
		if err != nil {
			writeUserError(w, err)
			return
		}

		if err := pub.Publish(r.Context(), user.ID, events.TypeUserUpdated, user); err != nil {
			slog.Error("failed to publish event", "error", err, "type", events.TypeUserUpdated)
		}

		apierror.WriteJSON(w, http.StatusOK, userResponse{User: user})
	}
}
