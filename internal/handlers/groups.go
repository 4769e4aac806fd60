package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/umar/usergroups/internal/apierror"
	"github.com/umar/usergroups/internal/events"
	"github.com/umar/usergroups/internal/groups"
	"github.com/umar/usergroups/internal/models"
	"github.com/umar/usergroups/internal/validation"
)

type createGroupRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description" validate:"required"`
	Chronic     string `json:"chronic" validate:"required"`
	Schedule    string `json:"schedule" validate:"required"`
	Location    string `json:"location" validate:"required"`
	Master      string `json:"master" validate:"required,uuid"`
}

func (req *createGroupRequest) Normalize() {
	req.Name = strings.TrimSpace(req.Name)
	req.Master = strings.TrimSpace(req.Master)
}

type groupResponse struct {
	Group *models.Group `json:"group"`
}

func CreateGroup(svc *groups.Service, pub events.Publisher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGroupRequest
		if apiErr := validation.DecodeAndValidate(r, &req); apiErr != nil {
			apierror.Write(w, apiErr)
			return
		}

		group, err := svc.Create(r.Context(), groups.CreateInput{
			Name:        req.Name,
			Description: req.Description,
			Chronic:     req.Chronic,
			Schedule:    req.Schedule,
			Location:    req.Location,
			Master:      req.Master,
		})
		if err != nil {
			if errors.Is(err, groups.ErrMasterNotFound) {
				apierror.Write(w, apierror.Unprocessable("validation failed", apierror.FieldError{
					Field: "master", Rule: "exists", Message: "master must reference an existing user",
				}))
				return
			}
			slog.Error("failed to create group", "error", err)
			apierror.Write(w, apierror.Internal())
			return
		}

		if err := pub.Publish(r.Context(), "", events.TypeGroupCreated, group); err != nil {
			slog.Error("failed to publish event", "error", err, "type", events.TypeGroupCreated)
		}

		apierror.WriteJSON(w, http.StatusCreated, groupResponse{Group: group})
	}
}

func GetGroup(svc *groups.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		group, err := svc.Get(r.Context(), mux.Vars(r)["id"])
		if err != nil {
			if errors.Is(err, groups.ErrNotFound) {
				apierror.Write(w, apierror.NotFound("group not found"))
				return
			}
			slog.Error("failed to get group", "error", err)
			apierror.Write(w, apierror.Internal())
			return
		}
		apierror.WriteJSON(w, http.StatusOK, groupResponse{Group: group})
	}
}

func ListGroups(svc *groups.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if l, err := strconv.Atoi(limitStr); err == nil {
				limit = l
			}
		}

		list, err := svc.List(r.Context(), limit)
		if err != nil {
			slog.Error("failed to list groups", "error", err)
			apierror.Write(w, apierror.Internal())
			return
		}
		apierror.WriteJSON(w, http.StatusOK, map[string]interface{}{"groups": list})
	}
}
