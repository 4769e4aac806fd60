package handlers

import (
	"net/http"

	"github.com/umar/usergroups/internal/apierror"
)

func Health(w http.ResponseWriter, r *http.Request) {
	apierror.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "usergroups",
	})
}
