package server

import (
	"net/http"

	"github.com/umar/usergroups/internal/apierror"
)

func notFound(w http.ResponseWriter, r *http.Request) {
	apierror.Write(w, apierror.NotFound("route not found"))
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apierror.Write(w, apierror.New(http.StatusMethodNotAllowed, "method not allowed"))
}
