// Package server assembles the HTTP routes and their middleware.
package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/umar/usergroups/internal/auth"
	"github.com/umar/usergroups/internal/events"
	"github.com/umar/usergroups/internal/groups"
	"github.com/umar/usergroups/internal/handlers"
	"github.com/umar/usergroups/internal/middleware"
	"github.com/umar/usergroups/internal/users"
)

type Deps struct {
	Users      *users.Service
	Groups     *groups.Service
	Issuer     *auth.Issuer
	Hub        *events.Hub
	Limiter    *middleware.RateLimiter
	CORSOrigin string
	TrustProxy bool
}

func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(middleware.Recover)
	router.Use(middleware.Logging)
	router.Use(middleware.CORS(d.CORSOrigin))

	limited := middleware.RateLimit(d.Limiter, d.TrustProxy)

	// Public routes
	router.HandleFunc("/health", handlers.Health).Methods("GET", "OPTIONS")
	router.Handle("/users", limited(handlers.CreateUser(d.Users, d.Hub))).Methods("POST", "OPTIONS")
	router.Handle("/register", limited(auth.RegisterHandler(d.Users, d.Issuer))).Methods("POST", "OPTIONS")
	router.Handle("/groups", limited(handlers.CreateGroup(d.Groups, d.Hub))).Methods("POST", "OPTIONS")
	router.HandleFunc("/groups", handlers.ListGroups(d.Groups)).Methods("GET")
	router.HandleFunc("/groups/{id}", handlers.GetGroup(d.Groups)).Methods("GET")

	// WebSocket
	router.HandleFunc("/ws", events.ServeWS(d.Hub, d.Issuer)).Methods("GET")

	// Protected routes
	protected := auth.JWTMiddleware(d.Issuer)
	router.Handle("/users/{id}", protected(handlers.GetUser(d.Users))).Methods("GET")
	router.Handle("/users/{id}", protected(handlers.UpdateUser(d.Users, d.Hub))).Methods("PUT", "OPTIONS")
	router.Handle("/me", protected(auth.MeHandler(d.Users))).Methods("GET")
	router.Handle("/sessions", protected(auth.LogoutHandler(d.Issuer))).Methods("DELETE", "OPTIONS")

	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)
	return router
}
