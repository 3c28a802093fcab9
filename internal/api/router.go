package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter mounts the screens, dashboard and health check.
func NewRouter(s *Server) *mux.Router {
	r := mux.NewRouter()
	r.Use(s.traceRequests, s.logRequests)

	r.HandleFunc("/health", health).Methods(http.MethodGet)

	r.HandleFunc("/", s.show(s.login)).Methods(http.MethodGet)
	r.HandleFunc("/", s.submit(s.login)).Methods(http.MethodPost)
	r.HandleFunc("/registration", s.show(s.registration)).Methods(http.MethodGet)
	r.HandleFunc("/registration", s.submit(s.registration)).Methods(http.MethodPost)
	r.HandleFunc("/forgot-password", s.show(s.forgotPassword)).Methods(http.MethodGet)
	r.HandleFunc("/forgot-password", s.submit(s.forgotPassword)).Methods(http.MethodPost)
	r.HandleFunc("/reset-password", s.show(s.resetPassword)).Methods(http.MethodGet)
	r.HandleFunc("/reset-password", s.submit(s.resetPassword)).Methods(http.MethodPost)

	r.Handle("/dashboard", s.sessions.Middleware(http.HandlerFunc(s.dashboard))).Methods(http.MethodGet)
	r.HandleFunc("/logout", s.logout).Methods(http.MethodPost)

	r.NotFoundHandler = s.logRequests(http.HandlerFunc(http.NotFound))
	return r
}
