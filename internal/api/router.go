package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter собирает маршруты HTTP API только для чтения
func NewRouter(s *Server) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if _, err := fmt.Fprintln(w, "OK"); err != nil {
			s.logger.Warnf("health write failed: %v", err)
		}
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/categories", s.GetCategoriesHandler).Methods("GET")
	api.HandleFunc("/calendar/{year:[0-9]{4}}/{month:[0-9]{1,2}}", s.GetCalendarHandler).Methods("GET")
	api.HandleFunc("/absences", s.GetAbsencesRangeHandler).Queries("from", "{from}", "to", "{to}").Methods("GET")
	api.HandleFunc("/absences/{date}", s.GetAbsencesHandler).Methods("GET")
	api.HandleFunc("/users", s.GetUsersHandler).Methods("GET")
	api.HandleFunc("/users/{id:[0-9]+}/stats", s.GetUserStatsHandler).Methods("GET")

	r.Use(s.loggingMiddleware)
	return r
}
