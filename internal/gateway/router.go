package gateway

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(h *MessageHandler) *mux.Router {

	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/messages", h.Publish).Methods(http.MethodPost)
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	return r
}
