package matching

import (
	"github.com/gorilla/mux"

	"github.com/hjarta-app/hjarta-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handlers *Handlers, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/matching").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/status", handlers.GetStatus).Methods("GET")
	api.HandleFunc("/daily", handlers.GetDailyMatches).Methods("POST")

	// Service-role only
	api.HandleFunc("/admin/generate", handlers.AdminGenerate).Methods("POST")
}
