package matchmaking

import (
	"github.com/gorilla/mux"

	"github.com/mkotelnikov/coffeematch-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()

	matches := api.PathPrefix("/matches").Subrouter()
	matches.Use(authMiddleware.Identify)
	matches.HandleFunc("/pending", handler.PendingMatches).Methods("GET")
	matches.HandleFunc("/{id:[0-9]+}/accept", handler.Accept).Methods("POST")
	matches.HandleFunc("/{id:[0-9]+}/reject", handler.Reject).Methods("POST")
	matches.HandleFunc("/{id:[0-9]+}/outcome", handler.RecordOutcome).Methods("POST")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(authMiddleware.RequireAdmin)
	admin.HandleFunc("/rounds", handler.RunRound).Methods("POST")
	admin.HandleFunc("/pairs", handler.CreatePair).Methods("POST")
	admin.HandleFunc("/matches", handler.WipeHistory).Methods("DELETE")
	admin.HandleFunc("/stats", handler.Stats).Methods("GET")
	admin.HandleFunc("/users/{id:[0-9]+}/pending", handler.UserPendingMatches).Methods("GET")
	admin.HandleFunc("/broadcast", handler.Broadcast).Methods("POST")
}
