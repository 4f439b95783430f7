package profile

import (
	"github.com/gorilla/mux"

	"github.com/mkotelnikov/coffeematch-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()

	// First contact does not require an established identity header
	api.HandleFunc("/users", handler.Register).Methods("POST")
	api.HandleFunc("/questions", handler.ListQuestions).Methods("GET")

	me := api.PathPrefix("/users/me").Subrouter()
	me.Use(authMiddleware.Identify)
	me.HandleFunc("", handler.GetMyProfile).Methods("GET")
	me.HandleFunc("/profile", handler.UpdateProfile).Methods("PUT")
	me.HandleFunc("/active", handler.SetActive).Methods("POST")
}
