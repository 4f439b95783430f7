package export

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mkotelnikov/coffeematch-backend/internal/auth"
	"github.com/mkotelnikov/coffeematch-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Export streams the requested table as a CSV attachment. A copy is
// archived to the configured storage as a side effect.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	table := mux.Vars(r)["table"]

	result, err := h.service.Export(r.Context(), table)
	if err != nil {
		if errors.Is(err, ErrUnknownTable) {
			utils.RespondWithError(w, http.StatusNotFound, "Unknown table, expected users or matches")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Export failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("X-Export-Location", result.Location)
	w.WriteHeader(http.StatusOK)
	w.Write(result.Data)
}

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	admin := router.PathPrefix("/api/v1/admin").Subrouter()
	admin.Use(authMiddleware.RequireAdmin)
	admin.HandleFunc("/export/{table}", handler.Export).Methods("GET")
}
