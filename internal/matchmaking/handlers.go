package matchmaking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mkotelnikov/coffeematch-backend/internal/common/utils"
	"github.com/mkotelnikov/coffeematch-backend/internal/profile"
)

type Handler struct {
	service Service
	admin   AdminService
}

func NewHandler(service Service, admin AdminService) *Handler {
	return &Handler{service: service, admin: admin}
}

// PendingMatches lists the caller's open proposals with partner details.
// Doubles as the fallback for missed proposal notifications.
func (h *Handler) PendingMatches(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	matches, err := h.service.PendingMatches(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load matches")
		return
	}

	if matches == nil {
		matches = []*Match{}
	}
	utils.RespondWithJSON(w, http.StatusOK, matches)
}

func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)
	matchID, ok := matchIDFromRequest(w, r)
	if !ok {
		return
	}

	match, err := h.service.Accept(r.Context(), matchID, userID)
	if err != nil {
		h.respondLifecycleError(w, err)
		return
	}

	if match.ChatCreated() {
		utils.RespondWithJSON(w, http.StatusOK, match)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"match":   match,
		"message": "Accepted, waiting for your partner to respond",
	})
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)
	matchID, ok := matchIDFromRequest(w, r)
	if !ok {
		return
	}

	if _, err := h.service.Reject(r.Context(), matchID, userID); err != nil {
		h.respondLifecycleError(w, err)
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Match declined")
}

func (h *Handler) RecordOutcome(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)
	matchID, ok := matchIDFromRequest(w, r)
	if !ok {
		return
	}

	var req OutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	match, err := h.service.RecordOutcome(r.Context(), matchID, userID, req.Succeeded)
	if err != nil {
		h.respondLifecycleError(w, err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, match)
}

func (h *Handler) RunRound(w http.ResponseWriter, r *http.Request) {
	var req RunRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.RunRound(r.Context(), Mode(req.Mode))
	if err != nil {
		if errors.Is(err, ErrRoundInProgress) {
			utils.RespondWithError(w, http.StatusConflict, "A pairing round is already running")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Pairing round failed")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]int{"matches_created": created})
}

func (h *Handler) CreatePair(w http.ResponseWriter, r *http.Request) {
	var req CreatePairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	match, err := h.admin.CreatePair(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfPair):
			utils.RespondWithError(w, http.StatusBadRequest, "Cannot pair a user with themselves")
		case errors.Is(err, ErrMatchExists):
			utils.RespondWithError(w, http.StatusConflict, "An open match already exists for this pair")
		case errors.Is(err, profile.ErrUserNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "One of the users does not exist")
		default:
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, match)
}

func (h *Handler) WipeHistory(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.admin.WipeHistory(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to wipe match history")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, map[string]int64{"matches_deleted": deleted})
}

func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req BroadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	result, err := h.admin.Broadcast(r.Context(), &req)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithData(w, http.StatusOK, result)
}

// UserPendingMatches lists any user's open proposals for the admin surface
func (h *Handler) UserPendingMatches(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || userID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	matches, err := h.admin.PendingFor(r.Context(), userID)
	if err != nil {
		if errors.Is(err, profile.ErrUserNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load matches")
		return
	}

	if matches == nil {
		matches = []*Match{}
	}
	utils.RespondWithJSON(w, http.StatusOK, matches)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.admin.Stats(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	utils.RespondWithData(w, http.StatusOK, stats)
}

func (h *Handler) respondLifecycleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMatchNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Match not found")
	case errors.Is(err, ErrNotParticipant):
		utils.RespondWithError(w, http.StatusForbidden, "You are not part of this match")
	case errors.Is(err, ErrMatchClosed):
		utils.RespondWithError(w, http.StatusConflict, "Match is already closed")
	case errors.Is(err, ErrChatNotCreated):
		utils.RespondWithError(w, http.StatusConflict, "Both sides must accept first")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Something went wrong")
	}
}

func matchIDFromRequest(w http.ResponseWriter, r *http.Request) (int64, bool) {
	matchID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || matchID <= 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match id")
		return 0, false
	}
	return matchID, true
}
