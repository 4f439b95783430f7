package profile

import (
	"encoding/json"
	"net/http"

	"github.com/mkotelnikov/coffeematch-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register handles first contact: creates or refreshes the user record
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusCreated, user)
}

func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if err == ErrUserNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Profile not found, register first")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

// UpdateProfile handles a questionnaire submission or resubmission
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		if err == ErrUserNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Profile not found, register first")
			return
		}
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, user)
}

func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value("userID").(int64)

	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := h.service.SetActive(r.Context(), userID, req.Active); err != nil {
		if err == ErrUserNotFound {
			utils.RespondWithError(w, http.StatusNotFound, "Profile not found, register first")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update status")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Status updated")
}

func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.service.ListQuestions(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load questions")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, questions)
}
