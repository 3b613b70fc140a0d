// internal/matching/handlers.go

package matching

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/hjarta-app/hjarta-backend/internal/auth"
	"github.com/hjarta-app/hjarta-backend/internal/common/utils"
)

// Handlers holds the HTTP handlers for the matching endpoints
type Handlers struct {
	service Service
	log     *zap.Logger
}

func NewHandlers(service Service, log *zap.Logger) *Handlers {
	return &Handlers{service: service, log: log}
}

// GetStatus handles GET /api/v1/matching/status
func (h *Handlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.ResolveSubject(r.Context(), r.URL.Query().Get("user_id"))
	if !ok {
		utils.RespondWithError(w, http.StatusForbidden, "Cannot access another user's status")
		return
	}

	status, err := h.service.JourneyStatus(r.Context(), userID)
	if err != nil {
		h.respondServiceError(w, err, userID)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, status)
}

// GetDailyMatches handles POST /api/v1/matching/daily
func (h *Handlers) GetDailyMatches(w http.ResponseWriter, r *http.Request) {
	var req MatchDailyRequestDTO
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	userID, ok := auth.ResolveSubject(r.Context(), req.UserID)
	if !ok {
		utils.RespondWithError(w, http.StatusForbidden, "Cannot request matches for another user")
		return
	}

	resp, waiting, err := h.service.DeliverDaily(r.Context(), userID, req.PageSize, req.Cursor)
	if err != nil {
		h.respondServiceError(w, err, userID)
		return
	}
	if waiting != nil {
		utils.RespondWithJSON(w, http.StatusAccepted, waiting)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// AdminGenerate handles POST /api/v1/matching/admin/generate. With a
// user_id it builds that user's pool; without one it runs the full batch.
func (h *Handlers) AdminGenerate(w http.ResponseWriter, r *http.Request) {
	role, _ := auth.GetRoleFromContext(r.Context())
	if role != auth.RoleService {
		utils.RespondWithError(w, http.StatusForbidden, "Service role required")
		return
	}

	var req struct {
		UserID string `json:"user_id,omitempty" validate:"omitempty,uuid"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := utils.ValidateStruct(req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if req.UserID != "" {
		pool, err := h.service.GenerateForUser(r.Context(), req.UserID)
		if err != nil {
			h.respondServiceError(w, err, req.UserID)
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
			"user_id":  pool.UserID,
			"date":     pool.PoolDate,
			"batch_id": pool.BatchID,
			"meta":     pool.PoolData.GenerationMeta,
		})
		return
	}

	report, err := h.service.GenerateAll(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, report)
}

func (h *Handlers) respondServiceError(w http.ResponseWriter, err error, userID string) {
	switch {
	case errors.Is(err, ErrProfileNotFound):
		utils.RespondWithError(w, http.StatusNotFound, "Profile not found")
	case errors.Is(err, ErrOnboardingIncomplete), errors.Is(err, ErrNotEligible):
		utils.RespondWithError(w, http.StatusForbidden, "Complete onboarding to receive matches")
	case errors.Is(err, ErrInvalidCursor):
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid pagination cursor")
	default:
		h.log.Error("matching request failed", zap.String("user_id", userID), zap.Error(err))
		utils.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
