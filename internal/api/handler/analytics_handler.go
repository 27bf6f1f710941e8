package handler

import (
	"net/http"

	"hackhub/internal/app/service"
	"hackhub/internal/common"

	"github.com/go-chi/chi/v5"
)

type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

func NewAnalyticsHandler(as *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: as}
}

func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/platform-stats", h.getPlatformStats)
	r.Get("/hackathons/{hackathonID}", h.getHackathonStats)
}

func (h *AnalyticsHandler) getPlatformStats(w http.ResponseWriter, r *http.Request) {
	// Stats degrade to zeros internally, so this always responds 200.
	stats := h.analyticsService.GetPlatformStats(r.Context())
	common.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *AnalyticsHandler) getHackathonStats(w http.ResponseWriter, r *http.Request) {
	hackathonID := chi.URLParam(r, "hackathonID")
	stats := h.analyticsService.GetHackathonStats(r.Context(), hackathonID)
	common.RespondWithJSON(w, http.StatusOK, stats)
}
