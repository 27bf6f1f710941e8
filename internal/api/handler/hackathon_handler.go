package handler

import (
	"encoding/json"
	"net/http"

	"hackhub/internal/api/middleware"
	"hackhub/internal/app/service"
	"hackhub/internal/common"
	"hackhub/internal/domain/model"
	"hackhub/internal/domain/repository"

	"github.com/go-chi/chi/v5"
)

type HackathonHandler struct {
	hackathonService    *service.HackathonService
	registrationService *service.RegistrationService
}

func NewHackathonHandler(hs *service.HackathonService, rs *service.RegistrationService) *HackathonHandler {
	return &HackathonHandler{hackathonService: hs, registrationService: rs}
}

func (h *HackathonHandler) RegisterRoutes(r chi.Router) {
	// Catalogue routes are public; browsing does not require an account.
	r.Get("/", h.listHackathons)
	r.Get("/{hackathonID}", h.getHackathon)

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Post("/", h.createHackathon)
		authed.Get("/my", h.getMyHackathons)
		authed.Patch("/{hackathonID}", h.updateHackathon)
		authed.Post("/{hackathonID}/publish", h.publishHackathon)
		authed.Patch("/{hackathonID}/status", h.updateStatus)
		authed.Delete("/{hackathonID}", h.deleteHackathon)
		authed.Post("/{hackathonID}/register", h.register)
		authed.Get("/{hackathonID}/participants", h.getParticipants)
	})
}

func (h *HackathonHandler) createHackathon(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateHackathonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	hackathon, err := h.hackathonService.Create(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, hackathon)
}

func (h *HackathonHandler) listHackathons(w http.ResponseWriter, r *http.Request) {
	filter := repository.HackathonFilter{
		Status: model.HackathonStatus(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("search"),
	}

	hackathons, err := h.hackathonService.List(r.Context(), filter)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, hackathons)
}

func (h *HackathonHandler) getHackathon(w http.ResponseWriter, r *http.Request) {
	hackathonID := chi.URLParam(r, "hackathonID")

	hackathon, err := h.hackathonService.Get(r.Context(), hackathonID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, hackathon)
}

func (h *HackathonHandler) updateHackathon(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	hackathonID := chi.URLParam(r, "hackathonID")

	var req service.UpdateHackathonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	hackathon, err := h.hackathonService.Update(r.Context(), userID, hackathonID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, hackathon)
}

func (h *HackathonHandler) publishHackathon(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	hackathonID := chi.URLParam(r, "hackathonID")

	hackathon, err := h.hackathonService.Publish(r.Context(), userID, hackathonID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, hackathon)
}

func (h *HackathonHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	hackathonID := chi.URLParam(r, "hackathonID")

	var req struct {
		Status model.HackathonStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	hackathon, err := h.hackathonService.UpdateStatus(r.Context(), userID, hackathonID, req.Status)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, hackathon)
}

func (h *HackathonHandler) deleteHackathon(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	hackathonID := chi.URLParam(r, "hackathonID")

	if err := h.hackathonService.Remove(r.Context(), userID, hackathonID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Hackathon deleted successfully"})
}

func (h *HackathonHandler) register(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	hackathonID := chi.URLParam(r, "hackathonID")

	var req service.RegisterRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
			return
		}
	}

	result, err := h.registrationService.Register(r.Context(), userID, hackathonID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, result)
}

func (h *HackathonHandler) getMyHackathons(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	hackathons, err := h.hackathonService.GetMyHackathons(r.Context(), userID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, hackathons)
}

func (h *HackathonHandler) getParticipants(w http.ResponseWriter, r *http.Request) {
	hackathonID := chi.URLParam(r, "hackathonID")

	participants, err := h.hackathonService.GetParticipants(r.Context(), hackathonID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, participants)
}
