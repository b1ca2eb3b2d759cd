package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"learnhub/internal/api/middleware"
	"learnhub/internal/app/service"
	"learnhub/internal/common"
)

type ContactHandler struct {
	contactService *service.ContactService
	logger         *slog.Logger
}

func NewContactHandler(cs *service.ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{contactService: cs, logger: logger}
}

func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.sendMessage)
}

func (h *ContactHandler) sendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	resp, err := h.contactService.Relay(r.Context(), userID, req)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
