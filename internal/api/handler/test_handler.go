package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"learnhub/internal/api/middleware"
	"learnhub/internal/app/service"
	"learnhub/internal/common"
	"learnhub/internal/domain/model"
)

type TestHandler struct {
	catalogService    *service.CatalogService
	submissionService *service.SubmissionService
	logger            *slog.Logger
}

func NewTestHandler(cs *service.CatalogService, ss *service.SubmissionService, logger *slog.Logger) *TestHandler {
	return &TestHandler{catalogService: cs, submissionService: ss, logger: logger}
}

func (h *TestHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listTests) // GET /api/v1/tests

	r.Group(func(private chi.Router) {
		private.Use(middleware.Authenticator)
		private.Get("/results/me", h.myResults)
		private.Get("/{testID}", h.getTest)
		private.Post("/{testID}/submit", h.submitTest)
	})

	r.Group(func(publisher chi.Router) {
		publisher.Use(middleware.Authenticator)
		publisher.Use(middleware.RequireRole(model.Role.CanManageCatalog))
		publisher.Post("/", h.createTest) // POST /api/v1/tests
	})
}

func (h *TestHandler) listTests(w http.ResponseWriter, r *http.Request) {
	tests, err := h.catalogService.ListTests(r.Context())
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	type TestsResponse struct {
		Count int          `json:"count"`
		Data  []model.Test `json:"data"`
	}
	common.RespondWithJSON(w, http.StatusOK, TestsResponse{Count: len(tests), Data: tests})
}

// getTest returns the pre-submission view: questions without their
// correct answers, plus the caller's submission status.
func (h *TestHandler) getTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	testID := chi.URLParam(r, "testID")

	view, err := h.submissionService.GetTestForUser(r.Context(), userID, testID)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, view)
}

func (h *TestHandler) submitTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}
	testID := chi.URLParam(r, "testID")

	var req service.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	result, err := h.submissionService.Submit(r.Context(), userID, testID, req)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *TestHandler) myResults(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	results, err := h.submissionService.ListMyResults(r.Context(), userID)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, results)
}

func (h *TestHandler) createTest(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	test, err := h.catalogService.CreateTest(r.Context(), req)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, test)
}
