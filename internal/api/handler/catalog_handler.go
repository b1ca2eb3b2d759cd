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

// CatalogHandler serves the public course and book catalogs.
type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *slog.Logger
}

func NewCatalogHandler(cs *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalogService: cs, logger: logger}
}

func (h *CatalogHandler) RegisterCourseRoutes(r chi.Router) {
	r.Get("/", h.listCourses)
	r.Get("/{courseSlug}", h.getCourse)

	r.Group(func(publisher chi.Router) {
		publisher.Use(middleware.Authenticator)
		publisher.Use(middleware.RequireRole(model.Role.CanManageCatalog))
		publisher.Post("/", h.createCourse)
	})
}

func (h *CatalogHandler) RegisterBookRoutes(r chi.Router) {
	r.Get("/", h.listBooks)
	r.Get("/{bookID}", h.getBook)

	r.Group(func(publisher chi.Router) {
		publisher.Use(middleware.Authenticator)
		publisher.Use(middleware.RequireRole(model.Role.CanManageCatalog))
		publisher.Post("/", h.createBook)
	})
}

func (h *CatalogHandler) listCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.catalogService.ListCourses(r.Context())
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"count": len(courses), "data": courses})
}

func (h *CatalogHandler) getCourse(w http.ResponseWriter, r *http.Request) {
	course, err := h.catalogService.GetCourse(r.Context(), chi.URLParam(r, "courseSlug"))
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, course)
}

func (h *CatalogHandler) createCourse(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	course, err := h.catalogService.CreateCourse(r.Context(), req)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, course)
}

func (h *CatalogHandler) listBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalogService.ListBooks(r.Context())
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]any{"count": len(books), "data": books})
}

func (h *CatalogHandler) getBook(w http.ResponseWriter, r *http.Request) {
	book, err := h.catalogService.GetBook(r.Context(), chi.URLParam(r, "bookID"))
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, book)
}

func (h *CatalogHandler) createBook(w http.ResponseWriter, r *http.Request) {
	var req service.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	book, err := h.catalogService.CreateBook(r.Context(), req)
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, book)
}
