package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"

	"learnhub/internal/api/handler"
	"learnhub/internal/api/middleware"
	"learnhub/internal/app/service"
	"learnhub/internal/common/security"
	"learnhub/internal/platform/config"
	"learnhub/internal/platform/ratelimit"
)

func NewRouter(
	cfg *config.Config,
	logger *slog.Logger,
	tokens *security.TokenIssuer,
	limiter *ratelimit.Limiter,
	authService *service.AuthService,
	catalogService *service.CatalogService,
	submissionService *service.SubmissionService,
	contactService *service.ContactService,
	userService *service.UserService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the session token from the Authorization header or the
	// "token" cookie and puts the claims in context. Enforcement
	// happens per route group in the Authenticator middleware.
	r.Use(jwtauth.Verify(tokens.JWTAuth(), jwtauth.TokenFromHeader, security.TokenFromSessionCookie))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService, cfg, logger)
		v1.Route("/auth", func(auth chi.Router) {
			auth.Use(limiter.Handler)
			authHandler.RegisterRoutes(auth)
		})

		testHandler := handler.NewTestHandler(catalogService, submissionService, logger)
		v1.Route("/tests", testHandler.RegisterRoutes)

		catalogHandler := handler.NewCatalogHandler(catalogService, logger)
		v1.Route("/courses", catalogHandler.RegisterCourseRoutes)
		v1.Route("/books", catalogHandler.RegisterBookRoutes)

		contactHandler := handler.NewContactHandler(contactService, logger)
		v1.Route("/contact", contactHandler.RegisterRoutes)

		userHandler := handler.NewUserHandler(userService, logger)
		v1.Route("/users", userHandler.RegisterRoutes)
	})

	return r
}
