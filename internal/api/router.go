package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Rrens/tutor-chat/internal/api/handler"
	customMiddleware "github.com/Rrens/tutor-chat/internal/api/middleware"
	"github.com/Rrens/tutor-chat/internal/config"
	"github.com/Rrens/tutor-chat/internal/llm"
	"github.com/Rrens/tutor-chat/internal/security"
	"github.com/Rrens/tutor-chat/internal/service"
)

// Dependencies are the wired components the router serves
type Dependencies struct {
	Store     handler.Pinger
	Chat      *service.ChatService
	Registry  *service.SessionRegistry
	Tokens    *security.TokenManager
	LLMRouter *llm.Router
	// Limiter may be nil when Redis is disabled
	Limiter customMiddleware.Limiter
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	origins := cfg.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	sessionHandler := handler.NewSessionHandler(deps.Chat, deps.Registry, deps.Tokens, deps.LLMRouter)
	conversationHandler := handler.NewConversationHandler(deps.Chat)
	referenceHandler := handler.NewReferenceHandler(deps.Chat, cfg.Security.MaxUpload)

	sessionAuth := customMiddleware.NewSessionAuth(deps.Tokens, deps.Registry)
	rateLimit := customMiddleware.NewRateLimitMiddleware(deps.Limiter)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck)
		r.Get("/ready", handler.ReadyCheck(deps.Store))
		r.Get("/llm-providers", handler.ListLLMProviders(deps.LLMRouter))

		// Session creation validates provider keys, so it is limited per address
		r.With(rateLimit.Limit).Post("/sessions", sessionHandler.Create)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(sessionAuth.Authenticate)
			r.Use(rateLimit.Limit)

			r.Route("/session", func(r chi.Router) {
				r.Get("/", sessionHandler.Get)
				r.Post("/messages", sessionHandler.Message)
				r.Post("/reset", sessionHandler.Reset)
				r.Post("/reload/{conversationID}", sessionHandler.Reload)
			})

			r.Route("/conversations", func(r chi.Router) {
				r.Get("/", conversationHandler.List)

				r.Route("/{conversationID}", func(r chi.Router) {
					r.Get("/messages", conversationHandler.Messages)
					r.Delete("/", conversationHandler.Delete)
					r.Get("/export", conversationHandler.Export)
				})
			})

			r.Get("/reference-document", referenceHandler.Get)
			r.Put("/reference-document", referenceHandler.Put)
		})
	})

	return r
}
