package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/daap14/nextup/internal/api/handler"
	"github.com/daap14/nextup/internal/api/middleware"
	"github.com/daap14/nextup/internal/api/response"
	"github.com/daap14/nextup/internal/auth"
	"github.com/daap14/nextup/internal/presentation"
	"github.com/daap14/nextup/internal/team"
)

// RouterDeps holds all dependencies needed by the router.
type RouterDeps struct {
	DBPinger       handler.DBPinger
	Version        string
	AuthService    *auth.Service
	TeamRepo       team.Repository
	RecordRepo     presentation.Repository
	Rounds         handler.RoundService
	OpenAPISpec    []byte
	AllowedOrigins []string
}

// NewRouter creates and configures a Chi router with all middleware and routes.
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(chimiddleware.Logger)
	r.Use(corsMiddleware(deps.AllowedOrigins))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.Err(w, http.StatusNotFound, "NOT_FOUND", "Route not found", middleware.GetRequestID(req.Context()))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		response.Err(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", middleware.GetRequestID(req.Context()))
	})

	r.Route("/api", func(r chi.Router) {
		healthHandler := handler.NewHealthHandler(deps.DBPinger, deps.Version)
		r.Get("/health", healthHandler.ServeHTTP)

		if len(deps.OpenAPISpec) > 0 {
			openapiHandler := handler.NewOpenAPIHandler(deps.OpenAPISpec)
			r.Get("/openapi.json", openapiHandler.ServeHTTP)
		}

		if deps.AuthService == nil {
			return
		}

		authHandler := handler.NewAuthHandler(deps.AuthService)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.AuthService))

			r.Get("/me", authHandler.Me)

			if deps.TeamRepo != nil && deps.RecordRepo != nil {
				teamHandler := handler.NewTeamHandler(deps.TeamRepo, deps.RecordRepo)
				presentationHandler := handler.NewPresentationHandler(deps.RecordRepo)
				exportHandler := handler.NewExportHandler(deps.TeamRepo, deps.RecordRepo)

				r.Route("/teams", func(r chi.Router) {
					r.Get("/", teamHandler.List)
					r.Post("/", teamHandler.Create)
					r.Post("/reset", teamHandler.Reset)
					r.Delete("/{id}", teamHandler.Delete)
					r.Post("/{id}/notes", teamHandler.UpdateNotes)
					r.Post("/{teamId}/presentation", presentationHandler.Create)
					r.Get("/{teamId}/presentations", presentationHandler.List)
				})
				r.Get("/export", exportHandler.ServeHTTP)
			}

			if deps.Rounds != nil {
				roundHandler := handler.NewRoundHandler(deps.Rounds)
				r.Get("/status", roundHandler.Status)
				r.Post("/randomize", roundHandler.Randomize)
				r.Post("/reset", roundHandler.ResetRound)
			}
		})
	})

	return r
}

// corsMiddleware allows the browser frontend, served from another origin, to
// call the API with a bearer token.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "Content-Disposition"},
		MaxAge:         300,
	})
	return c.Handler
}
