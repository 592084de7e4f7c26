package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"

	"github.com/codelens/engine/internal/api/handlers"
	mw "github.com/codelens/engine/internal/api/middleware"
)

type Dependencies struct {
	HMACSecret      []byte
	AuthHandler     *handlers.AuthHandler
	ProjectsHandler *handlers.ProjectsHandler
	FilesHandler    *handlers.FilesHandler
	AnalysisHandler *handlers.AnalysisHandler
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.Recovery)
	r.Use(mw.Logging)
	r.Use(mw.CORS)
	r.Use(mw.RateLimit(10, 20))
	r.Use(chimid.Compress(5))

	hh := handlers.NewHealthHandler()
	r.Get("/healthz", hh.Liveness)
	r.Get("/readyz", hh.Readiness)

	r.Route("/api/v1", func(api chi.Router) {
		// Auth routes (public)
		api.Route("/auth", func(ar chi.Router) {
			ar.Post("/register", dep.AuthHandler.Register)
			ar.Post("/login", dep.AuthHandler.Login)
			ar.Post("/demo", dep.AuthHandler.Demo)
		})

		// Protected routes
		api.Group(func(protected chi.Router) {
			protected.Use(mw.Auth(dep.HMACSecret))

			protected.Route("/projects", func(pr chi.Router) {
				pr.Get("/", dep.ProjectsHandler.List)
				pr.Post("/", dep.ProjectsHandler.Create)
				pr.Get("/{id}", dep.ProjectsHandler.Get)
				pr.Delete("/{id}", dep.ProjectsHandler.Delete)
				pr.Post("/{id}/upload", dep.ProjectsHandler.Upload)
				pr.Get("/{id}/files", dep.ProjectsHandler.ListFiles)
				pr.Post("/{id}/analyze", dep.AnalysisHandler.Analyze)
				pr.Get("/{id}/analysis", dep.AnalysisHandler.Latest)
			})

			protected.Route("/files", func(fr chi.Router) {
				fr.Get("/{id}", dep.FilesHandler.Get)
				fr.Patch("/{id}", dep.FilesHandler.Patch)
				fr.Post("/{id}/document", dep.FilesHandler.Document)
				fr.Post("/{id}/improve", dep.FilesHandler.Improve)
			})
		})
	})

	return r
}
