package server

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/BiryukovValeri/rag-knowledge-base/internal/handlers"
	"github.com/BiryukovValeri/rag-knowledge-base/internal/rag"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine rag.Engine
	DB     *sql.DB
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	healthHandler := handlers.NewHealthHandler(deps.DB)
	queryHandler := handlers.NewQueryHandler(deps.Engine)
	answerHandler := handlers.NewAnswerHandler(deps.Engine)

	r.Method(http.MethodGet, "/health", healthHandler)
	r.Route("/rag", func(r chi.Router) {
		r.Method(http.MethodPost, "/query", queryHandler)
		r.Method(http.MethodPost, "/answer", answerHandler)
	})

	return r
}
