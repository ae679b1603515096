// Package api exposes the stimulus engine to the rendering collaborator over
// HTTP. The surface is JSON-only: scatterplot rendering, axes, and widgets
// belong to the study runner's front end.
package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/JiarongF/StatsLearning/domain/core"
	"github.com/JiarongF/StatsLearning/internal"
	"github.com/JiarongF/StatsLearning/internal/generator"
	"github.com/JiarongF/StatsLearning/internal/session"
	"github.com/JiarongF/StatsLearning/ports"
)

// App is the stimulus HTTP application.
type App struct {
	router     *chi.Mux
	generator  *generator.Generator
	provenance ports.ProvenanceStore
	answers    ports.AnswerStore
	sink       ports.AnswerSink
	logger     *internal.Logger

	mu       sync.RWMutex
	sessions map[core.SessionID]*session.Session
}

// Config holds the app's collaborators.
type Config struct {
	Generator  *generator.Generator
	Provenance ports.ProvenanceStore
	Answers    ports.AnswerStore
	Sink       ports.AnswerSink
	Logger     *internal.Logger
}

// NewApp creates the stimulus application.
func NewApp(config Config) *App {
	logger := config.Logger
	if logger == nil {
		logger = internal.DefaultLogger
	}

	app := &App{
		router:     chi.NewRouter(),
		generator:  config.Generator,
		provenance: config.Provenance,
		answers:    config.Answers,
		sink:       config.Sink,
		logger:     logger,
		sessions:   make(map[core.SessionID]*session.Session),
	}

	app.setupMiddleware()
	app.setupRoutes()
	return app
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	// Stateless generator surface
	a.router.Post("/api/generate", a.handleGenerate)
	a.router.Post("/api/generate/clustered", a.handleGenerateClustered)
	a.router.Post("/api/pearson", a.handlePearson)

	// Session surface
	a.router.Post("/api/sessions", a.handleCreateSession)
	a.router.Get("/api/sessions/{id}", a.handleGetSession)
	a.router.Put("/api/sessions/{id}/correlation", a.handleSetCorrelation)
	a.router.Post("/api/sessions/{id}/points", a.handleAddUserPoint)
	a.router.Delete("/api/sessions/{id}/points/{index}", a.handleRemoveUserPoint)
	a.router.Post("/api/sessions/{id}/answer", a.handleSubmitAnswer)
	a.router.Post("/api/sessions/{id}/replay", a.handleReplay)
	a.router.Get("/api/sessions/{id}/instructions", a.handleInstructions)
}

// Router returns the chi router for mounting or serving.
func (a *App) Router() http.Handler {
	return a.router
}

// Prewarm builds base vectors for the given seeds concurrently so the first
// interaction of each stimulus has no cold-cache hitch.
func (a *App) Prewarm(ctx context.Context, seeds []int64, sampleSize int) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, seed := range seeds {
		seed := seed
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			_, err := a.generator.Base(sampleSize, seed)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("prewarmed %d base vectors (n=%d)", len(seeds), sampleSize)
	return nil
}

// lookupSession fetches a live session by ID.
func (a *App) lookupSession(id string) (*session.Session, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	s, ok := a.sessions[core.SessionID(id)]
	return s, ok
}

// storeSession registers a live session.
func (a *App) storeSession(s *session.Session) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sessions[s.ID()] = s
}
