package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/JiarongF/StatsLearning/adapters/postgres"
	"github.com/JiarongF/StatsLearning/internal"
	"github.com/JiarongF/StatsLearning/internal/api"
	"github.com/JiarongF/StatsLearning/internal/config"
	"github.com/JiarongF/StatsLearning/internal/generator"
	"github.com/JiarongF/StatsLearning/internal/migration"
	"github.com/JiarongF/StatsLearning/internal/session"
	"github.com/JiarongF/StatsLearning/ports"
)

func main() {
	// Load .env file if present (ignore error in production)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()

	cache, err := generator.NewBaseCache(cfg.Study.CacheSize)
	if err != nil {
		log.Fatalf("Failed to create base cache: %v", err)
	}
	gen := generator.New(cache)

	var provenance ports.ProvenanceStore
	var answers ports.AnswerStore

	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := migration.NewRunner().Run(ctx, db); err != nil {
			cancel()
			log.Fatalf("Failed to run migrations: %v", err)
		}
		cancel()

		provenance = postgres.NewProvenanceRepository(db)
		answers = postgres.NewAnswerRepository(db)
		logger.Info("using postgres stores")
	} else {
		// No database configured: the study still runs, sessions just
		// don't survive a restart.
		provenance = session.NewMemoryProvenanceStore()
		answers = session.NewMemoryAnswerStore()
		logger.Warn("DATABASE_URL not set, using in-memory stores")
	}

	app := api.NewApp(api.Config{
		Generator:  gen,
		Provenance: provenance,
		Answers:    answers,
		Sink:       session.NewLoggingSink(logger),
		Logger:     logger,
	})

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		return app.Prewarm(ctx, cfg.Study.PrewarmSeeds, cfg.Study.DefaultSampleSize)
	})

	g.Go(func() error {
		addr := ":" + cfg.Server.Port
		logger.Info("stimulus server listening on %s", addr)
		return http.ListenAndServe(addr, app.Router())
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
