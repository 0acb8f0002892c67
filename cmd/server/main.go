package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/mini-hcmc-metro/tracker/internal/config"
	"github.com/mini-hcmc-metro/tracker/internal/eta"
	"github.com/mini-hcmc-metro/tracker/internal/handlers"
	"github.com/mini-hcmc-metro/tracker/internal/schedule"
	"github.com/mini-hcmc-metro/tracker/internal/sim"
	"github.com/mini-hcmc-metro/tracker/internal/snapshot"
)

func main() {
	log.Println("Starting metro tracker service...")

	// Load .env first, then .env.local which overrides for local development.
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	cfg := config.Load()
	log.Printf("Config loaded: tick_interval=%v, parallelism=%d", cfg.TickInterval, cfg.WalkParallelism)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open schedule store: %v", err)
	}
	defer store.Close()
	log.Println("Schedule store connected")

	chaosSeed := cfg.ChaosSeed
	if chaosSeed == 0 {
		chaosSeed = time.Now().UnixNano()
	}

	snapshots := snapshot.NewStore()
	walker := sim.NewWalker(store, sim.NewChaos(chaosSeed), cfg.WalkParallelism)
	ticker := sim.NewTicker(walker, snapshots, cfg.TickInterval)
	ticker.Start(ctx)
	defer ticker.Stop()

	fleetHandler := handlers.NewFleetHandler(snapshots)
	etaHandler := handlers.NewETAHandler(snapshots, store, eta.NewProjector(chaosSeed))
	healthHandler := handlers.NewHealthHandler(store)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))

	r.Get("/health", healthHandler.GetHealth)
	r.Get("/healthz", healthHandler.GetHealthz)
	r.Get("/api/fleet/positions", fleetHandler.GetPositions)
	r.Get("/api/fleet/positions.pb", fleetHandler.GetPositionsPB)
	r.Get("/api/fleet/positions/{trainId}", fleetHandler.GetTrainPosition)
	r.Get("/api/eta", etaHandler.GetETA)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("API server starting on :%s", cfg.Port)
		log.Println("  GET /api/fleet/positions[?line_id=]")
		log.Println("  GET /api/fleet/positions.pb")
		log.Println("  GET /api/fleet/positions/{trainId}")
		log.Println("  GET /api/eta?station_id=&line_id=")
		log.Println("  GET /health")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	ticker.Stop()
	log.Println("Goodbye!")
}

func openStore(ctx context.Context, cfg *config.Config) (schedule.Store, error) {
	if cfg.UsePostgres() {
		log.Println("Using Postgres schedule store")
		return schedule.OpenPostgres(ctx, cfg.DatabaseURL)
	}
	log.Printf("Using SQLite schedule store: %s", cfg.DatabasePath)
	return schedule.OpenSQLite(cfg.DatabasePath)
}
