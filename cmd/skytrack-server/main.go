// SkyTrack Server
// Tracks one flight at a time and serves its status over REST + WebSocket
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/unklstewy/skytrack/internal/api"
	"github.com/unklstewy/skytrack/internal/app"
	"github.com/unklstewy/skytrack/internal/auth"
	"github.com/unklstewy/skytrack/internal/db"
	"github.com/unklstewy/skytrack/pkg/retry"
	"github.com/unklstewy/skytrack/pkg/tracker"
)

var (
	configPath = flag.String("config", "configs/config.json", "Path to configuration file")
	track      = flag.String("track", "", "Flight number to start tracking immediately")
	printToken = flag.Bool("print-token", false, "Print an operator token for the control API and exit")
)

func main() {
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	authSvc := auth.NewService(auth.Config{
		JWTSecret:     cfg.Auth.JWTSecret,
		TokenDuration: time.Duration(cfg.Auth.TokenHours) * time.Hour,
	})

	if *printToken {
		token, err := authSvc.GenerateToken("cli", auth.RoleOperator)
		if err != nil {
			log.Fatalf("Failed to generate token: %v", err)
		}
		fmt.Println(token)
		return
	}

	log.Println("🚀 Starting SkyTrack server...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo := app.NewRepository(cfg, app.NewFeed(cfg.Feed))
	latest := tracker.NewLatest()

	deps := api.Deps{
		Flights:       repo,
		Latest:        latest,
		Auth:          authSvc,
		DefaultRegion: app.DefaultRegion(cfg),
	}

	var opts []tracker.Option
	if cfg.Database.Enabled {
		database, err := db.ReconnectWithRetry(ctx, cfg.Database, retry.DefaultConfig())
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer database.Close()

		if err := database.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}

		history := db.NewStatusRepository(database)
		opts = append(opts, tracker.WithRecorder(history))
		deps.History = history
		deps.DBHealth = func(ctx context.Context) bool { return db.HealthCheck(ctx, database) }
		deps.DBStats = database.GetStats

		go cleanupHistory(ctx, database)
		log.Println("✅ Status history enabled")
	}

	trk := tracker.New(repo, latest, app.TrackerConfig(cfg), opts...)
	defer trk.Close()
	deps.Tracker = trk

	if !authSvc.Enabled() {
		log.Println("⚠️  No JWT secret configured; tracking control is open")
	}

	if *track != "" {
		trk.Start(*track)
	}

	srv := api.NewServer(deps)
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     srv.Handler(),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
		// no WriteTimeout: /ws connections are long-lived
	}

	go func() {
		log.Printf("📡 Server listening on http://%s", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server failed: %v", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Println("👋 Shutting down server...")

	trk.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped")
}

// cleanupHistory trims status history older than a week, once an hour.
func cleanupHistory(ctx context.Context, database *db.DB) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := database.CleanupOldData(ctx, 7*24*time.Hour)
			if err != nil {
				log.Printf("History cleanup failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("Removed %d old status records", n)
			}
		}
	}
}
