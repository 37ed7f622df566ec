package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/swipxin/Backendswipxin/internal/adapters/httpapi"
	"github.com/swipxin/Backendswipxin/internal/adapters/ws"
	"github.com/swipxin/Backendswipxin/internal/app"
	"github.com/swipxin/Backendswipxin/internal/config"
	"github.com/swipxin/Backendswipxin/internal/core"
	"github.com/swipxin/Backendswipxin/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	_ = godotenv.Load()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var (
		ledger   core.Ledger
		presence core.Presence
		profiles core.ProfileSource
		recorder core.Recorder
	)
	if cfg.HasDB() {
		st, err := store.Connect(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		if err := st.AutoMigrate(); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		ledger, presence, profiles, recorder = st, st, st, st
	} else {
		log.Warn().Msg("no database configured, running on the in-memory nop store")
		nop := store.Nop{}
		ledger, presence, profiles, recorder = nop, nop, nop, nop
	}

	emitter := ws.NewEmitter()
	registry := core.NewRegistry(presence)
	matchmaker := core.NewMatchmaker(core.MatchmakerOpts{
		Registry:       registry,
		Events:         emitter,
		Ledger:         ledger,
		Recorder:       recorder,
		MatchCost:      cfg.MatchCost,
		FreeMinBalance: cfg.FreeMinBalance,
	})
	rooms := core.NewRoomManager(emitter)
	relay := core.NewRelay(rooms, emitter, recorder)

	coord := &app.Coordinator{
		Registry:   registry,
		Matchmaker: matchmaker,
		Rooms:      rooms,
		Relay:      relay,
		Events:     emitter,
		Profiles:   profiles,
	}

	sweeper := &app.Sweeper{
		Matchmaker: matchmaker,
		Rooms:      rooms,
		SweepEvery: cfg.SweepInterval,
		GCEvery:    cfg.GCInterval,
		StaleAfter: cfg.QueueStaleAfter,
	}
	go sweeper.Run(ctx)

	r := httpapi.SetupRouter(ctx, cfg, coord)
	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(r)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Swipxin matching server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
