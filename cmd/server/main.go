package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/moeenhq/diwan/internal/adapters/http"
	signaladapter "github.com/moeenhq/diwan/internal/adapters/signal"
	"github.com/moeenhq/diwan/internal/app"
	"github.com/moeenhq/diwan/internal/capability"
	"github.com/moeenhq/diwan/internal/compliance"
	"github.com/moeenhq/diwan/internal/config"
	"github.com/moeenhq/diwan/internal/domain"
	"github.com/moeenhq/diwan/internal/report"
	"github.com/moeenhq/diwan/internal/storage"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	store, err := storage.NewStore(cfg.UploadsDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open uploads dir")
	}

	capClient := capability.New(cfg.CapabilityBaseURL, cfg.CapabilityKey, cfg.CapabilityTimeout)

	registry := app.NewRegistry(cfg.RoomCapacity)
	tracker := app.NewSpeakerTracker(cfg.SpeakerThreshold, cfg.SpeakerDecay)
	frames := compliance.NewFrameCache()

	ctl := &signaladapter.Controller{
		Registry:  registry,
		Tracker:   tracker,
		Frames:    frames,
		ReadLimit: cfg.ReadLimit,
	}

	monitor := compliance.NewMonitor(compliance.MonitorConfig{
		Poll:          cfg.CompliancePoll,
		MinInterval:   cfg.ComplianceMinInterval,
		Timeout:       cfg.CapabilityTimeout,
		DedupWindow:   cfg.AlertDedupWindow,
		DisplayWindow: cfg.AlertDisplayWindow,
	}, capClient, registry, frames, ctl)
	ctl.Monitor = monitor

	lifecycle := app.NewLifecycleCoordinator(registry, ctl, cfg.EndGracePeriod)
	lifecycle.OnTeardown(func(roomID domain.RoomID) {
		monitor.StopRoom(roomID)
		tracker.ClearRoom(roomID)
	})
	ctl.Lifecycle = lifecycle

	pipeline := report.NewPipeline(store, capClient, capClient, registry, cfg.TranscribeTimeout, cfg.CapabilityTimeout)

	r := router.SetupRouter(ctx, router.Deps{
		Cfg:        cfg,
		Registry:   registry,
		Signal:     ctl,
		Monitor:    monitor,
		Classifier: capClient,
		Pipeline:   pipeline,
		Ledger:     report.NewLedger(),
		Store:      store,
	})
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	monitor.Start()

	go func() {
		log.Info().Str("addr", addr).Msg("Diwan server started")
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
	monitor.Stop()
	lifecycle.Stop()
	log.Info().Msg("Server exited gracefully")
}
