package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "smarthire/docs" // Swagger docs
	"smarthire/internal/api"
	"smarthire/internal/archive"
	"smarthire/internal/audit"
	"smarthire/internal/config"
	"smarthire/internal/logger"
	"smarthire/internal/service"
	"smarthire/internal/storage"
)

// @title SmartHire Candidate Intake API
// @version 1.0
// @description Turns inbound messages and resume attachments into structured candidate records

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /api

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open candidate store")
	}

	var sink *audit.SQLSink
	if cfg.AuditDatabaseURL != "" {
		db, err := storage.NewDB(cfg.AuditDatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to audit database")
		}
		defer db.Close()

		sink = audit.NewSQLSink(db.GetConnection(), cfg.AuditCapacity)
		if err := sink.Init(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to prepare audit table")
		}
		defer sink.Close()
		log.Info().Msg("durable audit sink enabled")
	}

	var recorder *audit.Recorder
	if sink != nil {
		recorder = audit.NewRecorder(cfg.AuditCapacity, sink)
	} else {
		recorder = audit.NewRecorder(cfg.AuditCapacity, nil)
	}

	parser, materializer := service.NewPipeline(cfg)
	ingestion := service.NewIngestion(parser, materializer, store, archive.Open(ctx, cfg), recorder)
	candidates := service.NewCandidates(store, recorder)

	apiSrv := api.NewAPI(context.WithoutCancel(ctx), ingestion, candidates, recorder, cfg.QueueSize)
	router := api.NewRouter(apiSrv)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute, // OCR and enrichment can be slow
		IdleTimeout:  120 * time.Second,
	}

	// Closed once in-flight requests have finished, so the ingest queue is
	// never closed under a running handler.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Bool("enrichment", cfg.EnrichmentEnabled()).
		Msg("API server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}

	<-drained
	apiSrv.Shutdown()
	log.Info().Msg("server stopped")
}
