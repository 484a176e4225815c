package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"machinery-service/internal/config"
	"machinery-service/internal/machinery/handler"
	"machinery-service/internal/machinery/service"
	"machinery-service/internal/metrics"
	"machinery-service/internal/subsystem"
	serverhttp "machinery-service/server/http"
)

func main() {
	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	tables, err := service.LoadTables(cfg.MachineryFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.MachineryFile).Msg("machinery tables")
	}
	for _, is := range tables.Issues {
		logger.Warn().Str("kind", string(is.Kind)).Str("raw", is.Raw).Str("canonical", is.Canonical).Str("kept", is.Kept).Msg("alias table")
	}

	defs, err := subsystem.LoadCatalog(cfg.SubsystemsFile)
	if err != nil {
		logger.Fatal().Err(err).Str("file", cfg.SubsystemsFile).Msg("subsystem catalog")
	}

	m, err := metrics.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("metrics")
	}
	m.SetAliasIssues(len(tables.Issues))

	svc := handler.NewService(cfg, tables, defs, m)
	r := serverhttp.NewRouter(svc, logger)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info().
		Str("addr", cfg.Addr()).
		Int("aliases", tables.Aliases.Len()).
		Int("alias_issues", len(tables.Issues)).
		Int("subsystems", len(defs)).
		Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info().Msg("bye")
}
