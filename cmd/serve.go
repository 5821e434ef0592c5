/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoogleCloudPlatform/nl-trip-analytics/internal/answer"
	"github.com/GoogleCloudPlatform/nl-trip-analytics/internal/config"
	"github.com/GoogleCloudPlatform/nl-trip-analytics/internal/handlers"
	"github.com/GoogleCloudPlatform/nl-trip-analytics/internal/middleware"
)

// shutdownGrace bounds how long in-flight requests may run after a
// termination signal arrives.
const shutdownGrace = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP question-answering server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.FromViper(v)

	logger, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	db, err := setupDatabase(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	service := answer.NewService(db, db, db.Dialect(), cfg.ReferenceYear, logger)

	// The schema snapshot is the precondition for every answer; a
	// failure here is fatal rather than deferred to the first request.
	if err := service.Initialize(cmd.Context()); err != nil {
		logger.Error("schema initialization failed", zap.Error(err))
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/api/ask", handlers.NewAskHandler(service, logger))
	mux.Handle("/healthz", handlers.NewHealthHandler(db, logger))

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      middleware.RequestLogger(logger)(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("listening", zap.String("addr", cfg.ListenAddr))
	return serveUntilShutdown(ctx, srv, logger)
}

// serveUntilShutdown runs srv until the listener fails or ctx is
// cancelled, then drains in-flight requests within shutdownGrace.
func serveUntilShutdown(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
