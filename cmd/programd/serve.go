package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httptransport "github.com/example/program-scheduler/internal/http"
	"github.com/example/program-scheduler/internal/persistence/sqlite"
)

func newServeCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port > 0 {
				a.cfg.HTTPPort = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.withStore(ctx, func(_ *sqlite.Store, svcs services) error {
				return a.serve(ctx, svcs)
			})
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (overrides http_port)")
	return cmd
}

// newHandler builds the API router for svcs.
func (a *app) newHandler(svcs services) http.Handler {
	return httptransport.NewRouter(httptransport.RouterConfig{
		Program:   httptransport.NewProgramHandler(svcs.program, a.logger),
		Reminders: httptransport.NewReminderHandler(svcs.reminders, a.cfg.Reminders.RefreshInterval, a.logger),
		Catalog:   httptransport.NewCatalogHandler(svcs.catalog, a.logger),
		Logger:    a.logger,
	})
}

func (a *app) serve(ctx context.Context, svcs services) error {
	if !a.cfg.WhatsApp.Configured() {
		a.logger.Warn("whatsapp credentials missing, reminder sending is disabled")
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.HTTPPort),
		Handler:           a.newHandler(svcs),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      0, // the live reminder feed holds connections open
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	a.logger.Info("program API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
