package main

import (
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quartierlabs/rentmap/internal/pipeline"
	"github.com/quartierlabs/rentmap/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve summaries and GeoJSON for the rendering collaborator",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		loader := newLoader()

		// Warm the snapshot so the first request doesn't pay for the fetch.
		// A fetch failure is not fatal here; requests will retry it.
		if _, err := loader.Snapshot(ctx); err != nil {
			zap.L().Warn("serve: initial snapshot load failed", zap.Error(err))
		}

		defaults := pipeline.EstimationCriteria{
			Budget:     cfg.Criteria.Budget,
			Surface:    cfg.Criteria.Surface,
			RentalType: cfg.Criteria.RentalType,
			Eras:       cfg.Criteria.Eras,
			Tier:       pipeline.RentTier(cfg.Criteria.Tier),
		}
		srvr := server.New(loader, cfg.Dataset.Year, defaults)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: srvr.Router(),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
