package cmd

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

	"github.com/growlab/growlab-cli/internal/dataset"
	"github.com/growlab/growlab-cli/internal/server"
)

var serveListenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	Long: `Serve starts the HTTP API the dashboard frontend talks to. Datasets are
loaded once and cached; POST /api/v1/reload picks up newly uploaded
files without a restart.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg == nil {
		return fmt.Errorf("no configuration loaded (run 'growlab config init')")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	addr := cfg.ListenAddr
	if serveListenAddr != "" {
		addr = serveListenAddr
	}

	log := server.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	store := dataset.NewStore(cfg)
	srv := server.New(cfg, store, log)

	httpServer := &http.Server{
		Handler:      srv.Handler(),
		Addr:         addr,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			log.Error("server shutdown", "err", err)
		}
	}()

	log.Info("starting dashboard API",
		"addr", addr,
		"data_dir", cfg.DataDir,
		"sites", len(cfg.Sites),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveListenAddr, "listen", "", "listen address (overrides config)")
}
