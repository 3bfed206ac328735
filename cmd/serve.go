package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/betonlab/mixopt/internal/server"
	"github.com/betonlab/mixopt/internal/store"
)

var (
	serveAddr    string
	serveDataDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves the job API: optimization runs are created over HTTP, progress
streams via SSE and results, traces and charts are served from the
data directory.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "Base directory for run persistence (default from config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfgFile, err := loadConfig()
	if err != nil {
		return err
	}

	addr := cfgFile.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	dataDir := cfgFile.Server.DataDir
	if serveDataDir != "" {
		dataDir = serveDataDir
	}

	runStore, err := store.NewFSStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}

	srv := server.NewServer(addr, runStore, dataDir)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
