package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"slotcast/internal/blobstore"
	"slotcast/internal/config"
	"slotcast/internal/server"
	"slotcast/internal/store"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the slotcast API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}

			logger := slog.Default().With("component", "server")

			addr, err := cfg.ListenAddr()
			if err != nil {
				return err
			}

			st, err := openStore(cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			uploads, err := blobstore.NewLocalUploads(cfg.UploadsDir())
			if err != nil {
				return err
			}

			srv, err := server.New(cmd.Context(), st, uploads, server.Options{
				Addr:           addr,
				PublicURL:      cfg.PublicURL,
				AllowedOrigins: cfg.AllowedOrigins,
				MaxUploadBytes: cfg.MaxUploadBytes,
			}, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				<-ctx.Done()
				_ = srv.Shutdown(context.Background())
			}()

			return srv.ListenAndServe()
		},
	}
}

func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		path := cfg.SQLitePath()
		logger.Info("opening sqlite store", "path", path)
		return store.OpenSQLite(path)
	default:
		logger.Info("opening file store", "dir", cfg.DataDir)
		return store.OpenFileStore(cfg.DataDir)
	}
}
