//go:generate go tool templ generate

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

	"photo-board/blobstore"
	"photo-board/helpers"
	"photo-board/models"
	"photo-board/repositories"
	"photo-board/routes"
	"photo-board/services"
	"photo-board/templates"
	"photo-board/utils"

	"cloud.google.com/go/storage"
	"github.com/Netflix/go-env"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	var config models.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := helpers.NewLogger(os.Stdout, config.LogLevel)

	loc, err := config.Location()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repository, closeRepository, err := openRepository(config, log)
	if err != nil {
		return err
	}
	defer closeRepository()

	store, closeStore, err := openBlobStore(config)
	if err != nil {
		return err
	}
	defer closeStore()

	uploader := blobstore.NewUploader(store, config.RetryPolicy(), log)
	service := services.NewMessageService(repository, uploader, log, config.MaxUploadSize)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	routes.PhotoBoardRouter(r, routes.Dependencies{
		Config:    config,
		Service:   service,
		Formatter: templates.NewFormatter(loc, config.StorageBasePath()),
		Log:       log,
	})

	server := &http.Server{
		Addr:              config.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting",
			"address", server.Addr,
			"store", config.StoreDriver,
			"blobs", config.BlobDriver,
			"storage_base_path", config.StorageBasePath())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openRepository(config models.Config, log *slog.Logger) (repositories.MessageRepository, func(), error) {
	switch config.StoreDriver {
	case models.StoreDriverBadger:
		db, err := utils.OpenBadger(config.BadgerFilepath)
		if err != nil {
			return nil, nil, err
		}
		repository, err := repositories.NewBadgerMessageRepository(db, log)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repository, func() {
			log.Info("Closing BadgerDB...")
			if err := repository.Close(); err != nil {
				log.Error("Error releasing message sequence", "error", err)
			}
			if err := db.Close(); err != nil {
				log.Error("Error closing database", "error", err)
			}
		}, nil
	default:
		db, err := utils.SetupDatabase(config.DatabaseDSN(), log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to setup database: %w", err)
		}
		return repositories.NewPostgresMessageRepository(db), func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database", "error", err)
			}
		}, nil
	}
}

func openBlobStore(config models.Config) (blobstore.Store, func(), error) {
	switch config.BlobDriver {
	case models.BlobDriverDisk:
		store, err := blobstore.NewDiskStore(config.UploadDir)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		client, err := storage.NewClient(context.Background())
		if err != nil {
			return nil, nil, fmt.Errorf("storage client: %w", err)
		}
		return blobstore.NewGCSStore(client, config.Bucket()), func() { _ = client.Close() }, nil
	}
}
