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

	"essencialform/internal/crm"
	"essencialform/internal/db"
	"essencialform/internal/intake"
	"essencialform/internal/notify"
	"essencialform/internal/server"
	"essencialform/internal/storage"
	"essencialform/internal/store"
	"essencialform/pkg/types"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "Start the HTTP server",
	Action: serve,
}

func serve(cCtx *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	config, err := loadConfig()
	if err != nil {
		return err
	}

	pool, err := db.Connect(ctx, config)
	if err != nil {
		return err
	}
	defer pool.Close()

	submissionRepo := store.NewSubmissionRepository(pool)
	documentRepo := store.NewDocumentRepository(pool)

	provider, err := buildStorageProvider(ctx, config)
	if err != nil {
		return err
	}

	var crmSync intake.CRMSync
	if config.KommoEnabled {
		if config.KommoAccessToken == "" {
			return fmt.Errorf("set KOMMO_ACCESS_TOKEN when KOMMO_ENABLED=true")
		}
		crmSync = crm.NewClient(logger, config.KommoBaseURL, config.KommoAccessToken)
	}

	var notifier intake.Notifier
	if config.WhatsAppEnabled {
		notifier = notify.NewWhatsAppNotifier(
			logger,
			config.WhatsAppAccessToken,
			config.WhatsAppPhoneNumberID,
			config.WhatsAppRecipients,
		)
	}

	orchestrator := intake.NewOrchestrator(
		logger,
		provider,
		documentRepo,
		crmSync,
		notifier,
		time.Duration(config.FanOutTimeoutSec)*time.Second,
	)

	srv := server.New(config, logger, submissionRepo, documentRepo, orchestrator)

	go func() {
		logger.WithField("port", config.ServerPort).Infof("server starting http://localhost:%d", config.ServerPort)
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}

	// Let in-flight fan-out runs settle before the pool closes.
	orchestrator.Wait()

	return nil
}

func buildStorageProvider(ctx context.Context, config *types.Config) (storage.Provider, error) {
	switch config.StorageBackend {
	case "drive":
		return storage.NewDriveProvider(ctx, config.DriveCredentialsFile, config.DriveParentFolderID)
	default:
		awsConfig, err := loadAWSConfig(ctx, config.S3Region)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Provider(s3.NewFromConfig(awsConfig), config.S3Bucket, config.S3Region), nil
	}
}
