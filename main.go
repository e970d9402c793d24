package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/labmanager/labmanager-api/app"
	"github.com/labmanager/labmanager-api/config"
	"github.com/labmanager/labmanager-api/services"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	logger.Info("Starting lab manager API server...", zap.String("env", cfg.GoEnv))
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := config.ConnectDatabase(cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	if err := config.Migrate(db); err != nil {
		return err
	}
	logger.Info("Database migration completed successfully")

	var opts app.Options
	if cfg.UsesRedis() {
		client, err := config.ConnectRedis(cfg)
		if err != nil {
			return err
		}
		defer client.Close()
		opts.Redis = client
		logger.Info("Connected to Redis", zap.String("addr", cfg.RedisAddr))
	}
	if cfg.UsesS3() {
		s3Service, err := services.NewS3Service(ctx, cfg)
		if err != nil {
			return err
		}
		opts.Objects = s3Service
		logger.Info("Label archive enabled", zap.String("bucket", cfg.AWSS3Bucket))
	}

	lab, err := app.New(cfg, db, logger, opts)
	if err != nil {
		return err
	}
	if err := lab.Start(ctx); err != nil {
		return err
	}
	defer lab.Close()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           lab.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server is running", zap.String("addr", "http://localhost:"+cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	lab.Hub.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
