package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	v1 "github.com/mahmoud206/vetratech-mobile-api/api/v1"
	"github.com/mahmoud206/vetratech-mobile-api/internal/config"
	"github.com/mahmoud206/vetratech-mobile-api/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		bootstrap := logger.New(nil)
		bootstrap.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize logger
	log := logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	defer log.Sync()

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout)
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.Mongo.GetMongoURI()).
		SetAppName(cfg.Mongo.AppName).
		SetMaxPoolSize(cfg.Mongo.MaxPoolSize).
		SetConnectTimeout(cfg.Mongo.ConnectTimeout))
	if err != nil {
		cancel()
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		// The driver reconnects on demand, so a failed ping is not fatal.
		log.Warn("MongoDB ping failed", zap.Error(err))
	}
	cancel()
	defer func() {
		dctx, dcancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer dcancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Error("Failed to disconnect from MongoDB", zap.Error(err))
		}
	}()

	// Initialize Reporting Module
	reportsAPI, err := v1.SetupReportsAPI(client, cfg, log)
	if err != nil {
		log.Fatal("Failed to set up reports API", zap.Error(err))
	}
	if !reportsAPI.Fonts.Available() {
		log.Warn("Reports will render with the fallback font", zap.String("font_path", cfg.Reports.FontPath))
	}

	// Setup Router
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(logger.RequestID())
	router.Use(logger.GinMiddleware(log))
	router.Use(logger.Recovery(log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", logger.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", logger.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	// Register Routes
	v1.RegisterReportsRoutes(router, router.Group("/api/v1"), reportsAPI)

	// Start Server
	srv := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started",
		zap.String("addr", srv.Addr),
		zap.Strings("datasets", reportsAPI.Service.Datasets()),
	)

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exiting")
}
