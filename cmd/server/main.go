package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"tablevote-backend-go/internal/api"
	"tablevote-backend-go/internal/config"
	"tablevote-backend-go/internal/core"
	"tablevote-backend-go/internal/db"
	"tablevote-backend-go/internal/middleware"
)

func main() {
	// Load .env file. In production the variables come from the environment
	// directly, so a missing file is not an error.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	var logger *zap.Logger
	var errZap error
	if os.Getenv("GIN_MODE") == gin.ReleaseMode {
		logger, errZap = zap.NewProduction()
	} else {
		logger, errZap = zap.NewDevelopment()
	}
	if errZap != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize zap logger: %v", errZap)
	}
	defer logger.Sync()

	appConfig, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	logger.Info("Configuration loaded successfully",
		zap.String("port", appConfig.Port),
		zap.String("gin_mode", appConfig.GinMode),
		zap.String("firebase_project_id", appConfig.FirebaseProjectID),
	)

	gin.SetMode(appConfig.GinMode)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInit()
	if err := db.InitFirestore(initCtx, appConfig); err != nil {
		logger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase clients", zap.Error(err))
	}
	logger.Info("Firestore and Firebase Auth clients initialized")

	fsClient := db.GetFirestoreClient()
	defer fsClient.Close()

	// Repositories
	userRepo := db.NewFirestoreUserRepository(fsClient)
	groupRepo := db.NewFirestoreGroupRepository(fsClient)
	pollRepo := db.NewFirestorePollRepository(fsClient)

	// Services
	userService := core.NewUserService(userRepo)
	groupService := core.NewGroupService(groupRepo)
	pollService := core.NewPollService(pollRepo)
	watcher := core.NewGroupWatcher(groupRepo, logger)

	// The user directory backs member search. Warm it up at startup; a
	// failure here is not fatal since it refreshes on demand.
	directory := core.NewDirectoryCache(userRepo)
	if err := directory.Refresh(initCtx); err != nil {
		logger.Warn("Failed to warm user directory cache at startup", zap.Error(err))
	} else {
		logger.Info("User directory cache warmed", zap.Int("users", directory.Len()))
	}

	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig))
	} else {
		logger.Warn("CLIENT_URL is not set; CORS middleware is disabled")
	}

	api.SetupRoutes(router, appConfig, logger, userService, groupService, pollService, watcher, directory)

	srv := &http.Server{
		Addr:    ":" + appConfig.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("CRITICAL_ERROR: Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exiting")
}
