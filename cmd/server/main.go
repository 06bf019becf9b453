package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coachly/fitness-coach/internal/ai"
	"coachly/fitness-coach/internal/api"
	"coachly/fitness-coach/internal/config"
	"coachly/fitness-coach/internal/logging"
	"coachly/fitness-coach/internal/notify"
	"coachly/fitness-coach/internal/repository/mongo"
	"coachly/fitness-coach/internal/resolve"
	"coachly/fitness-coach/internal/service"
	"coachly/fitness-coach/internal/session"
	"coachly/fitness-coach/internal/storage"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.WithError(err).Fatal("could not load config")
	}
	logging.Setup(cfg.Log)
	log.Info("starting fitness coach server")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.WithError(err).Fatal("could not connect to MongoDB")
	}
	defer func() {
		log.Info("disconnecting MongoDB")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.WithError(err).Error("failed to disconnect MongoDB")
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("database connection established")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsurePlanIndexes(ctx, appDB.Collection("plans"))
		mongo.EnsureExerciseIndexes(ctx, appDB.Collection("library_exercises"))
		mongo.EnsureOverrideIndexes(ctx, appDB.Collection("meal_overrides"))
		mongo.EnsureProgressIndexes(ctx, appDB.Collection("progress_records"))
		mongo.EnsureNotificationIndexes(ctx, appDB.Collection("notifications"))
		mongo.EnsureCoachMessageIndexes(ctx, appDB.Collection("coach_messages"))
		log.Info("index creation process completed")
	}()

	// --- Initialize Storage ---
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize S3 storage")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)
	libraryRepo := mongo.NewMongoExerciseLibraryRepository(appDB)
	overrideRepo := mongo.NewMongoOverrideRepository(appDB)
	progressRepo := mongo.NewMongoProgressRepository(appDB)
	notificationRepo := mongo.NewMongoNotificationRepository(appDB)
	coachRepo := mongo.NewMongoCoachMessageRepository(appDB)

	// --- AI Generator ---
	generator := ai.NewGenerator(ai.NewClient(cfg.AI))

	// --- Initialize Services ---
	planService := service.NewPlanService(planRepo, userRepo, overrideRepo, progressRepo, notificationRepo, generator)
	authService := service.NewAuthService(userRepo, planService, cfg.JWT.Secret, cfg.JWT.Expiration)
	mealService := service.NewMealService(planService, overrideRepo, generator)
	coachService := service.NewCoachService(coachRepo, planService, generator)
	exerciseService := service.NewExerciseService(libraryRepo, fileStorage)
	notifyService := notify.NewService(notificationRepo, cfg.Notify.PollBase, cfg.Notify.PollCeiling)
	resolver := resolve.NewResolver(libraryRepo, generator)
	sessionManager := session.NewManager()

	// --- Workout Reminder Scheduler ---
	reminder := notify.NewReminder(userRepo, planRepo, notificationRepo, cfg.Notify.ReminderCron)
	if err := reminder.Start(); err != nil {
		log.WithError(err).Fatal("failed to start reminder scheduler")
	}
	defer reminder.Stop()

	// --- Initialize Gin Engine ---
	router := gin.Default()

	// --- Setup Routes ---
	api.SetupRoutes(router, cfg.JWT.Secret, authService, planService, mealService, coachService, exerciseService, notifyService, resolver, sessionManager)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("address", cfg.Server.Address).Info("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("listen and serve failed")
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.WithError(err).Error("server forced to shutdown")
	}

	// Live workout sessions stop after in-flight requests drain.
	sessionManager.Shutdown()

	log.Info("server exiting")
}
