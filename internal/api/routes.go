package api

import (
	"net/http"

	"coachly/fitness-coach/internal/notify"
	"coachly/fitness-coach/internal/resolve"
	"coachly/fitness-coach/internal/service"
	"coachly/fitness-coach/internal/session"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires all handlers into the router. Register and login are
// open; everything else sits behind JWT auth.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	planService service.PlanService,
	mealService service.MealService,
	coachService service.CoachService,
	exerciseService service.ExerciseService,
	notifyService *notify.Service,
	resolver *resolve.Resolver,
	sessionManager *session.Manager,
) {
	views := resolve.NewViews()

	authHandler := NewAuthHandler(authService)
	planHandler := NewPlanHandler(planService, mealService, resolver, views)
	mealHandler := NewMealHandler(mealService)
	sessionHandler := NewSessionHandler(sessionManager, planService)
	exerciseHandler := NewExerciseHandler(exerciseService, resolver, views)
	notificationHandler := NewNotificationHandler(notifyService)
	coachHandler := NewCoachHandler(coachService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(AuthMiddleware(jwtSecret))
	{
		protected.GET("/me", authHandler.Me)
		protected.POST("/onboarding", authHandler.CompleteOnboarding)

		planGroup := protected.Group("/plans")
		{
			planGroup.GET("", planHandler.List)
			planGroup.POST("", planHandler.Generate)
			planGroup.GET("/active", planHandler.Active)
			planGroup.POST("/:planId/activate", planHandler.Activate)
			planGroup.DELETE("/:planId", planHandler.Delete)
			planGroup.GET("/:planId/stats", planHandler.Stats)
			planGroup.POST("/:planId/progress", planHandler.RecordProgress)
			planGroup.GET("/:planId/days/:day", planHandler.DayView)

			// Meal overrides live under their plan.
			planGroup.GET("/:planId/meals", mealHandler.GetEffective)
			planGroup.POST("/:planId/meals/override", mealHandler.ApplyOverride)
			planGroup.POST("/:planId/meals/generate", mealHandler.GenerateMeal)
		}
		protected.DELETE("/overrides/:overrideId", mealHandler.RevertOverride)

		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.POST("/match", exerciseHandler.Match)
			exerciseGroup.POST("/enrich", exerciseHandler.Enrich)
			exerciseGroup.GET("/:exerciseId", exerciseHandler.Get)
			exerciseGroup.GET("/:exerciseId/media", exerciseHandler.GetMediaURLs)
			exerciseGroup.POST("/:exerciseId/media", exerciseHandler.RequestMediaUpload)
			exerciseGroup.PUT("/:exerciseId/media", exerciseHandler.ConfirmMediaUpload)
		}

		sessionGroup := protected.Group("/sessions")
		{
			sessionGroup.POST("", sessionHandler.Start)
			sessionGroup.GET("/current", sessionHandler.Current)
			sessionGroup.POST("/:sessionId/pause", sessionHandler.Pause)
			sessionGroup.POST("/:sessionId/resume", sessionHandler.Resume)
			sessionGroup.POST("/:sessionId/skip", sessionHandler.Skip)
			sessionGroup.POST("/:sessionId/abort", sessionHandler.Abort)
		}

		notificationGroup := protected.Group("/notifications")
		{
			notificationGroup.GET("", notificationHandler.Poll)
			notificationGroup.POST("/read", notificationHandler.MarkRead)
		}

		coachGroup := protected.Group("/coach")
		{
			coachGroup.POST("/messages", coachHandler.Send)
			coachGroup.GET("/messages", coachHandler.History)
			coachGroup.DELETE("/messages", coachHandler.Clear)
		}
	}
}
