package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tablevote-backend-go/internal/config"
	"tablevote-backend-go/internal/core"
	"tablevote-backend-go/internal/db"
	"tablevote-backend-go/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and
// middleware. Global middleware (logging, recovery, CORS) is applied to the
// router before this function is called, in main.go.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	userService core.UserService,
	groupService core.GroupService,
	pollService core.PollService,
	watcher *core.GroupWatcher,
	directory *core.DirectoryCache,
) {
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		logger.Fatal("CRITICAL_SETUP_ERROR: Firebase Auth client is not initialized. AuthMiddleware cannot be created, and routes will not be set up.")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient)

	authHandler := NewAuthHandler(userService)
	userHandler := NewUserHandler(userService, directory)
	groupHandler := NewGroupHandler(groupService, watcher)
	pollHandler := NewPollHandler(pollService)

	apiV1 := router.Group("/api/v1")
	{
		// --- User and Directory Endpoints ---
		usersRouteGroup := apiV1.Group("/users", authMW.VerifyToken())
		{
			// Called after client-side Firebase login/signup to ensure the
			// directory entry exists.
			usersRouteGroup.POST("/initialize", authHandler.InitializeUserProfile)
			usersRouteGroup.GET("/me", userHandler.GetCurrentUserProfile)
			usersRouteGroup.GET("/search", userHandler.SearchUsers)
			usersRouteGroup.POST("/search/refresh", userHandler.RefreshDirectory)
		}

		// --- Group Endpoints ---
		groupsRouteGroup := apiV1.Group("/groups", authMW.VerifyToken())
		{
			groupsRouteGroup.POST("", groupHandler.CreateGroup)
			groupsRouteGroup.GET("", groupHandler.ListGroups)
			groupsRouteGroup.GET("/:groupId", groupHandler.GetGroup)
			groupsRouteGroup.PUT("/:groupId/members", groupHandler.UpdateMembers)
			groupsRouteGroup.POST("/:groupId/restaurants", groupHandler.AddRestaurants)
			groupsRouteGroup.POST("/:groupId/leave", groupHandler.LeaveGroup)
			groupsRouteGroup.DELETE("/:groupId", groupHandler.DeleteGroup)

			// Live read model of one group as a server-sent-event stream.
			groupsRouteGroup.GET("/:groupId/events", groupHandler.StreamGroup)

			// Poll Endpoints (nested under the owning group)
			pollsRouteGroup := groupsRouteGroup.Group("/:groupId/polls")
			{
				pollsRouteGroup.POST("", pollHandler.CreatePoll)
				pollsRouteGroup.GET("/:pollId", pollHandler.GetPoll)
				pollsRouteGroup.POST("/:pollId/vote", pollHandler.Vote)
				pollsRouteGroup.POST("/:pollId/end", pollHandler.EndPoll)
			}
		}
	}

	// --- General Health Check Endpoint ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "tablevote backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
