package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/feedline/feedline/cache"
	"github.com/feedline/feedline/config"
	"github.com/feedline/feedline/controllers"
	"github.com/feedline/feedline/middleware"
	"github.com/feedline/feedline/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, pages cache.PageCache) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Route request logging to its own rolling file so the app log stays readable.
	if gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress); err == nil {
		r.Use(utils.GinLogger(gl))
		r.Use(utils.GinRecovery(gl))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Resolve the viewer on every request so public pages can carry
	// viewer-specific state (following/liked flags).
	r.Use(middleware.CurrentUser())
	// Record PV after each request.
	r.Use(middleware.PageViewRecorder(db))

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(db, pages)
	followController := controllers.NewFollowController(db)
	likeController := controllers.NewLikeController(db)
	groupController := controllers.NewGroupController(db)
	statsController := controllers.NewStatsController(db)
	adminController := controllers.NewAdminController(pages)

	// Public pages
	r.GET("/", postController.Index)
	r.GET("/group/:slug/", postController.GroupPosts)
	r.GET("/groups/", groupController.List)
	r.GET("/profile/:username/", postController.Profile)
	r.GET("/posts/:id/", postController.Detail)
	r.GET("/posts/:id/stats/", statsController.GetPostStats)
	r.GET("/stats/", statsController.GetStats)

	// Session layer
	auth := r.Group("/auth")
	auth.Use(middleware.RateLimitMiddleware())
	auth.GET("/signup/", authController.SignupForm)
	auth.POST("/signup/", authController.Signup)
	auth.GET("/login/", authController.LoginForm)
	auth.POST("/login/", authController.Login)
	auth.POST("/logout/", authController.Logout)
	auth.GET("/me/", middleware.LoginRequired(), authController.Me)

	// Authenticated pages and actions. Follow/like forms are reachable by
	// GET too, matching the display-then-submit page flow.
	protected := r.Group("")
	protected.Use(middleware.LoginRequired(), middleware.RateLimitMiddleware())
	protected.GET("/create/", postController.NewPost)
	protected.POST("/create/", postController.CreatePost)
	protected.GET("/posts/:id/edit/", postController.EditForm)
	protected.POST("/posts/:id/edit/", postController.UpdatePost)
	protected.POST("/posts/:id/comment/", postController.AddComment)
	protected.GET("/follow/", followController.Feed)
	protected.GET("/profile/:username/follow/", followController.Follow)
	protected.POST("/profile/:username/follow/", followController.Follow)
	protected.GET("/profile/:username/unfollow/", followController.Unfollow)
	protected.POST("/profile/:username/unfollow/", followController.Unfollow)
	protected.GET("/posts/:id/like/", likeController.Like)
	protected.POST("/posts/:id/like/", likeController.Like)
	protected.GET("/posts/:id/dislike/", likeController.Dislike)
	protected.POST("/posts/:id/dislike/", likeController.Dislike)
	protected.POST("/groups/", groupController.Create)
	protected.POST("/internal/cache/clear/", adminController.ClearCache)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "page not found")
	})

	return r
}
