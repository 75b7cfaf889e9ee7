package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"quickblog/config"
	"quickblog/controllers"
	"quickblog/middleware"
	"quickblog/providers"
	"quickblog/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB, cfg config.AppConfig, cache *utils.Cache, images providers.ImageUploader, ai providers.TextGenerator) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if utils.Logger != nil {
		r.Use(utils.GinLogger(utils.Access))
		r.Use(utils.GinRecovery(utils.Logger))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
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

	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.OK(ctx, gin.H{"status": "ok"})
	})

	blogController := controllers.NewBlogController(db, cfg, images, ai, cache)
	adminController := controllers.NewAdminController(db, cfg)

	auth := middleware.AuthRequired(cfg.JWTSecret)
	limited := middleware.RateLimit(cfg.RateLimitPerMinute)

	api := r.Group("/api")

	blog := api.Group("/blog")
	blog.POST("/submit", limited, blogController.SubmitBlogForReview)
	blog.GET("/all", blogController.GetAllBlogs)
	blog.GET("/pending", auth, blogController.GetPendingBlogs)
	blog.GET("/:blogId", blogController.GetBlogByID)
	blog.POST("/add", auth, blogController.AddBlog)
	blog.POST("/delete", auth, blogController.DeleteBlogByID)
	blog.POST("/toggle-publish", auth, blogController.TogglePublish)
	blog.POST("/review", auth, blogController.ReviewBlog)
	blog.POST("/add-comment", limited, blogController.AddComment)
	blog.POST("/comments", blogController.GetBlogComments)
	blog.POST("/generate", limited, blogController.GenerateContent)

	admin := api.Group("/admin")
	admin.POST("/login", limited, adminController.Login)
	admin.GET("/blogs", auth, adminController.GetAllBlogsAdmin)
	admin.GET("/comments", auth, adminController.GetAllComments)
	admin.GET("/dashboard", auth, adminController.GetDashboard)
	admin.POST("/approve-comment", auth, adminController.ApproveCommentByID)
	admin.POST("/delete-comment", auth, adminController.DeleteCommentByID)

	r.NoRoute(func(ctx *gin.Context) {
		path := ctx.Request.URL.Path
		if strings.HasPrefix(path, "/api/") {
			utils.Fail(ctx, "Route not found")
			return
		}
		if strings.HasPrefix(path, "/static/") {
			ctx.JSON(http.StatusNotFound, gin.H{"message": "static asset not found"})
			return
		}
		// Everything else falls back to the SPA entry point.
		ctx.Status(http.StatusOK)
		ctx.File("./static/index.html")
	})

	return r
}
