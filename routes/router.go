package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/controllers"
	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/repository"
	"github.com/cppla/blogicum/storage"
	"github.com/cppla/blogicum/utils"
)

// Dependencies are the collaborators the handlers are built from.
type Dependencies struct {
	Config    config.AppConfig
	Repos     *repository.Repositories
	Storage   storage.Storage
	Cache     *utils.Cache
	Tokens    *utils.TokenService
	Blacklist *utils.TokenBlacklist
	// Now defaults to time.Now.
	Now func() time.Time
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.CSRFHeader},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
		// credentials cannot be combined with a wildcard origin
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.Use(middleware.Clock(deps.Now))
	r.Use(middleware.Authenticate(deps.Tokens, deps.Blacklist, deps.Repos.Users))
	r.Use(middleware.CSRFProtect())

	if _, ok := deps.Storage.(*storage.Local); ok {
		r.Static(cfg.UploadURLBase, cfg.UploadDir)
	}

	postController := controllers.NewPostController(deps.Repos, deps.Storage, deps.Cache, cfg)
	commentController := controllers.NewCommentController(deps.Repos, deps.Cache, cfg)
	profileController := controllers.NewProfileController(deps.Repos)
	authController := controllers.NewAuthController(deps.Repos.Users, deps.Tokens, deps.Blacklist, cfg)
	adminController := controllers.NewAdminController(deps.Repos, deps.Cache)
	pagesController := controllers.NewPagesController(cfg)
	statsController := controllers.NewStatsController(deps.Repos)

	loginRequired := middleware.LoginRequired(cfg.LoginURL)
	limited := middleware.RateLimit(cfg.RateLimitPerMinute)

	r.GET("/health", pagesController.Health)
	r.GET("/pages/about", pagesController.About)
	r.GET("/pages/rules", pagesController.Rules)
	r.GET("/stats", statsController.GetStats)

	r.GET("/", postController.ListPosts)
	r.GET("/category/:slug", postController.CategoryPosts)
	r.GET("/profile/:username", profileController.Profile)

	posts := r.Group("/posts")
	posts.GET("/:id", postController.GetPost)

	writes := posts.Group("", loginRequired, limited)
	writes.GET("/new", postController.NewPostForm)
	writes.POST("/new", postController.CreatePost)

	editGuard := postController.RequireAuthor(postController.RedirectToPost)
	writes.GET("/:id/edit", editGuard, postController.EditPostForm)
	writes.POST("/:id/edit", editGuard, postController.UpdatePost)

	deleteGuard := postController.RequireAuthorOrAdmin()
	writes.GET("/:id/delete", deleteGuard, postController.DeletePostForm)
	writes.POST("/:id/delete", deleteGuard, postController.DeletePost)

	writes.POST("/:id/comment", commentController.AddComment)
	commentEdit := commentController.RequireAuthor(false)
	writes.GET("/:id/comment/:cid/edit", commentEdit, commentController.EditCommentForm)
	writes.POST("/:id/comment/:cid/edit", commentEdit, commentController.UpdateComment)
	commentDelete := commentController.RequireAuthor(true)
	writes.GET("/:id/comment/:cid/delete", commentDelete, commentController.DeleteCommentForm)
	writes.POST("/:id/comment/:cid/delete", commentDelete, commentController.DeleteComment)

	profile := r.Group("/profile", loginRequired, limited)
	profile.GET("/edit", profileController.EditProfileForm)
	profile.POST("/edit", profileController.UpdateProfile)

	authGroup := r.Group("/auth")
	authGroup.GET("/login", authController.LoginPage)
	authGroup.POST("/register", limited, authController.Register)
	authGroup.POST("/login", limited, authController.Login)
	authGroup.POST("/logout", authController.Logout)
	authGroup.GET("/me", loginRequired, authController.Me)

	admin := r.Group("/admin", middleware.AdminRequired(cfg))
	admin.GET("/categories", adminController.ListCategories)
	admin.POST("/categories", adminController.CreateCategory)
	admin.PUT("/categories/:id", adminController.UpdateCategory)
	admin.DELETE("/categories/:id", adminController.DeleteCategory)
	admin.GET("/locations", adminController.ListLocations)
	admin.POST("/locations", adminController.CreateLocation)
	admin.PUT("/locations/:id", adminController.UpdateLocation)
	admin.DELETE("/locations/:id", adminController.DeleteLocation)
	admin.PATCH("/posts/:id/publish", adminController.SetPostPublished)
	admin.DELETE("/users/:id", adminController.DeleteUser)

	r.NoRoute(utils.NotFound)

	return r
}
