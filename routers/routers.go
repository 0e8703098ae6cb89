package routers

import (
	"net/http"
	"time"

	"gameforum/controller"
	_ "gameforum/docs"
	"gameforum/logger"
	"gameforum/logic"
	"gameforum/middlewares"
	"gameforum/models"
	"gameforum/pkg/metrics"
	"gameforum/settings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// SetupRouter builds the HTTP engine. blobs serves uploaded files under
// /storage and may be nil.
func SetupRouter(cfg *settings.Config, svc *logic.Service, blobs http.FileSystem) *gin.Engine {
	mode := cfg.App.Mode
	if mode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	h := controller.New(svc)

	fillInterval, capacity := 10*time.Millisecond, int64(200)
	if cfg.RateLimit != nil {
		if d, err := time.ParseDuration(cfg.RateLimit.FillInterval); err == nil && d > 0 {
			fillInterval = d
		}
		if cfg.RateLimit.Capacity > 0 {
			capacity = cfg.RateLimit.Capacity
		}
	}

	if cfg.Tracing != nil && cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(
		logger.GinLogger(),
		logger.GinRecovery(true),
		metrics.Middleware(),
		middlewares.RateLimitMiddleware(fillInterval, capacity),
		gzip.Gzip(gzip.DefaultCompression),
		middlewares.TimeoutMiddleware(cfg.App.RequestTimeout),
	)

	r.GET("/metrics", metrics.Handler())
	r.GET("/healthz", h.HealthHandler)
	if blobs != nil {
		r.StaticFS("/storage", blobs)
	}
	if mode != gin.ReleaseMode {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	if mode == gin.DebugMode {
		pprof.Register(r)
	}

	auth := middlewares.JWTAuthMiddleware(svc)
	staff := middlewares.RequireRole(models.RoleModerator, models.RoleAdmin)
	admin := middlewares.RequireRole(models.RoleAdmin)

	v1 := r.Group("/api/v1")

	// Public routes. A valid token, when sent, personalizes the response.
	public := v1.Group("", middlewares.OptionalAuthMiddleware(svc))
	{
		public.POST("/auth/signup", h.SignUpHandler)
		public.POST("/auth/login", h.LoginHandler)

		public.GET("/home", h.HomeHandler)
		public.GET("/reviews", h.ReviewsHandler)
		public.GET("/categories", h.CategoryListHandler)
		public.GET("/search", h.SearchHandler)

		public.GET("/threads", h.ThreadListHandler)
		public.GET("/threads/:id", h.ThreadDetailHandler)
		public.GET("/threads/:id/like", h.ThreadLikeStateHandler)

		public.GET("/profiles/:username", h.ProfilePageHandler)
		public.GET("/profiles/:username/threads", h.LatestThreadsHandler)
		public.GET("/profiles/:username/posts", h.LatestPostsHandler)
		public.GET("/users/:id/profile", h.UserProfileHandler)
		public.GET("/users/:id/follow-counts", h.FollowCountsHandler)
		public.GET("/users/:id/followers", h.FollowersHandler)
		public.GET("/users/:id/following", h.FollowingHandler)
	}

	// Signed-in routes: Authorization: Bearer <token>.
	member := v1.Group("", auth)
	{
		member.POST("/auth/refresh", h.RefreshTokenHandler)
		member.POST("/auth/logout", h.LogoutHandler)
		member.GET("/auth/me", h.MeHandler)

		member.POST("/threads", h.CreateThreadHandler)
		member.POST("/threads/:id/posts", h.CreatePostHandler)
		member.POST("/threads/:id/like", h.LikeThreadHandler)
		member.DELETE("/threads/:id/like", h.UnlikeThreadHandler)

		member.POST("/posts/:id/like", h.LikePostHandler)
		member.DELETE("/posts/:id/like", h.UnlikePostHandler)
		member.POST("/posts/:id/like/toggle", h.TogglePostLikeHandler)

		member.GET("/users/:id/follow", h.FollowStatusHandler)
		member.POST("/users/:id/follow", h.FollowHandler)
		member.DELETE("/users/:id/follow", h.UnfollowHandler)

		member.PUT("/profile", h.UpdateProfileHandler)
		member.GET("/profile/privacy", h.PrivacyHandler)
		member.PUT("/profile/privacy", h.UpdatePrivacyHandler)

		member.POST("/reports", h.SubmitReportHandler)
		member.POST("/reports/check", h.CheckReportHandler)
	}

	// Moderation. Roles are checked here and again inside the service.
	mod := v1.Group("/admin", auth, staff)
	{
		mod.GET("/dashboard", h.AdminDashboardHandler)
		mod.GET("/threads", h.AdminThreadListHandler)
		mod.POST("/threads/:id/pin", h.TogglePinHandler)
		mod.POST("/threads/:id/lock", h.ToggleLockHandler)
		mod.DELETE("/threads/:id", h.DeleteThreadHandler)

		mod.GET("/reports", h.ReportListHandler)
		mod.POST("/reports/:id/resolve", h.ResolveReportHandler)
		mod.POST("/reports/:id/dismiss", h.DismissReportHandler)
		mod.GET("/reports/:id/suggestion", h.SuggestReportHandler)

		mod.POST("/categories", admin, h.CreateCategoryHandler)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, &controller.ResponseData{
			Code: http.StatusNotFound,
			Msg:  "404 page not found",
		})
	})

	return r
}
