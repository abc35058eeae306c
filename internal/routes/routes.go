package routes

import (
	"net/http"
	"time"

	"trackit-api/internal/config"
	"trackit-api/internal/handlers"
	"trackit-api/internal/middleware"
	"trackit-api/internal/models"
	"trackit-api/internal/throttle"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// taxonomyHandlers groups the five handlers every taxonomy exposes.
type taxonomyHandlers struct {
	create, list, get, update, remove gin.HandlerFunc
}

func SetupRoutes(cfg *config.Config) *gin.Engine {
	handlers.Configure(handlers.Settings{
		SessionCookie: cfg.SessionCookie,
		CookieSecure:  cfg.CookieSecure,
		ClientURL:     cfg.ClientURL,
		ResetLimiter:  throttle.NewLimiter(cfg.ResetMaxRequests, cfg.ResetWindow),
	})

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), middleware.RequestLogger())

	// CORS with credentials so the session cookie reaches the frontend
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{cfg.ClientURL}
	}
	ginRouter.Use(cors.New(corsConfig))

	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "TrackIt API is running",
		})
	})

	sessionAuth := middleware.SessionAuth(cfg.SessionCookie)
	api := ginRouter.Group("/api")

	users := api.Group("/users")
	{
		users.POST("/register", handlers.Register)
		users.POST("/check", handlers.CheckUser)
		users.POST("/login", handlers.Login)
		users.POST("/forgot-password", handlers.ForgotPassword)
		users.POST("/reset-password/:token", handlers.ResetPassword)
		users.GET("/checkauth", sessionAuth, handlers.CheckAuth)
		users.POST("/logout", sessionAuth, handlers.Logout)
		users.PATCH("/:id/role", sessionAuth, middleware.RequireRole(models.RoleAdmin, models.RoleHead), handlers.ChangeRole)
	}

	tasks := api.Group("/tasks")
	{
		tasks.GET("", handlers.GetTasks)
		tasks.GET("/:id", handlers.GetTaskByID)
		tasks.POST("/create", sessionAuth, handlers.CreateTask)
		tasks.PATCH("/:id", sessionAuth, handlers.UpdateTask)
		tasks.DELETE("/:id", sessionAuth, handlers.DeleteTask)
	}

	reports := api.Group("/reports")
	{
		reports.GET("", handlers.GetReports)
		reports.GET("/:id", handlers.GetReportByID)
		reports.POST("/create", sessionAuth, handlers.CreateReport)
		reports.PATCH("/:id", sessionAuth, handlers.UpdateReport)
		reports.DELETE("/:id", sessionAuth, handlers.DeleteReport)
	}

	categories := taxonomyHandlers{handlers.CreateCategory, handlers.GetCategories, handlers.GetCategoryByID, handlers.UpdateCategory, handlers.DeleteCategory}
	subCategories := taxonomyHandlers{handlers.CreateSubCategory, handlers.GetSubCategories, handlers.GetSubCategoryByID, handlers.UpdateSubCategory, handlers.DeleteSubCategory}
	regions := taxonomyHandlers{handlers.CreateRegion, handlers.GetRegions, handlers.GetRegionByID, handlers.UpdateRegion, handlers.DeleteRegion}
	stations := taxonomyHandlers{handlers.CreateStation, handlers.GetStations, handlers.GetStationByID, handlers.UpdateStation, handlers.DeleteStation}
	reportCategories := taxonomyHandlers{handlers.CreateReportCategory, handlers.GetReportCategories, handlers.GetReportCategoryByID, handlers.UpdateReportCategory, handlers.DeleteReportCategory}

	// Singular prefixes stay registered for older frontend builds.
	for prefix, h := range map[string]taxonomyHandlers{
		"/categories":       categories,
		"/category":         categories,
		"/subcategories":    subCategories,
		"/sub_category":     subCategories,
		"/regions":          regions,
		"/stations":         stations,
		"/reportcategories": reportCategories,
		"/reportcategory":   reportCategories,
	} {
		registerTaxonomy(api.Group(prefix), sessionAuth, h)
	}

	api.GET("/ws", sessionAuth, handlers.WebSocketHandler)

	return ginRouter
}

func registerTaxonomy(g *gin.RouterGroup, sessionAuth gin.HandlerFunc, h taxonomyHandlers) {
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.POST("/create", sessionAuth, h.create)
	g.PUT("/:id", sessionAuth, h.update)
	g.PATCH("/:id", sessionAuth, h.update)
	g.DELETE("/:id", sessionAuth, h.remove)
}
