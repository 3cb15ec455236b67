package routes

import (
	"net/http"
	"strings"
	"time"

	"strata-portal/internal/app/controllers"
	"strata-portal/internal/app/middleware"
	"strata-portal/internal/domain/models"
	"strata-portal/internal/domain/services"
	"strata-portal/internal/domain/services/container"
	"strata-portal/internal/infrastructure/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	staffRoles       = []models.UserRole{models.RoleAdmin, models.RoleManager}
	maintenanceRoles = []models.UserRole{models.RoleAdmin, models.RoleManager, models.RoleMaintenanceStaff}
)

// SetupRouter builds the gin engine with every API route
func SetupRouter(c *container.ServiceContainer, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger())
	r.Use(cors.New(corsConfig(cfg)))

	registerRoutes(r, c)
	return r
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}

	for _, o := range cfg.CORSAllowedOrigins {
		if o == "*" {
			corsCfg.AllowAllOrigins = true
			return corsCfg
		}
	}
	corsCfg.AllowOrigins = cfg.CORSAllowedOrigins
	corsCfg.AllowCredentials = true
	return corsCfg
}

// invalidateOverview drops the cached property overview after any successful write
func invalidateOverview(c *container.ServiceContainer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		if ctx.Request.Method == http.MethodGet || ctx.Writer.Status() >= http.StatusBadRequest {
			return
		}
		if strings.HasPrefix(ctx.FullPath(), "/api/notifications") {
			return
		}
		if svc, ok := c.GetService("property_data").(services.InterfacePropertyDataService); ok && svc != nil {
			svc.Invalidate(ctx.Request.Context())
		}
	}
}

func registerRoutes(r *gin.Engine, c *container.ServiceContainer) {
	api := r.Group("/api")
	registerPublicRoutes(api, c)
	registerAuthenticatedRoutes(api, c)
}

func registerPublicRoutes(api *gin.RouterGroup, c *container.ServiceContainer) {
	public := api.Group("")
	public.Use(middleware.IPRateLimiter(10, 20))

	public.GET("/ping", controllers.HandleHealthFunc(c, "ping"))
	public.GET("/health", controllers.HandleHealthFunc(c, "ping"))
	public.GET("/health/status", controllers.HandleHealthFunc(c, "status"))
	public.GET("/health/cache-stats", controllers.HandleHealthFunc(c, "cacheStats"))

	public.POST("/auth/login", middleware.PathRateLimiter(5, 10), controllers.HandleAuthFunc(c, "login"))
}

func registerAuthenticatedRoutes(api *gin.RouterGroup, c *container.ServiceContainer) {
	jwtService := c.GetService("jwt").(services.InterfaceJWTService)
	staffOnly := middleware.RequireRoles(staffRoles...)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)

	auth := api.Group("")
	auth.Use(middleware.Authenticate(jwtService))
	auth.Use(middleware.IPRateLimiter(30, 50))
	auth.Use(invalidateOverview(c))

	auth.GET("/auth/me", controllers.HandleAuthFunc(c, "me"))

	users := auth.Group("/users")
	users.GET("", staffOnly, controllers.HandleUserFunc(c, "getUsers"))
	users.GET("/committee", controllers.HandleUserFunc(c, "getCommittee"))
	users.GET("/:id", controllers.HandleUserFunc(c, "getUser"))
	users.POST("", staffOnly, controllers.HandleUserFunc(c, "createUser"))
	users.PUT("/:id", controllers.HandleUserFunc(c, "updateUser"))
	users.DELETE("/:id", adminOnly, controllers.HandleUserFunc(c, "deleteUser"))

	purgeBuildings := middleware.InvalidateCache("/api/buildings", "/api/properties")

	buildings := auth.Group("/buildings")
	buildings.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 5 * time.Minute}), controllers.HandleBuildingFunc(c, "getBuildings"))
	buildings.GET("/:id", middleware.Cache(middleware.CacheConfig{Expiration: 5 * time.Minute}), controllers.HandleBuildingFunc(c, "getBuilding"))
	buildings.GET("/:id/properties", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandleBuildingFunc(c, "getBuildingProperties"))
	buildings.POST("", staffOnly, purgeBuildings, controllers.HandleBuildingFunc(c, "createBuilding"))
	buildings.PUT("/:id", staffOnly, purgeBuildings, controllers.HandleBuildingFunc(c, "updateBuilding"))
	buildings.DELETE("/:id", staffOnly, purgeBuildings, controllers.HandleBuildingFunc(c, "deleteBuilding"))

	properties := auth.Group("/properties")
	properties.GET("", middleware.Cache(middleware.CacheConfig{Expiration: 1 * time.Minute}), controllers.HandlePropertyFunc(c, "getProperties"))
	properties.GET("/:id", controllers.HandlePropertyFunc(c, "getProperty"))
	properties.POST("", staffOnly, purgeBuildings, controllers.HandlePropertyFunc(c, "createProperty"))
	properties.PUT("/:id", staffOnly, purgeBuildings, controllers.HandlePropertyFunc(c, "updateProperty"))
	properties.DELETE("/:id", staffOnly, purgeBuildings, controllers.HandlePropertyFunc(c, "deleteProperty"))

	propertyData := auth.Group("/property-data")
	propertyData.GET("", controllers.HandlePropertyDataFunc(c, "getOverview"))
	propertyData.GET("/:building_id", controllers.HandlePropertyDataFunc(c, "getBuildingDetail"))

	maintenance := auth.Group("/maintenance")
	maintenance.GET("", controllers.HandleMaintenanceFunc(c, "getRequests"))
	maintenance.GET("/:id", controllers.HandleMaintenanceFunc(c, "getRequest"))
	maintenance.POST("", controllers.HandleMaintenanceFunc(c, "createRequest"))
	maintenance.PUT("/:id", controllers.HandleMaintenanceFunc(c, "updateRequest"))
	maintenance.PATCH("/:id/status", middleware.RequireRoles(maintenanceRoles...), controllers.HandleMaintenanceFunc(c, "updateStatus"))
	maintenance.PATCH("/:id/assign", staffOnly, controllers.HandleMaintenanceFunc(c, "assignRequest"))
	maintenance.DELETE("/:id", controllers.HandleMaintenanceFunc(c, "deleteRequest"))
	maintenance.GET("/:id/comments", controllers.HandleMaintenanceFunc(c, "getComments"))
	maintenance.POST("/:id/comments", controllers.HandleMaintenanceFunc(c, "addComment"))
	maintenance.DELETE("/:id/comments/:comment_id", controllers.HandleMaintenanceFunc(c, "deleteComment"))

	notifications := auth.Group("/notifications")
	notifications.GET("", controllers.HandleNotificationFunc(c, "getNotifications"))
	notifications.GET("/unread-count", controllers.HandleNotificationFunc(c, "getUnreadCount"))
	notifications.GET("/ws", controllers.HandleNotificationFunc(c, "subscribe"))
	notifications.POST("", staffOnly, controllers.HandleNotificationFunc(c, "createNotification"))
	notifications.PATCH("/read-all", controllers.HandleNotificationFunc(c, "markAllAsRead"))
	notifications.PATCH("/:id/read", controllers.HandleNotificationFunc(c, "markAsRead"))
	notifications.DELETE("/:id", controllers.HandleNotificationFunc(c, "deleteNotification"))

	announcements := auth.Group("/announcements")
	announcements.GET("", controllers.HandleAnnouncementFunc(c, "getAnnouncements"))
	announcements.GET("/:id", controllers.HandleAnnouncementFunc(c, "getAnnouncement"))
	announcements.POST("", staffOnly, controllers.HandleAnnouncementFunc(c, "createAnnouncement"))
	announcements.PUT("/:id", staffOnly, controllers.HandleAnnouncementFunc(c, "updateAnnouncement"))
	announcements.DELETE("/:id", staffOnly, controllers.HandleAnnouncementFunc(c, "deleteAnnouncement"))

	payments := auth.Group("/payments")
	payments.GET("", controllers.HandlePaymentFunc(c, "getPayments"))
	payments.GET("/:id", controllers.HandlePaymentFunc(c, "getPayment"))
	payments.POST("", staffOnly, controllers.HandlePaymentFunc(c, "createPayment"))
	payments.POST("/levy-run", staffOnly, controllers.HandlePaymentFunc(c, "runLevy"))
	payments.PUT("/:id", staffOnly, controllers.HandlePaymentFunc(c, "updatePayment"))
	payments.PATCH("/:id/pay", staffOnly, controllers.HandlePaymentFunc(c, "markPaid"))
	payments.DELETE("/:id", staffOnly, controllers.HandlePaymentFunc(c, "deletePayment"))

	reports := auth.Group("/reports")
	reports.Use(staffOnly)
	reports.GET("/financial", controllers.HandleReportFunc(c, "financial"))
}
