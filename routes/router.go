package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/petpal-dev/petpal/config"
	"github.com/petpal-dev/petpal/controllers"
	"github.com/petpal-dev/petpal/middleware"
	"github.com/petpal-dev/petpal/services"
	"github.com/petpal-dev/petpal/utils"
)

// SetupRouter wires routes, middlewares, services and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
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
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
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

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	userService := services.NewUserService(db)
	petService := services.NewPetService(db, userService)
	interactionService := services.NewInteractionService(db, petService)
	checkinService := services.NewCheckInService(db, userService)
	shopService := services.NewShopService(db, userService)

	authController := controllers.NewAuthController(userService)
	userController := controllers.NewUserController(userService)
	petController := controllers.NewPetController(petService)
	interactionController := controllers.NewInteractionController(petService, interactionService)
	checkinController := controllers.NewCheckInController(checkinService)
	shopController := controllers.NewShopController(shopService)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/users/me/stats", userController.Stats)

	protected.POST("/pets", petController.Create)
	protected.GET("/pets", petController.List)
	protected.GET("/pets/ranking", petController.Ranking)
	protected.GET("/pets/:id", petController.Get)
	protected.PUT("/pets/:id", petController.Update)
	protected.DELETE("/pets/:id", petController.Delete)
	protected.GET("/pets/:id/advice", petController.Advice)

	protected.POST("/pets/:id/interactions", interactionController.Interact)
	protected.GET("/pets/:id/interactions", interactionController.PetHistory)
	protected.GET("/interactions", interactionController.History)
	protected.POST("/interactions/batch", interactionController.Batch)

	protected.POST("/checkin", checkinController.CheckIn)
	protected.GET("/checkin/status", checkinController.Status)
	protected.GET("/checkin/calendar", checkinController.Calendar)
	protected.POST("/checkin/makeup", checkinController.MakeUp)
	protected.GET("/checkin/history", checkinController.History)

	protected.GET("/shop/items", shopController.ListItems)
	protected.GET("/shop/items/:id", shopController.GetItem)
	protected.POST("/shop/purchases", shopController.Purchase)
	protected.GET("/shop/purchases", shopController.ListPurchases)
	protected.POST("/shop/purchases/:id/cancel", shopController.Cancel)
	protected.POST("/shop/purchases/:id/refund", shopController.Refund)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
