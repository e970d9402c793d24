package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/labmanager/labmanager-api/controllers"
	"github.com/labmanager/labmanager-api/middleware"
)

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// Router builds the HTTP API under /api/v1
func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(a.logger), middleware.Recovery(a.logger))
	if len(a.cfg.CORSOrigins) > 0 {
		router.Use(cors.New(corsConfig(a.cfg.CORSOrigins)))
	}

	health := controllers.NewHealthController(a.db, a.cfg.LabName)
	authHandler := controllers.NewAuthController(a.Auth, a.logger)
	users := controllers.NewUserController(a.Auth, a.db, a.profiles, a.logger)
	orders := controllers.NewOrderController(a.Orders, a.Dentists, a.logger)
	dentists := controllers.NewDentistController(a.Dentists, a.logger)
	boardHandler := controllers.NewBoardController(a.Board)
	exports := controllers.NewExportController(a.Orders, a.Labels, a.Board, a.logger)
	shell := controllers.NewShellController(a.cfg.LabName, a.Board, a.DentistCount)
	stream := controllers.NewStreamController(a.Hub, a.StreamDeps(), a.cfg.CORSOrigins, a.logger)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", health.HealthCheck)
		v1.GET("/database/status", health.DatabaseStatus)

		v1.POST("/auth/login", authHandler.Login)
		v1.GET("/auth/session", authHandler.Session)

		// the stream resolves its own auth gate from the first frame
		v1.GET("/stream", stream.Connect)

		protected := v1.Group("")
		protected.Use(middleware.EnsureValidToken(a.validator, a.Auth, a.logger))
		{
			protected.POST("/auth/logout", authHandler.Logout)
			protected.GET("/users/me", users.GetMyProfile)
			protected.PUT("/users/me", users.UpdateMyProfile)

			protected.GET("/shell", shell.GetShell)
			protected.GET("/board", boardHandler.GetBoard)

			protected.GET("/orders", orders.ListOrders)
			protected.POST("/orders", middleware.SingleFlight(a.InFlight, "orders"), orders.CreateOrder)
			protected.GET("/orders/:id", orders.GetOrder)
			protected.PUT("/orders/:id", middleware.SingleFlight(a.InFlight, "orders"), orders.UpdateOrder)
			protected.PATCH("/orders/:id/ready", middleware.SingleFlight(a.InFlight, "orders"), orders.MarkReady)
			protected.DELETE("/orders/:id", middleware.SingleFlight(a.InFlight, "orders"), orders.DeleteOrder)
			protected.GET("/orders/:id/form", orders.EditOrderForm)
			protected.GET("/orders/:id/label", exports.GetLabel)
			protected.POST("/orders/:id/label/archive", exports.ArchiveLabel)
			protected.GET("/orders/:id/calendar", exports.GetCalendarLink)
			protected.GET("/exports/orders.xlsx", exports.ExportOrders)

			protected.GET("/forms/orders", orders.NewOrderForm)
			protected.POST("/forms/orders/service", orders.SelectService)
			protected.GET("/forms/dentists", dentists.NewDentistForm)
			protected.GET("/forms/dentists/phone-mask", dentists.MaskPhone)

			protected.GET("/dentists", dentists.ListDentists)
			protected.POST("/dentists", middleware.SingleFlight(a.InFlight, "dentists"), dentists.CreateDentist)
			protected.GET("/dentists/:id", dentists.GetDentist)
			protected.PUT("/dentists/:id", middleware.SingleFlight(a.InFlight, "dentists"), dentists.UpdateDentist)
			protected.DELETE("/dentists/:id", middleware.SingleFlight(a.InFlight, "dentists"), dentists.DeleteDentist)
			protected.GET("/dentists/:id/form", dentists.EditDentistForm)
		}
	}

	return router
}
