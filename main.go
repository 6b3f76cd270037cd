package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"claims-management-server/config"
	"claims-management-server/database"
	"claims-management-server/middleware"
	"claims-management-server/routes"
	ws "claims-management-server/websocket"
)

func main() {
	log := logrus.StandardLogger()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using system environment variables")
	}

	config.Load()

	if config.AppConfig.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := database.Initialize(); err != nil {
		log.WithError(err).Fatal("failed to initialize database")
	}

	if err := seedAdmin(log); err != nil {
		log.WithError(err).Fatal("failed to seed admin account")
	}

	chatHub := ws.NewHub(log)
	go chatHub.Run()
	routes.SetChatHub(chatHub)

	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORSMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
		})
	})

	api := router.Group("/api")
	routes.RegisterAuthRoutes(api)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		routes.RegisterAreaRoutes(protected)
		routes.RegisterEmployeeRoutes(protected)
		routes.RegisterClientRoutes(protected)
		routes.RegisterProjectRoutes(protected)
		routes.RegisterClaimRoutes(protected)
		routes.RegisterClaimEventRoutes(protected)
		routes.RegisterStatisticsRoutes(protected)
	}

	// The websocket handshake authenticates with a query token, outside the
	// bearer middleware.
	routes.RegisterChatRoutes(api)

	addr := "0.0.0.0:" + config.AppConfig.Server.Port
	log.WithField("addr", addr).Info("server starting")
	if err := router.Run(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
