package router

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"time-tracker/internal/config"
	"time-tracker/internal/handler"
	"time-tracker/internal/middleware"
	"time-tracker/internal/sse"
)

type RouterDeps struct {
	Config      *config.Config
	TimeHandler *handler.TimeHandler
	AIHandler   *handler.AIHandler
	Events      *sse.Broker
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLog())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"X-New-Token", middleware.RequestIDHeader},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api", middleware.Identity([]byte(d.Config.Auth.JWTSecret)))
	var events http.Handler
	if d.Events != nil {
		events = d.Events
	}
	handler.Register(api, d.TimeHandler, d.AIHandler, events)
	return r
}
