package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rayhandestian/quickbites/controllers"
	"github.com/rayhandestian/quickbites/middleware"
)

const serviceName = "order-notifier"

func RegisterRoutes(router *gin.Engine, gatherer prometheus.Gatherer) {
	// Public
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": serviceName})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// RegisterEventRoutes mounts the HTTP event source. Only called when http is
// one of the configured event sources.
func RegisterEventRoutes(router *gin.Engine, controller *controllers.EventController, jwtSecret []byte, limiter *middleware.RateLimiter) {
	// Trigger tokens only
	events := router.Group("/events", middleware.BearerAuth(jwtSecret))
	if limiter != nil {
		events.Use(middleware.RateLimit(limiter))
	}
	{
		events.POST("/orders", controller.ReceiveOrderEvent)
	}
}
