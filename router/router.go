// router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/prevet-io/prevet/controller"
	"github.com/prevet-io/prevet/middleware"
)

func SetupRouter(
	authzController *controller.AuthzController,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))
	router.Use(middleware.Identity())

	api := router.Group("/api/v1")

	authzController.RegisterRoutes(api)

	return router
}
