package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/openmow/mower-fleet/internal/handler"
	"github.com/openmow/mower-fleet/internal/middleware"
	"github.com/openmow/mower-fleet/internal/repository"
)

// RegisterRoutes wires every endpoint of the fleet API onto the provided
// Echo instance.  Signup and signin sit behind the rate limiter; everything
// else under /api requires a valid session cookie.
func RegisterRoutes(e *echo.Echo, auth *handler.AuthHandler, areas *handler.AreaHandler, mowers *handler.MowerHandler, users *repository.UserRepo, limiter echo.MiddlewareFunc) {
	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	// Unauthenticated account endpoints, rate limited by client IP.
	open := api.Group("", limiter)
	open.POST("/adduser", auth.AddUser)
	open.POST("/signin", auth.SignIn)

	// Everything below resolves the session cookie to a user first.
	authed := api.Group("", middleware.SessionAuth(users))
	authed.GET("/getuser", auth.GetUser)
	authed.POST("/addarea", areas.AddArea)
	authed.GET("/getareas", areas.GetAreas)
	authed.POST("/mowers", mowers.RegisterMower)
	authed.GET("/mowers", mowers.GetMowers)
	authed.POST("/telemetry", mowers.AppendTelemetry)
	authed.GET("/mowers/:iqn/track", mowers.GetTrack)
}
