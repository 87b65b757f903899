package handler

import "github.com/labstack/echo/v4"

// Register mounts the API on e. mw applies to the search endpoints only.
func Register(e *echo.Echo, h *SearchHandler, mw ...echo.MiddlewareFunc) {
	api := e.Group("/api", mw...)
	api.POST("/search_flights", h.SearchFlights)
	api.POST("/ai_flight_search", h.AIFlightSearch)
	e.GET("/health", HealthHandler)
}
