package ratelimit

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/tripquery/internal/models"
)

// Middleware rejects clients that exceed their request budget with 429.
func Middleware(l *Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
					Success: false,
					Message: "too many requests, slow down",
					Error:   models.CodeRateLimited,
				})
			}
			return next(c)
		}
	}
}
