package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/tripquery/internal/models"
	"github.com/dharmasatrya/tripquery/internal/search"
)

type SearchHandler struct {
	service *search.Service
	timeout time.Duration
}

func NewSearchHandler(svc *search.Service, timeout time.Duration) *SearchHandler {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SearchHandler{
		service: svc,
		timeout: timeout,
	}
}

func (h *SearchHandler) SearchFlights(c echo.Context) error {
	var req models.FlightParams
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Failed to parse request body",
			Error:   models.CodeInvalidRequest,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp, err := h.service.SearchStructured(ctx, req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *SearchHandler) AIFlightSearch(c echo.Context) error {
	var req models.AISearchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Failed to parse request body",
			Error:   models.CodeInvalidRequest,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	resp, err := h.service.SearchByQuery(ctx, req.Query)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}
