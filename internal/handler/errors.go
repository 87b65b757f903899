package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/tripquery/internal/models"
)

// respondError renders err in the {success:false, message, error} shape.
// Client mistakes carry their own message; anything else is logged and
// reported generically.
func respondError(c echo.Context, err error) error {
	var (
		vErr   *models.ValidationError
		intErr *models.InterpretationError
	)

	switch {
	case errors.As(err, &intErr):
		return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
			Success: false,
			Message: intErr.Error(),
			Error:   intErr.Code(),
		})
	case errors.As(err, &vErr):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: vErr.Error(),
			Error:   vErr.Code(),
		})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusGatewayTimeout, models.ErrorResponse{
			Success: false,
			Message: "request timed out",
			Error:   models.CodeRequestTimeout,
		})
	case errors.Is(err, context.Canceled):
		return c.NoContent(499)
	}

	log.Error().
		Err(err).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Str("path", c.Path()).
		Msg("Request failed")
	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Message: "internal error",
		Error:   models.CodeInternal,
	})
}

// HTTPErrorHandler replaces echo's default so routing errors, bind errors
// and recovered panics use the same response shape as the endpoints.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if !errors.As(err, &he) {
		if rerr := respondError(c, err); rerr != nil {
			log.Error().Err(rerr).Msg("Failed to write error response")
		}
		return
	}

	code := models.CodeInternal
	switch he.Code {
	case http.StatusNotFound:
		code = models.CodeNotFound
	case http.StatusMethodNotAllowed:
		code = models.CodeMethodNotAllowed
	case http.StatusBadRequest, http.StatusUnsupportedMediaType, http.StatusRequestEntityTooLarge:
		code = models.CodeInvalidRequest
	case http.StatusTooManyRequests:
		code = models.CodeRateLimited
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		code = models.CodeRequestTimeout
	}

	message := http.StatusText(he.Code)
	if he.Code < http.StatusInternalServerError {
		message = fmt.Sprint(he.Message)
	} else {
		log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
	}

	var werr error
	if c.Request().Method == http.MethodHead {
		werr = c.NoContent(he.Code)
	} else {
		werr = c.JSON(he.Code, models.ErrorResponse{Success: false, Message: message, Error: code})
	}
	if werr != nil {
		log.Error().Err(werr).Msg("Failed to write error response")
	}
}
