package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/dharmasatrya/tripquery/internal/handler"
	"github.com/dharmasatrya/tripquery/internal/logging"
	"github.com/dharmasatrya/tripquery/internal/ratelimit"
)

const limiterIdle = 10 * time.Minute

// Echo builds the HTTP server for the API.
func (a *App) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(logging.RequestLogger())

	searchHandler := handler.NewSearchHandler(a.Service, a.Config.RequestTimeout)
	handler.Register(e, searchHandler, ratelimit.Middleware(a.Limiter))
	return e
}

// Run serves the API until SIGINT or SIGTERM, then shuts down within
// grace.
func (a *App) Run(grace time.Duration) error {
	e := a.Echo()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.pruneLimiter(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", a.Config.Port).Msg("Starting trip query server")
		if err := e.Start(":" + a.Config.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.Close(context.Background())
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()

	err := e.Shutdown(shutdownCtx)
	a.Close(shutdownCtx)
	log.Info().Msg("Server stopped")
	return err
}

func (a *App) pruneLimiter(ctx context.Context) {
	ticker := time.NewTicker(limiterIdle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := a.Limiter.Prune(limiterIdle); n > 0 {
				log.Debug().Int("removed", n).Msg("Pruned idle rate limiters")
			}
		}
	}
}
