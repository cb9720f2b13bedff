package router

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestLogger logs HTTP requests with method, path, status and duration.
func RequestLogger(log *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			if err := next(c); err != nil {
				c.Error(err)
			}
			dur := time.Since(start)
			reqID := c.Response().Header().Get(echo.HeaderXRequestID)
			if reqID == "" {
				reqID = c.Request().Header.Get(echo.HeaderXRequestID)
			}
			log.Infow("http",
				"method", c.Request().Method,
				"path", c.Request().URL.RequestURI(),
				"status", c.Response().Status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"request_id", reqID,
			)
			return nil
		}
	}
}
