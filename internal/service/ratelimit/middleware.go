package ratelimit

import (
	"strconv"

	xhttp "FinSight/pkg/http"

	"github.com/labstack/echo/v4"
)

// Middleware rejects requests with 429 once the client IP has exhausted its bucket.
func Middleware(l *Limiter, skip func(c echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skip != nil && skip(c) {
				return next(c)
			}
			if !l.Allow(c.RealIP()) {
				secs := int(l.RetryAfter().Seconds())
				if secs < 1 {
					secs = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many requests"))
			}
			return next(c)
		}
	}
}
