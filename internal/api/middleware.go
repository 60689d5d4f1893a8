package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/ougirez/iodmap/internal/pkg/constants"
	"github.com/ougirez/iodmap/internal/pkg/logger"
)

// GateMiddleware lets a request through only with a valid session cookie. A valid
// token whose session was evicted gets fresh defaults.
func (svc *APIService) GateMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		cookie, err := ctx.Cookie(constants.CookieKeyAuthToken)
		if err != nil || cookie.Value == "" {
			return constants.ErrMissingAuthCookie
		}

		sessionID, err := svc.auth.Resolve(cookie.Value)
		if err != nil {
			return err
		}

		ctx.Set(constants.CtxKeySessionID, sessionID)
		req := ctx.Request()
		ctx.SetRequest(req.WithContext(logger.WithFields(req.Context(), "session", sessionID)))

		return next(ctx)
	}
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := logger.WithFields(c.Request().Context(), "request_id", v.RequestID)
			if v.Error != nil {
				logger.Warn(ctx, "request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency, "error", v.Error.Error())
				return nil
			}
			logger.Info(ctx, "request", "method", v.Method, "uri", v.URI, "status", v.Status, "latency", v.Latency)
			return nil
		},
	})
}
