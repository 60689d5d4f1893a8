package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/iodmap/internal/domain/dto"
	"github.com/ougirez/iodmap/internal/pkg/constants"
	"github.com/ougirez/iodmap/internal/service/auth"
	"github.com/spf13/viper"
)

func (c *Controller) Access(ctx echo.Context) error {
	var req dto.AccessRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	res, err := c.authenticate(ctx, req.Password)
	if err != nil {
		return err
	}
	if res.Outcome == auth.OutcomeNotAttempted {
		return ctx.JSON(http.StatusOK, dto.AccessResponse{Status: dto.AccessNotAttempted})
	}

	return ctx.JSON(http.StatusOK, dto.AccessResponse{Status: dto.AccessGranted})
}

// authenticate runs one gate attempt and sets the session cookie when it succeeds.
func (c *Controller) authenticate(ctx echo.Context, password string) (*auth.Result, error) {
	res, err := c.auth.Authenticate(requestCtx(ctx), ctx.RealIP(), password)
	if err != nil {
		return nil, err
	}
	if res.Outcome == auth.OutcomeGranted {
		ctx.SetCookie(sessionCookie(res.AuthToken, ctx.Request().TLS != nil))
	}
	return res, nil
}

func sessionCookie(token string, secure bool) *http.Cookie {
	ttl := viper.GetDuration(constants.ViperTokenTTL)
	return &http.Cookie{
		Name:     constants.CookieKeyAuthToken,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func requestCtx(ctx echo.Context) context.Context {
	return ctx.Request().Context()
}
