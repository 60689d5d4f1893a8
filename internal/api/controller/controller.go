package controller

import (
	"github.com/labstack/echo/v4"
	"github.com/ougirez/iodmap/internal/pkg/constants"
	"github.com/ougirez/iodmap/internal/service/auth"
	"github.com/ougirez/iodmap/internal/service/dashboard"
)

type Controller struct {
	dashboard *dashboard.Service
	auth      *auth.Service
}

func NewController(dashboardService *dashboard.Service, authService *auth.Service) *Controller {
	return &Controller{dashboard: dashboardService, auth: authService}
}

func sessionID(ctx echo.Context) (string, error) {
	id, _ := ctx.Get(constants.CtxKeySessionID).(string)
	if id == "" {
		return "", constants.ErrUnauthorized
	}
	return id, nil
}
