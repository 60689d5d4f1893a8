package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (c *Controller) GetRegions(ctx echo.Context) error {
	regions, err := c.dashboard.Regions(ctx.Request().Context(), ctx.Param("dataset"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, regions)
}

func (c *Controller) ListAreas(ctx echo.Context) error {
	areas, err := c.dashboard.Areas(
		ctx.Request().Context(),
		ctx.Param("dataset"),
		ctx.QueryParam("region"),
		ctx.QueryParam("parent"),
	)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, areas)
}

func (c *Controller) GetArea(ctx echo.Context) error {
	area, err := c.dashboard.Area(ctx.Request().Context(), ctx.Param("dataset"), ctx.Param("code"))
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, area)
}
