package controller

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/iodmap/internal/domain/dto"
	"github.com/ougirez/iodmap/internal/service/dashboard"
	"github.com/ougirez/iodmap/internal/service/render"
)

func (c *Controller) ListViews(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, dashboard.Views())
}

func (c *Controller) renderView(ctx echo.Context) (*dto.ViewResult, error) {
	id, err := sessionID(ctx)
	if err != nil {
		return nil, err
	}
	return c.dashboard.Render(ctx.Request().Context(), id, ctx.Param("view"))
}

func (c *Controller) GetView(ctx echo.Context) error {
	res, err := c.renderView(ctx)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, res)
}

func (c *Controller) GetViewSpec(ctx echo.Context) error {
	res, err := c.renderView(ctx)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, render.VegaLite(res))
}

func (c *Controller) GetViewChart(ctx echo.Context) error {
	res, err := c.renderView(ctx)
	if err != nil {
		return err
	}

	panel := res.Chart
	if panel == nil {
		panel = &dto.ChartPanel{Title: res.View}
	}
	var buf bytes.Buffer
	if err := render.BarChartPNG(&buf, panel, res.Palette); err != nil {
		return err
	}

	return ctx.Blob(http.StatusOK, "image/png", buf.Bytes())
}
