package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/iodmap/internal/domain/dto"
)

func (c *Controller) GetCatalog(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.dashboard.Catalog())
}

func (c *Controller) GetSelection(ctx echo.Context) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	sel, err := c.dashboard.Selection(id)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, sel)
}

func (c *Controller) PatchSelection(ctx echo.Context) error {
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	var patch dto.SelectionPatch
	if err := ctx.Bind(&patch); err != nil {
		return err
	}

	sel, err := c.dashboard.ApplyPatch(ctx.Request().Context(), id, patch)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, sel)
}
