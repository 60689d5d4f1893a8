package controller

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/iodmap/internal/pkg/constants"
	"github.com/ougirez/iodmap/internal/service/auth"
	"github.com/ougirez/iodmap/internal/service/dashboard"
)

//go:embed templates/about.html
var templates embed.FS

var aboutTmpl = template.Must(template.ParseFS(templates, "templates/about.html"))

type aboutPage struct {
	Views   []string
	Granted bool
	Error   string
}

func (c *Controller) GetAbout(ctx echo.Context) error {
	return renderAbout(ctx, http.StatusOK, aboutPage{Views: dashboard.Views()})
}

// PostAbout handles the password form. Outcomes match POST /api/v1/access but are
// rendered into the page.
func (c *Controller) PostAbout(ctx echo.Context) error {
	page := aboutPage{Views: dashboard.Views()}

	res, err := c.authenticate(ctx, ctx.FormValue("password"))
	if err != nil {
		var ce *constants.CodedError
		if !errors.As(err, &ce) {
			return err
		}
		page.Error = ce.Error()
		return renderAbout(ctx, ce.Code(), page)
	}

	page.Granted = res.Outcome == auth.OutcomeGranted
	return renderAbout(ctx, http.StatusOK, page)
}

func renderAbout(ctx echo.Context, code int, page aboutPage) error {
	var buf bytes.Buffer
	if err := aboutTmpl.Execute(&buf, page); err != nil {
		return err
	}
	return ctx.HTMLBlob(code, buf.Bytes())
}
