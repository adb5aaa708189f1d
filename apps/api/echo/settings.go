package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/report"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/settings"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workspace"
)

type settingsApi struct {
	svc *settings.Service
}

func registerSettingsAPI(g *echo.Group, svc *settings.Service) {
	api := settingsApi{svc: svc}

	sg := g.Group("/settings", requireTab(workspace.TabSettings))
	sg.GET("", api.retrieve)
	sg.PUT("", api.update)
	sg.PUT("/logo", api.setLogo)
}

func (api *settingsApi) retrieve(ctx echo.Context) error {
	s, err := api.svc.Current(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading settings")
	}
	return ctx.JSON(http.StatusOK, s)
}

// update replaces the settings; the body must carry the version being replaced.
func (api *settingsApi) update(ctx echo.Context) error {
	var data settings.Settings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Settings")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	s, err := api.svc.Save(ctx.Request().Context(), data, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "saving settings")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *settingsApi) setLogo(ctx echo.Context) error {
	up, err := bindUpload(ctx)
	if err != nil {
		return err
	}
	defer up.Body.Close()

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	s, err := api.svc.SetLogo(ctx.Request().Context(), up.Filename, up.ContentType, up.Body, claims.Subject)
	if err != nil {
		return errors.Wrap(err, "setting logo")
	}
	return ctx.JSON(http.StatusOK, s)
}

func registerReportAPI(g *echo.Group, svc *report.Service) {
	g.GET("/reports/summary", func(ctx echo.Context) error {
		summary, err := svc.Summary(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "summarizing")
		}
		return ctx.JSON(http.StatusOK, summary)
	}, requireTab(workspace.TabReports))
}
