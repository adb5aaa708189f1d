package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/album"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/graduate"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/settings"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/teacher"
)

// siteApi serves the public website: read-only content and the two public forms.
type siteApi struct {
	settings  *settings.Service
	teachers  *teacher.Service
	graduates *graduate.Service
	albums    *album.Service
}

func registerSiteAPI(g *echo.Group, deps *ServerDeps) {
	api := siteApi{settings: deps.Settings, teachers: deps.Teachers, graduates: deps.Graduates, albums: deps.Albums}
	admissions := admissionApi{svc: deps.Admissions}
	messages := messageApi{svc: deps.Messages}

	sg := g.Group("/site")
	sg.GET("/routes", api.routes)
	sg.GET("/settings", api.siteSettings)
	sg.GET("/programs", api.programs)
	sg.GET("/teachers", api.teacherProfiles)
	sg.GET("/graduates", api.graduateList)
	sg.GET("/albums", api.albumList)
	sg.GET("/albums/:id", api.albumDetail)
	sg.GET("/testimonials", messages.testimonials)

	// public forms; whatever status the client sends, submissions start pending
	sg.POST("/admissions", admissions.submit)
	sg.POST("/messages", messages.submit)
}

func (api *siteApi) routes(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, core.Routes)
}

func (api *siteApi) siteSettings(ctx echo.Context) error {
	s, err := api.settings.Current(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading settings")
	}
	s.LogoPath = ""
	s.UpdatedBy = ""
	return ctx.JSON(http.StatusOK, s)
}

func (api *siteApi) programs(ctx echo.Context) error {
	s, err := api.settings.Current(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading settings")
	}
	programs := s.Programs
	if programs == nil {
		programs = []settings.ProgramInfo{}
	}
	return ctx.JSON(http.StatusOK, programs)
}

func (api *siteApi) teacherProfiles(ctx echo.Context) error {
	filter := new(teacher.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []teacher.Profile{})
	}
	filter.Clean()
	profiles, err := api.teachers.Profiles(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying teacher profiles")
	}
	return ctx.JSON(http.StatusOK, profiles)
}

func (api *siteApi) graduateList(ctx echo.Context) error {
	filter := new(graduate.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []graduate.Graduate{})
	}
	filter.Clean()
	graduates, err := api.graduates.Query(ctx.Request().Context(), filter, nil)
	if err != nil {
		return errors.Wrap(err, "querying graduates")
	}
	if graduates == nil {
		graduates = []graduate.Graduate{}
	}
	return ctx.JSON(http.StatusOK, graduates)
}

func (api *siteApi) albumList(ctx echo.Context) error {
	albums, err := api.albums.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying albums")
	}
	if albums == nil {
		albums = []album.Album{}
	}
	return ctx.JSON(http.StatusOK, albums)
}

func (api *siteApi) albumDetail(ctx echo.Context) error {
	a, err := api.albums.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding album")
	}
	return ctx.JSON(http.StatusOK, a)
}
