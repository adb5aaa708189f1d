package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/album"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workspace"
)

type albumApi struct {
	svc *album.Service
}

func registerAlbumAPI(g *echo.Group, svc *album.Service) {
	api := albumApi{svc: svc}

	ag := g.Group("/albums", requireTab(workspace.TabAlbums))
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
	ag.POST("/:id/photos", api.addPhoto)
	ag.DELETE("/:id/photos/:photoID", api.destroyPhoto)
}

func (api *albumApi) query(ctx echo.Context) error {
	albums, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying albums")
	}
	if albums == nil {
		albums = []album.Album{}
	}
	return ctx.JSON(http.StatusOK, albums)
}

func (api *albumApi) create(ctx echo.Context) error {
	var data album.AlbumInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AlbumInput")
	}
	a, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating album")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *albumApi) retrieve(ctx echo.Context) error {
	a, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding album")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *albumApi) update(ctx echo.Context) error {
	var data album.AlbumInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AlbumInput")
	}
	a, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating album")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *albumApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting album")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *albumApi) addPhoto(ctx echo.Context) error {
	up, err := bindUpload(ctx)
	if err != nil {
		return err
	}
	defer up.Body.Close()

	in := album.PhotoInput{Caption: ctx.FormValue("keterangan")}
	photo, err := api.svc.AddPhoto(ctx.Request().Context(), ctx.Param("id"), up.Filename, up.ContentType, up.Body, in)
	if err != nil {
		return errors.Wrap(err, "adding photo")
	}
	return ctx.JSON(http.StatusCreated, photo)
}

func (api *albumApi) destroyPhoto(ctx echo.Context) error {
	if err := api.svc.DeletePhoto(ctx.Request().Context(), ctx.Param("id"), ctx.Param("photoID")); err != nil {
		return errors.Wrap(err, "deleting photo")
	}
	return ctx.NoContent(http.StatusNoContent)
}
