package echoapi

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/graduate"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/student"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/teacher"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workspace"
)

// recordService is the CRUD surface shared by the student, teacher and graduate services.
type recordService[T, In any, F interface{ Clean() }] interface {
	Create(ctx context.Context, in In) (T, error)
	Query(ctx context.Context, filter F, ordering []core.DBOrdering) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Update(ctx context.Context, id string, in In) (T, error)
	SetPhoto(ctx context.Context, id, filename, contentType string, r io.Reader) (T, error)
	Delete(ctx context.Context, ids ...string) error
}

type recordApi[T, In any, F interface{ Clean() }] struct {
	name      string
	svc       recordService[T, In, F]
	newFilter func() F
}

func registerStudentAPI(g *echo.Group, svc *student.Service) {
	api := &recordApi[student.Student, student.StudentInput, *student.QueryFilter]{
		name:      "student",
		svc:       svc,
		newFilter: func() *student.QueryFilter { return new(student.QueryFilter) },
	}
	api.register(g.Group("/students", requireTab(workspace.TabStudents)))
}

func registerTeacherAPI(g *echo.Group, svc *teacher.Service) {
	api := &recordApi[teacher.Teacher, teacher.TeacherInput, *teacher.QueryFilter]{
		name:      "teacher",
		svc:       svc,
		newFilter: func() *teacher.QueryFilter { return new(teacher.QueryFilter) },
	}
	api.register(g.Group("/teachers", requireTab(workspace.TabTeachers)))
}

func registerGraduateAPI(g *echo.Group, svc *graduate.Service) {
	api := &recordApi[graduate.Graduate, graduate.GraduateInput, *graduate.QueryFilter]{
		name:      "graduate",
		svc:       svc,
		newFilter: func() *graduate.QueryFilter { return new(graduate.QueryFilter) },
	}
	api.register(g.Group("/graduates", requireTab(workspace.TabGraduates)))
}

func (api *recordApi[T, In, F]) register(g *echo.Group) {
	g.GET("", api.query)
	g.POST("", api.create)
	g.DELETE("", api.destroyMultiple)
	g.GET("/:id", api.retrieve)
	g.PUT("/:id", api.update)
	g.DELETE("/:id", api.destroy)
	g.PUT("/:id/photo", api.setPhoto)
}

func (api *recordApi[T, In, F]) query(ctx echo.Context) error {
	filter := api.newFilter()
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []T{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	records, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrapf(err, "querying %ss", api.name)
	}
	if records == nil {
		records = []T{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *recordApi[T, In, F]) create(ctx echo.Context) error {
	var data In
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrapf(err, "binding %s input", api.name)
	}
	record, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrapf(err, "creating %s", api.name)
	}
	return ctx.JSON(http.StatusCreated, record)
}

func (api *recordApi[T, In, F]) retrieve(ctx echo.Context) error {
	record, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrapf(err, "finding %s", api.name)
	}
	return ctx.JSON(http.StatusOK, record)
}

func (api *recordApi[T, In, F]) update(ctx echo.Context) error {
	var data In
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrapf(err, "binding %s input", api.name)
	}
	record, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrapf(err, "updating %s", api.name)
	}
	return ctx.JSON(http.StatusOK, record)
}

func (api *recordApi[T, In, F]) setPhoto(ctx echo.Context) error {
	up, err := bindUpload(ctx)
	if err != nil {
		return err
	}
	defer up.Body.Close()

	record, err := api.svc.SetPhoto(ctx.Request().Context(), ctx.Param("id"), up.Filename, up.ContentType, up.Body)
	if err != nil {
		return errors.Wrapf(err, "setting %s photo", api.name)
	}
	return ctx.JSON(http.StatusOK, record)
}

func (api *recordApi[T, In, F]) destroy(ctx echo.Context) error {
	if _, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrapf(err, "finding %s", api.name)
	}
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrapf(err, "deleting %s", api.name)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *recordApi[T, In, F]) destroyMultiple(ctx echo.Context) error {
	ids := bindIDs(ctx)
	if len(ids) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), ids...); err != nil {
		return errors.Wrapf(err, "deleting %ss", api.name)
	}
	return ctx.NoContent(http.StatusNoContent)
}
