package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/admission"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workspace"
)

type admissionApi struct {
	svc *admission.Service
}

func registerAdmissionAPI(g *echo.Group, svc *admission.Service) {
	api := admissionApi{svc: svc}

	ag := g.Group("/admissions", requireTab(workspace.TabAdmissions))
	ag.GET("", api.query)
	ag.DELETE("", api.destroyMultiple)
	ag.GET("/:id", api.retrieve)
	ag.POST("/:id/:action", api.review)
}

// submit is the public SPMB form.
func (api *admissionApi) submit(ctx echo.Context) error {
	var data admission.NewRegistration
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRegistration")
	}
	reg, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting registration")
	}
	return ctx.JSON(http.StatusCreated, reg)
}

func (api *admissionApi) query(ctx echo.Context) error {
	filter := new(admission.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []admission.Registration{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	regs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying registrations")
	}
	if regs == nil {
		regs = []admission.Registration{}
	}
	return ctx.JSON(http.StatusOK, regs)
}

func (api *admissionApi) retrieve(ctx echo.Context) error {
	reg, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding registration")
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *admissionApi) review(ctx echo.Context) error {
	action, err := workflow.ParseAction(ctx.Param("action"))
	if err != nil {
		return err
	}
	var data admission.ReviewRegistration
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewRegistration")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reg, err := api.svc.Review(ctx.Request().Context(), ctx.Param("id"), action, claims.Subject, data)
	if err != nil {
		return errors.Wrapf(err, "reviewing registration (%s)", action)
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *admissionApi) destroyMultiple(ctx echo.Context) error {
	ids := bindIDs(ctx)
	if len(ids) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), ids...); err != nil {
		return errors.Wrap(err, "deleting registrations")
	}
	return ctx.NoContent(http.StatusNoContent)
}
