package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/message"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workspace"
)

type messageApi struct {
	svc *message.Service
}

func registerMessageAPI(g *echo.Group, svc *message.Service) {
	api := messageApi{svc: svc}

	mg := g.Group("/messages", requireTab(workspace.TabMessages))
	mg.GET("", api.query)
	mg.DELETE("", api.destroyMultiple)
	mg.GET("/:id", api.retrieve)
	mg.PUT("/:id/reply", api.reply)
	mg.POST("/:id/:action", api.review)
}

// submit is the public message form.
func (api *messageApi) submit(ctx echo.Context) error {
	var data message.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	msg, err := api.svc.Submit(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "submitting message")
	}
	return ctx.JSON(http.StatusCreated, msg)
}

type testimonialsResponse struct {
	AverageRating float64               `json:"rata_rata_rating"`
	Testimonials  []message.Testimonial `json:"testimoni"`
}

// testimonials lists the approved messages.
func (api *messageApi) testimonials(ctx echo.Context) error {
	testimonials, err := api.svc.Testimonials(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying testimonials")
	}
	avg, err := api.svc.AverageRating(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "averaging ratings")
	}
	return ctx.JSON(http.StatusOK, testimonialsResponse{AverageRating: avg, Testimonials: testimonials})
}

func (api *messageApi) query(ctx echo.Context) error {
	filter := new(message.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []message.Message{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	msgs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying messages")
	}
	if msgs == nil {
		msgs = []message.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *messageApi) retrieve(ctx echo.Context) error {
	msg, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding message")
	}
	return ctx.JSON(http.StatusOK, msg)
}

func (api *messageApi) review(ctx echo.Context) error {
	action, err := workflow.ParseAction(ctx.Param("action"))
	if err != nil {
		return err
	}
	var data message.ReviewMessage
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewMessage")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	msg, err := api.svc.Review(ctx.Request().Context(), ctx.Param("id"), action, claims.Subject, data)
	if err != nil {
		return errors.Wrapf(err, "reviewing message (%s)", action)
	}
	return ctx.JSON(http.StatusOK, msg)
}

func (api *messageApi) reply(ctx echo.Context) error {
	var data message.ReplyMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReplyMessage")
	}
	msg, err := api.svc.Reply(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "replying to message")
	}
	return ctx.JSON(http.StatusOK, msg)
}

func (api *messageApi) destroyMultiple(ctx echo.Context) error {
	ids := bindIDs(ctx)
	if len(ids) == 0 {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), ids...); err != nil {
		return errors.Wrap(err, "deleting messages")
	}
	return ctx.NoContent(http.StatusNoContent)
}
