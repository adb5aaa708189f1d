package message

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
)

var (
	ErrNotFound = core.NewNotFoundError("message")

	// ErrReplyNotPublished is returned when replying to a message that is not approved.
	ErrReplyNotPublished = errors.New("replies can only be set on approved messages")
)

type (
	Repository interface {
		CreateMessage(ctx context.Context, msg Message) (Message, error)
		QueryMessages(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Message, error)
		GetMessage(ctx context.Context, id string) (Message, error)
		// UpdateMessageStatus moves the message from `from` to `to` only if its stored status is still `from`,
		// setting its reply in the same write. It returns workflow.ErrStatusConflict when the stored status differs.
		UpdateMessageStatus(ctx context.Context, id string, from, to workflow.Status, review workflow.Review, reply string) (Message, error)
		// UpdateMessageReply changes the reply of a message whose stored status is `status`, never its status.
		UpdateMessageReply(ctx context.Context, id string, status workflow.Status, reply string) (Message, error)
		CountMessagesByStatus(ctx context.Context) (map[workflow.Status]int, error)
		AverageApprovedRating(ctx context.Context) (float64, error)
		DeleteMessages(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo     Repository
		v        *core.Validator
		mailSvc  core.EmailService
		notifier core.Notifier
	}
)

func NewService(repo Repository, v *core.Validator, mailSvc core.EmailService, notifier core.Notifier) *Service {
	return &Service{repo: repo, v: v, mailSvc: mailSvc, notifier: notifier}
}

// Submit validates a public message and stores it as pending.
func (svc *Service) Submit(ctx context.Context, nm NewMessage) (Message, error) {
	nm.Clean()
	if err := svc.v.Struct(nm); err != nil {
		return Message{}, err
	}

	msg, err := svc.repo.CreateMessage(ctx, Message{
		Name:      nm.Name,
		Email:     nm.Email,
		Rating:    nm.Rating,
		Body:      nm.Body,
		Status:    workflow.StatusPending,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Message{}, errors.Wrap(err, "creating message")
	}

	svc.notifier.Notify(core.Event{Type: core.EventMessageSubmitted, ID: msg.ID, Summary: msg.Name, Data: msg})
	return msg, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Message, error) {
	return svc.repo.QueryMessages(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Message, error) {
	return svc.repo.GetMessage(ctx, id)
}

// Testimonials returns the approved messages, newest first.
func (svc *Service) Testimonials(ctx context.Context) ([]Testimonial, error) {
	msgs, err := svc.repo.QueryMessages(
		ctx,
		&QueryFilter{Status: []workflow.Status{workflow.StatusApproved}},
		[]core.DBOrdering{{Field: "created_at"}},
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying approved messages")
	}
	testimonials := make([]Testimonial, 0, len(msgs))
	for _, m := range msgs {
		testimonials = append(testimonials, m.Testimonial())
	}
	return testimonials, nil
}

func (svc *Service) CountByStatus(ctx context.Context) (map[workflow.Status]int, error) {
	return svc.repo.CountMessagesByStatus(ctx)
}

func (svc *Service) AverageRating(ctx context.Context) (float64, error) {
	return svc.repo.AverageApprovedRating(ctx)
}

// Review applies an approve or reject action on a pending message. A reply is only kept when approving.
func (svc *Service) Review(ctx context.Context, id string, action workflow.Action, reviewerID string, data ReviewMessage) (Message, error) {
	data.Reply = core.CleanString(data.Reply)
	if err := svc.v.Struct(data); err != nil {
		return Message{}, err
	}

	msg, err := svc.repo.GetMessage(ctx, id)
	if err != nil {
		return Message{}, err
	}
	next, err := workflow.Transition(msg.Status, action)
	if err != nil {
		return Message{}, err
	}
	if next != workflow.StatusApproved {
		data.Reply = ""
	}

	review := workflow.Review{By: reviewerID, At: time.Now().UTC()}
	updated, err := svc.repo.UpdateMessageStatus(ctx, id, msg.Status, next, review, data.Reply)
	if errors.Cause(err) == workflow.ErrStatusConflict {
		current, gErr := svc.repo.GetMessage(ctx, id)
		if gErr != nil {
			return Message{}, gErr
		}
		return Message{}, &workflow.InvalidTransitionError{From: current.Status, Action: action}
	}
	if err != nil {
		return Message{}, errors.Wrap(err, "updating message status")
	}

	svc.notifier.Notify(core.Event{Type: core.EventMessageReviewed, ID: updated.ID, Summary: updated.Name + " - " + string(updated.Status)})
	svc.sendReply(updated)
	return updated, nil
}

// Reply sets or replaces the published reply of an approved message. The status is left untouched.
func (svc *Service) Reply(ctx context.Context, id string, data ReplyMessage) (Message, error) {
	data.Reply = core.CleanString(data.Reply)
	if err := svc.v.Struct(data); err != nil {
		return Message{}, err
	}

	msg, err := svc.repo.GetMessage(ctx, id)
	if err != nil {
		return Message{}, err
	}
	if msg.Status != workflow.StatusApproved {
		return Message{}, core.NewValidationError(
			ErrReplyNotPublished,
			core.FieldError{Field: "balasan_admin", Error: ErrReplyNotPublished.Error()},
		)
	}

	updated, err := svc.repo.UpdateMessageReply(ctx, id, workflow.StatusApproved, data.Reply)
	if errors.Cause(err) == workflow.ErrStatusConflict {
		return Message{}, core.NewValidationError(
			ErrReplyNotPublished,
			core.FieldError{Field: "balasan_admin", Error: ErrReplyNotPublished.Error()},
		)
	}
	if err != nil {
		return Message{}, errors.Wrap(err, "updating message reply")
	}
	svc.sendReply(updated)
	return updated, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteMessages(ctx, ids...)
}

func (svc *Service) sendReply(msg Message) {
	if msg.Email == "" || msg.AdminReply == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: msg.Name, Address: msg.Email}},
		Subject:      "Balasan pesan Anda",
		TemplateName: "message_reply",
		TemplateData: msg,
	})
}
