package admission

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
)

var ErrNotFound = core.NewNotFoundError("registration")

type (
	Repository interface {
		CreateRegistration(ctx context.Context, reg Registration) (Registration, error)
		QueryRegistrations(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Registration, error)
		GetRegistration(ctx context.Context, id string) (Registration, error)
		// UpdateRegistrationStatus moves the registration from `from` to `to` only if its stored status is still `from`.
		// It returns workflow.ErrStatusConflict when the stored status differs and ErrNotFound when there is no such id.
		UpdateRegistrationStatus(ctx context.Context, id string, from, to workflow.Status, review workflow.Review) (Registration, error)
		CountRegistrationsByStatus(ctx context.Context) (map[workflow.Status]int, error)
		DeleteRegistrations(ctx context.Context, ids ...string) error
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

// Submit validates a public SPMB form and stores it as pending.
func (svc *Service) Submit(ctx context.Context, nr NewRegistration) (Registration, error) {
	nr.Clean()
	if err := svc.v.Struct(nr); err != nil {
		return Registration{}, err
	}

	reg := Registration{
		ApplicantName: nr.ApplicantName,
		ProgramChoice: nr.ProgramChoice,
		GuardianName:  nr.GuardianName,
		Phone:         nr.Phone,
		Email:         nr.Email,
		Address:       nr.Address,
		Status:        workflow.StatusPending,
		CreatedAt:     time.Now().UTC(),
	}
	if nr.BirthDate != "" {
		bd, err := time.Parse("2006-01-02", nr.BirthDate)
		if err != nil {
			return Registration{}, errors.Wrap(err, "parsing birth date")
		}
		reg.BirthDate = &bd
	}

	reg, err := svc.repo.CreateRegistration(ctx, reg)
	if err != nil {
		return Registration{}, errors.Wrap(err, "creating registration")
	}

	svc.notifier.Notify(core.Event{
		Type:    core.EventAdmissionSubmitted,
		ID:      reg.ID,
		Summary: reg.ApplicantName + " - " + string(reg.ProgramChoice),
		Data:    reg,
	})
	svc.sendMail(reg, "Pendaftaran SPMB diterima", "admission_received")
	return reg, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Registration, error) {
	return svc.repo.QueryRegistrations(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Registration, error) {
	return svc.repo.GetRegistration(ctx, id)
}

func (svc *Service) CountByStatus(ctx context.Context) (map[workflow.Status]int, error) {
	return svc.repo.CountRegistrationsByStatus(ctx)
}

// Review applies an approve or reject action. Only pending registrations can be reviewed;
// of two concurrent reviews exactly one succeeds and the other gets an InvalidTransitionError.
func (svc *Service) Review(ctx context.Context, id string, action workflow.Action, reviewerID string, data ReviewRegistration) (Registration, error) {
	data.Note = core.CleanString(data.Note)
	if err := svc.v.Struct(data); err != nil {
		return Registration{}, err
	}

	reg, err := svc.repo.GetRegistration(ctx, id)
	if err != nil {
		return Registration{}, err
	}
	next, err := workflow.Transition(reg.Status, action)
	if err != nil {
		return Registration{}, err
	}

	review := workflow.Review{By: reviewerID, At: time.Now().UTC(), Note: data.Note}
	updated, err := svc.repo.UpdateRegistrationStatus(ctx, id, reg.Status, next, review)
	if errors.Cause(err) == workflow.ErrStatusConflict {
		current, gErr := svc.repo.GetRegistration(ctx, id)
		if gErr != nil {
			return Registration{}, gErr
		}
		return Registration{}, &workflow.InvalidTransitionError{From: current.Status, Action: action}
	}
	if err != nil {
		return Registration{}, errors.Wrap(err, "updating registration status")
	}

	svc.notifier.Notify(core.Event{
		Type:    core.EventAdmissionReviewed,
		ID:      updated.ID,
		Summary: updated.ApplicantName + " - " + string(updated.Status),
	})
	svc.sendMail(updated, "Hasil seleksi SPMB", "admission_reviewed")
	return updated, nil
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteRegistrations(ctx, ids...)
}

func (svc *Service) sendMail(reg Registration, subject, tmpl string) {
	if reg.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: reg.GuardianName, Address: reg.Email}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: reg,
	})
}
