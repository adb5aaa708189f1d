// Package digestsvc periodically emails the staff a summary of the submissions awaiting review.
package digestsvc

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
)

const runTimeout = 2 * time.Minute

type (
	StatusCounter interface {
		CountByStatus(ctx context.Context) (map[workflow.Status]int, error)
	}

	Recipients interface {
		ActiveWith(ctx context.Context, capability user.Capability) ([]user.User, error)
	}

	// Pending is the template data of the digest email.
	Pending struct {
		PendingAdmissions int
		PendingMessages   int
	}
)

// Job sends the digest to every active user managing admissions or messages.
type Job struct {
	admissions StatusCounter
	messages   StatusCounter
	users      Recipients
	mailSvc    core.EmailService
}

func NewJob(admissions, messages StatusCounter, users Recipients, mailSvc core.EmailService) *Job {
	return &Job{admissions: admissions, messages: messages, users: users, mailSvc: mailSvc}
}

// Run sends the digest and returns the number of emails sent. Nothing is sent when nothing is pending.
func (j *Job) Run(ctx context.Context) (int, error) {
	admissions, err := j.admissions.CountByStatus(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "counting admissions")
	}
	messages, err := j.messages.CountByStatus(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "counting messages")
	}
	pending := Pending{
		PendingAdmissions: admissions[workflow.StatusPending],
		PendingMessages:   messages[workflow.StatusPending],
	}
	if pending.PendingAdmissions == 0 && pending.PendingMessages == 0 {
		return 0, nil
	}

	seen := make(map[string]bool)
	var msgs []*core.EmailMessage
	for _, capability := range []user.Capability{user.CapManageAdmissions, user.CapManageMessages} {
		users, err := j.users.ActiveWith(ctx, capability)
		if err != nil {
			return 0, errors.Wrap(err, "querying recipients")
		}
		for _, usr := range users {
			if usr.Email == "" || seen[usr.ID] {
				continue
			}
			seen[usr.ID] = true
			msgs = append(msgs, &core.EmailMessage{
				To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
				Subject:      "Data menunggu verifikasi",
				TemplateName: "pending_digest",
				TemplateData: pending,
			})
		}
	}
	if len(msgs) > 0 {
		j.mailSvc.SendMessages(msgs...)
	}
	return len(msgs), nil
}

// Scheduler runs the Job on a cron schedule, skipping a run while the previous one is still going.
type Scheduler struct {
	cron *cron.Cron
}

func NewScheduler(schedule string, job *Job, logger core.Logger) (*Scheduler, error) {
	clog := cronLogger{logger: logger}
	c := cron.New(cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)), cron.WithLogger(clog))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		n, err := job.Run(ctx)
		if err != nil {
			logger.Error("sending pending digest", err)
			return
		}
		logger.Info("pending digest sent", map[string]interface{}{"recipients": n})
	})
	if err != nil {
		return nil, errors.Wrapf(err, "scheduling digest %q", schedule)
	}
	return &Scheduler{cron: c}, nil
}

func (s *Scheduler) Start() { s.cron.Start() }

// Stop stops the scheduler; the returned context is done once a running job completes.
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

// cronLogger adapts core.Logger to cron.Logger.
type cronLogger struct {
	logger core.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug("cron: "+msg, kv(keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: "+msg, err, kv(keysAndValues))
}

func kv(keysAndValues []interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if k, ok := keysAndValues[i].(string); ok {
			m[k] = keysAndValues[i+1]
		}
	}
	return m
}
