package emailsvc

import (
	"log"
	"net/http"
	"net/mail"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

// sendgridService delivers the foundation's notifications through the sendgrid v3 API.
// Outside PROD the mails are accepted by sendgrid in sandbox mode and never delivered.
type sendgridService struct {
	client  *sendgrid.Client
	from    *sgmail.Email
	appName string
	baseURL string
	sandbox bool
	logger  core.Logger
}

var _ core.EmailService = (*sendgridService)(nil)

func NewSendgridService(logger core.Logger, conf *core.Config) core.EmailService {
	from := conf.DefaultFrom()
	return &sendgridService{
		client:  sendgrid.NewSendClient(conf.SendgridApiKey),
		from:    sgmail.NewEmail(from.Name, from.Address),
		appName: conf.AppName,
		baseURL: conf.FrontendBaseURL,
		sandbox: conf.Env != "PROD",
		logger:  logger,
	}
}

func (svc *sendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		msg := msg
		go func() {
			if err := svc.deliver(msg); err != nil {
				svc.logger.Error("sending email", err, map[string]interface{}{"category": msg.Category()})
			}
		}()
	}
}

func (svc *sendgridService) deliver(msg *core.EmailMessage) error {
	if err := msg.Render(svc.baseURL); err != nil {
		return errors.Wrap(err, "rendering email")
	}
	if !msg.HasRecipients() || !msg.HasContent() {
		return nil
	}

	res, err := svc.client.Send(svc.build(msg))
	if err != nil {
		return errors.Wrap(err, "calling sendgrid")
	}
	if res.StatusCode >= http.StatusBadRequest {
		return errors.Errorf("sendgrid answered %d: %s", res.StatusCode, res.Body)
	}
	return nil
}

func (svc *sendgridService) build(msg *core.EmailMessage) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = "[" + svc.appName + "] " + msg.Subject
	p.AddTos(toSG(msg.To)...)
	if len(msg.Cc) > 0 {
		p.AddCCs(toSG(msg.Cc)...)
	}
	if len(msg.Bcc) > 0 {
		p.AddBCCs(toSG(msg.Bcc)...)
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.AddPersonalizations(p)
	m.AddCategories(msg.Category())
	if msg.TextContent != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	}
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	if svc.sandbox {
		m.SetMailSettings(sgmail.NewMailSettings().SetSandboxMode(sgmail.NewSetting(true)))
	}
	return m
}

func toSG(addrs []mail.Address) []*sgmail.Email {
	emails := make([]*sgmail.Email, 0, len(addrs))
	for _, a := range addrs {
		emails = append(emails, sgmail.NewEmail(a.Name, a.Address))
	}
	return emails
}

// NewService picks sendgrid when an api key is configured, the console otherwise.
func NewService(logger core.Logger, std *log.Logger, conf *core.Config) core.EmailService {
	if conf.SendgridApiKey != "" {
		return NewSendgridService(logger, conf)
	}
	return NewConsoleService(std, conf)
}
