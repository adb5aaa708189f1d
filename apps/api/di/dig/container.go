// Package dig_container builds the API dependency graph.
package dig_container

import (
	"io"
	"log"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/apps/api/echo"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/admission"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/album"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/graduate"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/message"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/report"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/settings"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/student"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/teacher"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
	digestsvc "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/services/digest"
	emailsvc "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/services/email"
	filesvc "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/services/files"
	logsvc "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/services/logger"
	notifysvc "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/services/notify"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/storage/database"
	inmemdb "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/storage/database/inmem"
	sqlxrepos "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/storage/database/sqlx"
)

const memoryEngine = "memory"

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

// Repositories are provided together, from the configured database engine.
type Repositories struct {
	dig.Out

	DB         io.Closer `name:"db"`
	Users      user.Repository
	Admissions admission.Repository
	Messages   message.Repository
	Students   student.Repository
	Teachers   teacher.Repository
	Graduates  graduate.Repository
	Settings   settings.Repository
	Albums     album.Repository
}

type ServerParams struct {
	dig.In

	Conf       *core.Config
	Logger     core.Logger
	Users      *user.Service
	Admissions *admission.Service
	Messages   *message.Service
	Students   *student.Service
	Teachers   *teacher.Service
	Graduates  *graduate.Service
	Settings   *settings.Service
	Albums     *album.Service
	Reports    *report.Service
	Hub        *notifysvc.Hub
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug)
	return logger
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func newRepositories(conf *core.Config, loggerParam DBLoggerParam) Repositories {
	if conf.Database.Engine == memoryEngine {
		loggerParam.Logger.Warn("using the in-memory database; data is lost on restart")
		db := inmemdb.Open()
		return Repositories{
			DB:         nopCloser{},
			Users:      inmemdb.NewUserRepository(db),
			Admissions: inmemdb.NewAdmissionRepository(db),
			Messages:   inmemdb.NewMessageRepository(db),
			Students:   inmemdb.NewStudentRepository(db),
			Teachers:   inmemdb.NewTeacherRepository(db),
			Graduates:  inmemdb.NewGraduateRepository(db),
			Settings:   inmemdb.NewSettingsRepository(db),
			Albums:     inmemdb.NewAlbumRepository(db),
		}
	}

	if err := database.CreateIfNotExist(conf); err != nil {
		loggerParam.Logger.Fatal("setting up database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		loggerParam.Logger.Fatal("setting up database", err)
	}
	if err = database.Migrate(db.DB, "up"); err != nil {
		loggerParam.Logger.Fatal("setting up database", err)
	}
	return Repositories{
		DB:         db,
		Users:      sqlxrepos.NewUserRepository(db),
		Admissions: sqlxrepos.NewAdmissionRepository(db),
		Messages:   sqlxrepos.NewMessageRepository(db),
		Students:   sqlxrepos.NewStudentRepository(db),
		Teachers:   sqlxrepos.NewTeacherRepository(db),
		Graduates:  sqlxrepos.NewGraduateRepository(db),
		Settings:   sqlxrepos.NewSettingsRepository(db),
		Albums:     sqlxrepos.NewAlbumRepository(db),
	}
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	return emailsvc.NewService(logger, log.New(os.Stdout, "MAIL : ", log.LstdFlags), conf)
}

func newMedia(conf *core.Config, logger core.Logger) (core.Media, error) {
	store, err := filesvc.NewStore(conf)
	if err != nil {
		return core.Media{}, err
	}
	return core.Media{Store: store, Logger: logger}, nil
}

func newHub(conf *core.Config, logger core.Logger) *notifysvc.Hub {
	return notifysvc.NewHub(logger, conf.Server.AllowOrigins)
}

func newNotifier(hub *notifysvc.Hub) core.Notifier {
	return hub
}

func newReportService(
	students *student.Service,
	teachers *teacher.Service,
	graduates *graduate.Service,
	admissions *admission.Service,
	messages *message.Service,
) *report.Service {
	return report.NewService(students, teachers, graduates, admissions, messages)
}

func newDigestJob(admissions *admission.Service, messages *message.Service, users *user.Service, mailSvc core.EmailService) *digestsvc.Job {
	return digestsvc.NewJob(admissions, messages, users, mailSvc)
}

func newServer(p ServerParams) *echoapi.Server {
	deps := &echoapi.ServerDeps{
		Users:      p.Users,
		Admissions: p.Admissions,
		Messages:   p.Messages,
		Students:   p.Students,
		Teachers:   p.Teachers,
		Graduates:  p.Graduates,
		Settings:   p.Settings,
		Albums:     p.Albums,
		Reports:    p.Reports,
		Hub:        p.Hub,
	}
	if p.Conf.Storage.Driver == "local" || p.Conf.Storage.Driver == "" {
		deps.MediaDir = p.Conf.Storage.LocalDir
	}
	return echoapi.NewServer(p.Conf, p.Logger, deps)
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(newMedia))
	must(c.Provide(newHub))
	must(c.Provide(newNotifier))
	must(c.Provide(core.NewValidator))
	must(c.Provide(user.NewService))
	must(c.Provide(admission.NewService))
	must(c.Provide(message.NewService))
	must(c.Provide(student.NewService))
	must(c.Provide(teacher.NewService))
	must(c.Provide(graduate.NewService))
	must(c.Provide(settings.NewService))
	must(c.Provide(album.NewService))
	must(c.Provide(newReportService))
	must(c.Provide(newDigestJob))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
