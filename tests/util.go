// Package testutil wires the services on the in-memory storage for tests.
package testutil

import (
	"context"
	"testing"
	"time"

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
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/services/email"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/services/files"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/storage/database/inmem"
)

// Password satisfies the password policy.
const Password = "Sal4m-Hikmah!"

// Config returns the configuration used by tests.
func Config() *core.Config {
	conf := &core.Config{
		Env:              "TEST",
		TestMode:         true,
		AppName:          "Yayasan Al-Hikmah",
		SecretKey:        "test-secret",
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: "noreply@alhikmah.test",
	}
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour
	conf.Storage.Driver = "memory"
	return conf
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// Logger discards everything.
var Logger core.Logger = nopLogger{}

// RecordingNotifier keeps the notified events.
type RecordingNotifier struct {
	Events chan core.Event
}

func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{Events: make(chan core.Event, 128)}
}

func (n *RecordingNotifier) Notify(e core.Event) {
	select {
	case n.Events <- e:
	default:
	}
}

// Env holds every service wired on a fresh in-memory database.
type Env struct {
	Conf     *core.Config
	DB       *inmemdb.DB
	Mail     *emailsvc.ConsoleServiceMock
	Store    *filesvc.MemoryStore
	Notifier *RecordingNotifier

	UserRepo user.Repository

	Users      *user.Service
	Admissions *admission.Service
	Messages   *message.Service
	Students   *student.Service
	Teachers   *teacher.Service
	Graduates  *graduate.Service
	Settings   *settings.Service
	Albums     *album.Service
	Reports    *report.Service
}

func Setup(t *testing.T) *Env {
	t.Helper()
	conf := Config()
	db := inmemdb.Open()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	store := filesvc.NewMemoryStore()
	notifier := NewRecordingNotifier()
	v := core.NewValidator()
	media := core.Media{Store: store, Logger: Logger}

	env := &Env{
		Conf:     conf,
		DB:       db,
		Mail:     mailSvc,
		Store:    store,
		Notifier: notifier,
		UserRepo: inmemdb.NewUserRepository(db),
	}
	env.Users = user.NewService(env.UserRepo, v, mailSvc, notifier)
	env.Admissions = admission.NewService(inmemdb.NewAdmissionRepository(db), v, mailSvc, notifier)
	env.Messages = message.NewService(inmemdb.NewMessageRepository(db), v, mailSvc, notifier)
	env.Students = student.NewService(inmemdb.NewStudentRepository(db), v, media)
	env.Teachers = teacher.NewService(inmemdb.NewTeacherRepository(db), v, media)
	env.Graduates = graduate.NewService(inmemdb.NewGraduateRepository(db), v, media)
	env.Settings = settings.NewService(inmemdb.NewSettingsRepository(db), v, media)
	env.Albums = album.NewService(inmemdb.NewAlbumRepository(db), v, media)
	env.Reports = report.NewService(env.Students, env.Teachers, env.Graduates, env.Admissions, env.Messages)
	return env
}

// CreateUser stores a user directly, bypassing the service validation.
func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	role user.Role,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}
