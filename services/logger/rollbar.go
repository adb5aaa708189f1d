package logsvc

import (
	"fmt"
	"log"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
)

type level struct {
	name   string
	report func(interfaces ...interface{})
}

var (
	levelDebug = level{"DEBUG", rollbar.Debug}
	levelInfo  = level{"INFO", rollbar.Info}
	levelWarn  = level{"WARN", rollbar.Warning}
	levelError = level{"ERROR", rollbar.Error}
	levelFatal = level{"FATAL", rollbar.Critical}
)

// RollbarLogger writes every entry to a standard logger and reports it to rollbar when a token is configured.
// Context args may be errors, map[string]interface{} extras and the acting user (user.User or *user.Identity).
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(strings.ToLower(conf.Env))
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "")
	return &RollbarLogger{std: std}
}

// Enable turns rollbar reporting on or off. It stays off without a token.
func (l *RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled && rollbar.Token() != "")
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) { l.log(levelDebug, msg, args) }
func (l *RollbarLogger) Info(msg string, args ...interface{})  { l.log(levelInfo, msg, args) }
func (l *RollbarLogger) Warn(msg string, args ...interface{})  { l.log(levelWarn, msg, args) }
func (l *RollbarLogger) Error(msg string, args ...interface{}) { l.log(levelError, msg, args) }

func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.log(levelFatal, msg, args)
	rollbar.Wait()
	l.std.Fatal(msg)
}

func (l *RollbarLogger) log(lvl level, msg string, args []interface{}) {
	payload, person := split(msg, args)
	if person != nil {
		rollbar.SetPerson(person.ID, person.Name, "")
	} else {
		rollbar.ClearPerson()
	}
	lvl.report(payload...)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", lvl.name, msg)
	if person != nil {
		fmt.Fprintf(&b, " user=%s(%s)", person.ID, person.Role)
	}
	for _, arg := range payload[1:] {
		fmt.Fprintf(&b, "\n\t%+v", arg)
	}
	_ = l.std.Output(3, b.String())
}

// split pulls the first acting user out of `args`. The rest is reported as is after `msg`.
func split(msg string, args []interface{}) ([]interface{}, *user.Identity) {
	var person *user.Identity
	payload := make([]interface{}, 0, len(args)+1)
	payload = append(payload, msg)
	for _, arg := range args {
		switch v := arg.(type) {
		case user.User:
			if person == nil {
				person = v.Identity()
			}
		case *user.Identity:
			if person == nil && v != nil {
				person = v
			}
		default:
			payload = append(payload, arg)
		}
	}
	return payload, person
}
