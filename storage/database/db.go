package database

import (
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/trezcool/goose"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	appfs "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/fs"
)

const migrationsDir = "migrations"

var ErrUnknownCommand = errors.New("unknown migration command")

func open(dbName string, admin bool, conf *core.Config) (*sqlx.DB, error) {
	user := url.UserPassword(conf.Database.User, conf.Database.Password)
	if admin && conf.Database.AdminUser != "" {
		user = url.UserPassword(conf.Database.AdminUser, conf.Database.AdminPassword)
	}

	sslMode := "require"
	if conf.Database.DisableTLS {
		sslMode = "disable"
	}
	q := make(url.Values)
	q.Set("sslmode", sslMode)
	q.Set("timezone", "utc")

	u := url.URL{
		Scheme:   conf.Database.Engine,
		User:     user,
		Host:     conf.Database.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}
	return sqlx.Open(conf.Database.Engine, u.String())
}

// Open connects to the application database and waits until it answers.
func Open(conf *core.Config) (*sqlx.DB, error) {
	db, err := open(conf.Database.Name, false, conf)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// exists runs a `SELECT true ... WHERE x = $1` catalog lookup.
func exists(db *sqlx.DB, query, arg string) (bool, error) {
	var found bool
	err := db.Get(&found, query, arg)
	if errors.Cause(err) == sql.ErrNoRows {
		return false, nil
	}
	return found, err
}

// ensureAppRole creates the login role the API connects with. The admin connection is required.
func ensureAppRole(admin *sqlx.DB, conf *core.Config) error {
	if conf.Database.User == "" {
		return nil
	}
	found, err := exists(admin, "SELECT true FROM pg_roles WHERE rolname = $1", conf.Database.User)
	if err != nil || found {
		return errors.Wrap(err, "checking app role")
	}
	q := fmt.Sprintf(
		"CREATE ROLE %s LOGIN CREATEDB ENCRYPTED PASSWORD %s",
		pq.QuoteIdentifier(conf.Database.User), pq.QuoteLiteral(conf.Database.Password),
	)
	_, err = admin.Exec(q)
	return errors.Wrap(err, "creating app role")
}

// ensureDatabase creates the application database owned by the app role.
func ensureDatabase(db *sqlx.DB, conf *core.Config) error {
	found, err := exists(db, "SELECT true FROM pg_database WHERE datname = $1", conf.Database.Name)
	if err != nil || found {
		return errors.Wrap(err, "checking database")
	}
	_, err = db.Exec("CREATE DATABASE " + pq.QuoteIdentifier(conf.Database.Name))
	return errors.Wrap(err, "creating database")
}

// CreateIfNotExist prepares a fresh postgres server: the app role (as the admin user), then the database (as the app role).
func CreateIfNotExist(conf *core.Config) error {
	steps := []struct {
		admin  bool
		ensure func(*sqlx.DB, *core.Config) error
	}{
		{admin: true, ensure: ensureAppRole},
		{admin: false, ensure: ensureDatabase},
	}
	for _, step := range steps {
		db, err := open("postgres", step.admin, conf)
		if err != nil {
			return errors.Wrap(err, "opening maintenance database")
		}
		err = ping(db)
		if err == nil {
			err = step.ensure(db, conf)
		}
		_ = db.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// Migrate runs a goose command against the embedded migrations.
// Supported commands: up, up-by-one, up-to VERSION, down, down-to VERSION, redo.
func Migrate(db *sql.DB, command string, args ...string) error {
	version := func() (int64, error) {
		if len(args) == 0 {
			return 0, errors.Errorf("%s: missing VERSION", command)
		}
		v, err := strconv.ParseInt(args[0], 10, 64)
		return v, errors.Wrapf(err, "%s: invalid VERSION %q", command, args[0])
	}

	var err error
	switch command {
	case "up":
		err = goose.Up(db, appfs.FS, migrationsDir)
	case "up-by-one":
		err = goose.UpByOne(db, appfs.FS, migrationsDir)
	case "up-to":
		var v int64
		if v, err = version(); err == nil {
			err = goose.UpTo(db, appfs.FS, migrationsDir, v)
		}
	case "down":
		err = goose.Down(db, appfs.FS, migrationsDir)
	case "down-to":
		var v int64
		if v, err = version(); err == nil {
			err = goose.DownTo(db, appfs.FS, migrationsDir, v)
		}
	case "redo":
		err = goose.Redo(db, appfs.FS, migrationsDir)
	default:
		return errors.Wrap(ErrUnknownCommand, command)
	}
	return errors.Wrap(err, "migrating database")
}
