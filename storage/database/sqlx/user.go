package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
)

const usersTable = "users"

var (
	userColumns = []string{"id", "name", "username", "email", "password_hash", "role", "is_active", "created_at", "updated_at", "last_login"}

	userOrderings = map[string]string{
		"name":       "name",
		"username":   "username",
		"created_at": "created_at",
		"last_login": "last_login",
	}
)

type userRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"name"`
	Username     string      `db:"username"`
	Email        null.String `db:"email"`
	PasswordHash []byte      `db:"password_hash"`
	Role         string      `db:"role"`
	IsActive     bool        `db:"is_active"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func (r userRow) user() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username,
		Email:        r.Email.String,
		Role:         user.Role(r.Role),
		IsActive:     r.IsActive,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
		LastLogin:    r.LastLogin.Ptr(),
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, username, email string, excludedID ...string) error {
	match := sq.Or{sq.Eq{"username": username}}
	if email != "" {
		match = append(match, sq.Eq{"email": email})
	}
	query := psql.Select("username").From(usersTable).Where(match).Limit(1)
	if len(excludedID) > 0 && isValidID(excludedID[0]) {
		query = query.Where(sq.NotEq{"id": excludedID[0]})
	}

	var found string
	if err := get(ctx, repo.db, &found, query); err != nil {
		if isNoRows(err) {
			return nil
		}
		return errors.Wrap(err, "checking user uniqueness")
	}
	if found == username {
		return user.ErrUsernameExists
	}
	return user.ErrEmailExists
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	query := psql.Insert(usersTable).Columns(userColumns...).Values(
		usr.ID, usr.Name, usr.Username, nullString(usr.Email), usr.PasswordHash, string(usr.Role), usr.IsActive,
		usr.CreatedAt, usr.UpdatedAt, null.TimeFromPtr(usr.LastLogin),
	)
	if _, err := exec(ctx, repo.db, query); err != nil {
		return user.User{}, repo.trapUniqueErr(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	query := psql.Select(userColumns...).From(usersTable)
	if filter != nil {
		if filter.Search != "" {
			query = query.Where(search(filter.Search, "name", "username", "email"))
		}
		if len(filter.Roles) > 0 {
			roles := make([]string, 0, len(filter.Roles))
			for _, r := range filter.Roles {
				roles = append(roles, string(r))
			}
			query = query.Where(sq.Eq{"role": roles})
		}
		if filter.IsActive != nil {
			query = query.Where(sq.Eq{"is_active": *filter.IsActive})
		}
	}
	query = orderBy(query, ordering, userOrderings, "created_at DESC")

	var rows []userRow
	if err := selectRows(ctx, repo.db, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.user())
	}
	return users, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	query := psql.Select(userColumns...).From(usersTable)
	switch {
	case filter.ID != "":
		if !isValidID(filter.ID) {
			return user.User{}, user.ErrNotFound
		}
		query = query.Where(sq.Eq{"id": filter.ID})
	case filter.UsernameOrEmail != "":
		query = query.Where(sq.Or{sq.Eq{"username": filter.UsernameOrEmail}, sq.Eq{"email": filter.UsernameOrEmail}})
	default:
		return user.User{}, user.ErrNotFound
	}

	var row userRow
	if err := get(ctx, repo.db, &row, query.Limit(1)); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "getting user")
	}
	return row.user(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	if !isValidID(usr.ID) {
		return user.User{}, user.ErrNotFound
	}
	query := psql.Update(usersTable).SetMap(map[string]interface{}{
		"name":          usr.Name,
		"email":         nullString(usr.Email),
		"password_hash": usr.PasswordHash,
		"role":          string(usr.Role),
		"is_active":     usr.IsActive,
		"updated_at":    usr.UpdatedAt,
		"last_login":    null.TimeFromPtr(usr.LastLogin),
	}).Where(sq.Eq{"id": usr.ID})

	res, err := exec(ctx, repo.db, query)
	if err != nil {
		return user.User{}, repo.trapUniqueErr(err, "updating user")
	}
	if n, err := rowsAffected(res); err != nil {
		return user.User{}, err
	} else if n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) trapUniqueErr(err error, msg string) error {
	switch {
	case isUniqueViolation(err, "users_username_key"):
		return user.ErrUsernameExists
	case isUniqueViolation(err, "users_email_key"):
		return user.ErrEmailExists
	}
	return errors.Wrap(err, msg)
}
