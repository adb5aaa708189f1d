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
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/teacher"
)

const teachersTable = "pengajar"

var (
	teacherColumns = []string{
		"id", "nama", "program", "jabatan", "pendidikan", "no_telepon", "email", "bio", "foto_url", "foto_path", "created_at", "updated_at",
	}

	teacherOrderings = map[string]string{
		"nama":       "nama",
		"program":    "program",
		"created_at": "created_at",
	}
)

type teacherRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"nama"`
	Program   string      `db:"program"`
	Position  null.String `db:"jabatan"`
	Education null.String `db:"pendidikan"`
	Phone     null.String `db:"no_telepon"`
	Email     null.String `db:"email"`
	Bio       null.String `db:"bio"`
	PhotoURL  null.String `db:"foto_url"`
	PhotoPath null.String `db:"foto_path"`
	CreatedAt time.Time   `db:"created_at"`
	UpdatedAt time.Time   `db:"updated_at"`
}

func (r teacherRow) teacher() teacher.Teacher {
	return teacher.Teacher{
		ID:        r.ID,
		Name:      r.Name,
		Program:   core.Program(r.Program),
		Position:  r.Position.String,
		Education: r.Education.String,
		Phone:     r.Phone.String,
		Email:     r.Email.String,
		Bio:       r.Bio.String,
		PhotoURL:  r.PhotoURL.String,
		PhotoPath: r.PhotoPath.String,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

func teacherValues(t teacher.Teacher) map[string]interface{} {
	return map[string]interface{}{
		"nama":       t.Name,
		"program":    string(t.Program),
		"jabatan":    nullString(t.Position),
		"pendidikan": nullString(t.Education),
		"no_telepon": nullString(t.Phone),
		"email":      nullString(t.Email),
		"bio":        nullString(t.Bio),
		"foto_url":   nullString(t.PhotoURL),
		"foto_path":  nullString(t.PhotoPath),
		"updated_at": t.UpdatedAt,
	}
}

type teacherRepository struct {
	db *sqlx.DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *sqlx.DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	t.ID = uuid.New().String()
	values := teacherValues(t)
	values["id"] = t.ID
	values["created_at"] = t.CreatedAt
	if _, err := exec(ctx, repo.db, psql.Insert(teachersTable).SetMap(values)); err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return t, nil
}

func (repo *teacherRepository) QueryTeachers(ctx context.Context, filter *teacher.QueryFilter, ordering []core.DBOrdering) ([]teacher.Teacher, error) {
	query := psql.Select(teacherColumns...).From(teachersTable)
	if filter != nil {
		if filter.Search != "" {
			query = query.Where(search(filter.Search, "nama", "jabatan"))
		}
		if len(filter.Program) > 0 {
			query = query.Where(sq.Eq{"program": strs(filter.Program)})
		}
	}
	query = orderBy(query, ordering, teacherOrderings, "nama ASC")

	var rows []teacherRow
	if err := selectRows(ctx, repo.db, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, r := range rows {
		teachers = append(teachers, r.teacher())
	}
	return teachers, nil
}

func (repo *teacherRepository) GetTeacher(ctx context.Context, id string) (teacher.Teacher, error) {
	if !isValidID(id) {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	var row teacherRow
	query := psql.Select(teacherColumns...).From(teachersTable).Where(sq.Eq{"id": id})
	if err := get(ctx, repo.db, &row, query); err != nil {
		return teacher.Teacher{}, trapNoRowsErr(err, teacher.ErrNotFound, "getting teacher")
	}
	return row.teacher(), nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	if !isValidID(t.ID) {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	res, err := exec(ctx, repo.db, psql.Update(teachersTable).SetMap(teacherValues(t)).Where(sq.Eq{"id": t.ID}))
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher")
	}
	if n, err := rowsAffected(res); err != nil {
		return teacher.Teacher{}, err
	} else if n == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return t, nil
}

func (repo *teacherRepository) DeleteTeachers(ctx context.Context, ids ...string) error {
	if ids = validIDs(ids); len(ids) == 0 {
		return nil
	}
	_, err := exec(ctx, repo.db, psql.Delete(teachersTable).Where(sq.Eq{"id": ids}))
	return errors.Wrap(err, "deleting teachers")
}
