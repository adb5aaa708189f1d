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
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/student"
)

const studentsTable = "siswa"

var (
	studentColumns = []string{
		"id", "nama", "nis", "program", "status", "jenis_kelamin", "tanggal_lahir", "nama_wali", "no_telepon", "alamat",
		"foto_url", "foto_path", "created_at", "updated_at",
	}

	studentOrderings = map[string]string{
		"nama":       "nama",
		"nis":        "nis",
		"program":    "program",
		"created_at": "created_at",
	}
)

type studentRow struct {
	ID           string      `db:"id"`
	Name         string      `db:"nama"`
	NIS          null.String `db:"nis"`
	Program      string      `db:"program"`
	Status       string      `db:"status"`
	Gender       null.String `db:"jenis_kelamin"`
	BirthDate    null.Time   `db:"tanggal_lahir"`
	GuardianName null.String `db:"nama_wali"`
	Phone        null.String `db:"no_telepon"`
	Address      null.String `db:"alamat"`
	PhotoURL     null.String `db:"foto_url"`
	PhotoPath    null.String `db:"foto_path"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (r studentRow) student() student.Student {
	return student.Student{
		ID:           r.ID,
		Name:         r.Name,
		NIS:          r.NIS.String,
		Program:      core.Program(r.Program),
		Status:       student.Status(r.Status),
		Gender:       r.Gender.String,
		BirthDate:    r.BirthDate.Ptr(),
		GuardianName: r.GuardianName.String,
		Phone:        r.Phone.String,
		Address:      r.Address.String,
		PhotoURL:     r.PhotoURL.String,
		PhotoPath:    r.PhotoPath.String,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

func studentValues(s student.Student) map[string]interface{} {
	return map[string]interface{}{
		"nama":          s.Name,
		"nis":           nullString(s.NIS),
		"program":       string(s.Program),
		"status":        string(s.Status),
		"jenis_kelamin": nullString(s.Gender),
		"tanggal_lahir": null.TimeFromPtr(s.BirthDate),
		"nama_wali":     nullString(s.GuardianName),
		"no_telepon":    nullString(s.Phone),
		"alamat":        nullString(s.Address),
		"foto_url":      nullString(s.PhotoURL),
		"foto_path":     nullString(s.PhotoPath),
		"updated_at":    s.UpdatedAt,
	}
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	s.ID = uuid.New().String()
	values := studentValues(s)
	values["id"] = s.ID
	values["created_at"] = s.CreatedAt
	if _, err := exec(ctx, repo.db, psql.Insert(studentsTable).SetMap(values)); err != nil {
		if isUniqueViolation(err, "siswa_nis_key") {
			return student.Student{}, student.ErrNISExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return s, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	query := psql.Select(studentColumns...).From(studentsTable)
	if filter != nil {
		if filter.Search != "" {
			query = query.Where(search(filter.Search, "nama", "nis"))
		}
		if len(filter.Program) > 0 {
			query = query.Where(sq.Eq{"program": strs(filter.Program)})
		}
		if len(filter.Status) > 0 {
			query = query.Where(sq.Eq{"status": strs(filter.Status)})
		}
	}
	query = orderBy(query, ordering, studentOrderings, "nama ASC")

	var rows []studentRow
	if err := selectRows(ctx, repo.db, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.student())
	}
	return students, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	if !isValidID(id) {
		return student.Student{}, student.ErrNotFound
	}
	var row studentRow
	query := psql.Select(studentColumns...).From(studentsTable).Where(sq.Eq{"id": id})
	if err := get(ctx, repo.db, &row, query); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "getting student")
	}
	return row.student(), nil
}

func (repo *studentRepository) CheckNISUniqueness(ctx context.Context, nis string, excludedID ...string) error {
	if nis == "" {
		return nil
	}
	query := psql.Select("true").From(studentsTable).Where(sq.Eq{"nis": nis}).Limit(1)
	if len(excludedID) > 0 && isValidID(excludedID[0]) {
		query = query.Where(sq.NotEq{"id": excludedID[0]})
	}
	var exists bool
	if err := get(ctx, repo.db, &exists, query); err != nil {
		if isNoRows(err) {
			return nil
		}
		return errors.Wrap(err, "checking NIS uniqueness")
	}
	return student.ErrNISExists
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	if !isValidID(s.ID) {
		return student.Student{}, student.ErrNotFound
	}
	res, err := exec(ctx, repo.db, psql.Update(studentsTable).SetMap(studentValues(s)).Where(sq.Eq{"id": s.ID}))
	if err != nil {
		if isUniqueViolation(err, "siswa_nis_key") {
			return student.Student{}, student.ErrNISExists
		}
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := rowsAffected(res); err != nil {
		return student.Student{}, err
	} else if n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return s, nil
}

func (repo *studentRepository) CountStudents(ctx context.Context) (student.Count, error) {
	var rows []struct {
		Program string `db:"program"`
		Status  string `db:"status"`
		Count   int    `db:"count"`
	}
	query := psql.Select("program", "status", "COUNT(*) AS count").From(studentsTable).GroupBy("program", "status")
	if err := selectRows(ctx, repo.db, &rows, query); err != nil {
		return nil, errors.Wrap(err, "counting students")
	}
	count := make(student.Count)
	for _, r := range rows {
		prog := core.Program(r.Program)
		if _, ok := count[prog]; !ok {
			count[prog] = make(map[student.Status]int)
		}
		count[prog][student.Status(r.Status)] = r.Count
	}
	return count, nil
}

func (repo *studentRepository) DeleteStudents(ctx context.Context, ids ...string) error {
	if ids = validIDs(ids); len(ids) == 0 {
		return nil
	}
	_, err := exec(ctx, repo.db, psql.Delete(studentsTable).Where(sq.Eq{"id": ids}))
	return errors.Wrap(err, "deleting students")
}
