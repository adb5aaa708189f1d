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
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/graduate"
)

const graduatesTable = "lulusan"

var (
	graduateColumns = []string{
		"id", "nama", "program", "tahun_lulus", "prestasi", "kesan", "melanjutkan_ke", "foto_url", "foto_path", "created_at", "updated_at",
	}

	graduateOrderings = map[string]string{
		"nama":        "nama",
		"program":     "program",
		"tahun_lulus": "tahun_lulus",
		"created_at":  "created_at",
	}
)

type graduateRow struct {
	ID             string      `db:"id"`
	Name           string      `db:"nama"`
	Program        string      `db:"program"`
	GraduationYear int         `db:"tahun_lulus"`
	Achievement    null.String `db:"prestasi"`
	Testimony      null.String `db:"kesan"`
	ContinuedTo    null.String `db:"melanjutkan_ke"`
	PhotoURL       null.String `db:"foto_url"`
	PhotoPath      null.String `db:"foto_path"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
}

func (r graduateRow) graduate() graduate.Graduate {
	return graduate.Graduate{
		ID:             r.ID,
		Name:           r.Name,
		Program:        core.Program(r.Program),
		GraduationYear: r.GraduationYear,
		Achievement:    r.Achievement.String,
		Testimony:      r.Testimony.String,
		ContinuedTo:    r.ContinuedTo.String,
		PhotoURL:       r.PhotoURL.String,
		PhotoPath:      r.PhotoPath.String,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}

func graduateValues(g graduate.Graduate) map[string]interface{} {
	return map[string]interface{}{
		"nama":           g.Name,
		"program":        string(g.Program),
		"tahun_lulus":    g.GraduationYear,
		"prestasi":       nullString(g.Achievement),
		"kesan":          nullString(g.Testimony),
		"melanjutkan_ke": nullString(g.ContinuedTo),
		"foto_url":       nullString(g.PhotoURL),
		"foto_path":      nullString(g.PhotoPath),
		"updated_at":     g.UpdatedAt,
	}
}

type graduateRepository struct {
	db *sqlx.DB
}

var _ graduate.Repository = (*graduateRepository)(nil) // interface compliance check

func NewGraduateRepository(db *sqlx.DB) graduate.Repository {
	return &graduateRepository{db: db}
}

func (repo *graduateRepository) CreateGraduate(ctx context.Context, g graduate.Graduate) (graduate.Graduate, error) {
	g.ID = uuid.New().String()
	values := graduateValues(g)
	values["id"] = g.ID
	values["created_at"] = g.CreatedAt
	if _, err := exec(ctx, repo.db, psql.Insert(graduatesTable).SetMap(values)); err != nil {
		return graduate.Graduate{}, errors.Wrap(err, "inserting graduate")
	}
	return g, nil
}

func (repo *graduateRepository) QueryGraduates(ctx context.Context, filter *graduate.QueryFilter, ordering []core.DBOrdering) ([]graduate.Graduate, error) {
	query := psql.Select(graduateColumns...).From(graduatesTable)
	if filter != nil {
		if filter.Search != "" {
			query = query.Where(search(filter.Search, "nama", "melanjutkan_ke"))
		}
		if len(filter.Program) > 0 {
			query = query.Where(sq.Eq{"program": strs(filter.Program)})
		}
		if len(filter.Year) > 0 {
			query = query.Where(sq.Eq{"tahun_lulus": filter.Year})
		}
	}
	query = orderBy(query, ordering, graduateOrderings, "tahun_lulus DESC", "nama ASC")

	var rows []graduateRow
	if err := selectRows(ctx, repo.db, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying graduates")
	}
	grads := make([]graduate.Graduate, 0, len(rows))
	for _, r := range rows {
		grads = append(grads, r.graduate())
	}
	return grads, nil
}

func (repo *graduateRepository) GetGraduate(ctx context.Context, id string) (graduate.Graduate, error) {
	if !isValidID(id) {
		return graduate.Graduate{}, graduate.ErrNotFound
	}
	var row graduateRow
	query := psql.Select(graduateColumns...).From(graduatesTable).Where(sq.Eq{"id": id})
	if err := get(ctx, repo.db, &row, query); err != nil {
		return graduate.Graduate{}, trapNoRowsErr(err, graduate.ErrNotFound, "getting graduate")
	}
	return row.graduate(), nil
}

func (repo *graduateRepository) UpdateGraduate(ctx context.Context, g graduate.Graduate) (graduate.Graduate, error) {
	if !isValidID(g.ID) {
		return graduate.Graduate{}, graduate.ErrNotFound
	}
	res, err := exec(ctx, repo.db, psql.Update(graduatesTable).SetMap(graduateValues(g)).Where(sq.Eq{"id": g.ID}))
	if err != nil {
		return graduate.Graduate{}, errors.Wrap(err, "updating graduate")
	}
	if n, err := rowsAffected(res); err != nil {
		return graduate.Graduate{}, err
	} else if n == 0 {
		return graduate.Graduate{}, graduate.ErrNotFound
	}
	return g, nil
}

func (repo *graduateRepository) DeleteGraduates(ctx context.Context, ids ...string) error {
	if ids = validIDs(ids); len(ids) == 0 {
		return nil
	}
	_, err := exec(ctx, repo.db, psql.Delete(graduatesTable).Where(sq.Eq{"id": ids}))
	return errors.Wrap(err, "deleting graduates")
}
