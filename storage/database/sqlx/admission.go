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
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/admission"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
)

const registrationsTable = "spmb_registrations"

var (
	registrationColumns = []string{
		"id", "nama_lengkap", "program_pilihan", "nama_wali", "no_telepon", "email", "alamat", "tanggal_lahir",
		"status", "created_at", "reviewed_by", "reviewed_at", "review_note",
	}

	registrationOrderings = map[string]string{
		"nama_lengkap": "nama_lengkap",
		"program":      "program_pilihan",
		"status":       "status",
		"created_at":   "created_at",
	}
)

type registrationRow struct {
	ID            string      `db:"id"`
	ApplicantName string      `db:"nama_lengkap"`
	ProgramChoice string      `db:"program_pilihan"`
	GuardianName  string      `db:"nama_wali"`
	Phone         string      `db:"no_telepon"`
	Email         null.String `db:"email"`
	Address       string      `db:"alamat"`
	BirthDate     null.Time   `db:"tanggal_lahir"`
	Status        string      `db:"status"`
	CreatedAt     time.Time   `db:"created_at"`
	ReviewedBy    null.String `db:"reviewed_by"`
	ReviewedAt    null.Time   `db:"reviewed_at"`
	ReviewNote    null.String `db:"review_note"`
}

func (r registrationRow) registration() admission.Registration {
	return admission.Registration{
		ID:            r.ID,
		ApplicantName: r.ApplicantName,
		ProgramChoice: core.Program(r.ProgramChoice),
		GuardianName:  r.GuardianName,
		Phone:         r.Phone,
		Email:         r.Email.String,
		Address:       r.Address,
		BirthDate:     r.BirthDate.Ptr(),
		Status:        workflow.Status(r.Status),
		CreatedAt:     r.CreatedAt.UTC(),
		ReviewedBy:    r.ReviewedBy.String,
		ReviewedAt:    r.ReviewedAt.Ptr(),
		ReviewNote:    r.ReviewNote.String,
	}
}

type admissionRepository struct {
	db *sqlx.DB
}

var _ admission.Repository = (*admissionRepository)(nil) // interface compliance check

func NewAdmissionRepository(db *sqlx.DB) admission.Repository {
	return &admissionRepository{db: db}
}

func (repo *admissionRepository) CreateRegistration(ctx context.Context, reg admission.Registration) (admission.Registration, error) {
	reg.ID = uuid.New().String()
	query := psql.Insert(registrationsTable).
		Columns("id", "nama_lengkap", "program_pilihan", "nama_wali", "no_telepon", "email", "alamat", "tanggal_lahir", "status", "created_at").
		Values(
			reg.ID, reg.ApplicantName, string(reg.ProgramChoice), reg.GuardianName, reg.Phone, nullString(reg.Email),
			reg.Address, null.TimeFromPtr(reg.BirthDate), string(reg.Status), reg.CreatedAt,
		)
	if _, err := exec(ctx, repo.db, query); err != nil {
		return admission.Registration{}, errors.Wrap(err, "inserting registration")
	}
	return reg, nil
}

func (repo *admissionRepository) QueryRegistrations(
	ctx context.Context,
	filter *admission.QueryFilter,
	ordering []core.DBOrdering,
) ([]admission.Registration, error) {
	query := psql.Select(registrationColumns...).From(registrationsTable)
	if filter != nil {
		if filter.Search != "" {
			query = query.Where(search(filter.Search, "nama_lengkap", "nama_wali", "no_telepon"))
		}
		if len(filter.Status) > 0 {
			query = query.Where(sq.Eq{"status": strs(filter.Status)})
		}
		if len(filter.Program) > 0 {
			query = query.Where(sq.Eq{"program_pilihan": strs(filter.Program)})
		}
	}
	query = orderBy(query, ordering, registrationOrderings, "created_at DESC")

	var rows []registrationRow
	if err := selectRows(ctx, repo.db, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying registrations")
	}
	regs := make([]admission.Registration, 0, len(rows))
	for _, r := range rows {
		regs = append(regs, r.registration())
	}
	return regs, nil
}

func (repo *admissionRepository) GetRegistration(ctx context.Context, id string) (admission.Registration, error) {
	if !isValidID(id) {
		return admission.Registration{}, admission.ErrNotFound
	}
	var row registrationRow
	query := psql.Select(registrationColumns...).From(registrationsTable).Where(sq.Eq{"id": id})
	if err := get(ctx, repo.db, &row, query); err != nil {
		return admission.Registration{}, trapNoRowsErr(err, admission.ErrNotFound, "getting registration")
	}
	return row.registration(), nil
}

// UpdateRegistrationStatus only updates a row still in status `from`, so that concurrent reviews cannot both succeed.
func (repo *admissionRepository) UpdateRegistrationStatus(
	ctx context.Context,
	id string,
	from, to workflow.Status,
	review workflow.Review,
) (admission.Registration, error) {
	if !isValidID(id) {
		return admission.Registration{}, admission.ErrNotFound
	}
	query := psql.Update(registrationsTable).SetMap(map[string]interface{}{
		"status":      string(to),
		"reviewed_by": nullString(review.By),
		"reviewed_at": review.At,
		"review_note": nullString(review.Note),
	}).
		Where(sq.Eq{"id": id, "status": string(from)}).
		Suffix("RETURNING " + joinColumns(registrationColumns))

	var row registrationRow
	if err := get(ctx, repo.db, &row, query); err != nil {
		if isNoRows(err) {
			return admission.Registration{}, missingOrConflict(ctx, repo.db, registrationsTable, id, admission.ErrNotFound)
		}
		return admission.Registration{}, errors.Wrap(err, "updating registration status")
	}
	return row.registration(), nil
}

func (repo *admissionRepository) CountRegistrationsByStatus(ctx context.Context) (map[workflow.Status]int, error) {
	return countByStatus(ctx, repo.db, registrationsTable)
}

func (repo *admissionRepository) DeleteRegistrations(ctx context.Context, ids ...string) error {
	if ids = validIDs(ids); len(ids) == 0 {
		return nil
	}
	_, err := exec(ctx, repo.db, psql.Delete(registrationsTable).Where(sq.Eq{"id": ids}))
	return errors.Wrap(err, "deleting registrations")
}
