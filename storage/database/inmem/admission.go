package inmemdb

import (
	"context"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/admission"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
)

type admissionRepository struct {
	db *table[admission.Registration]
}

var _ admission.Repository = (*admissionRepository)(nil) // interface compliance check

func NewAdmissionRepository(db *DB) admission.Repository {
	return &admissionRepository{db: db.registrations}
}

var registrationComparators = comparators[admission.Registration]{
	"nama_lengkap": func(a, b admission.Registration) int { return cmpStrings(a.ApplicantName, b.ApplicantName) },
	"program": func(a, b admission.Registration) int {
		return cmpStrings(string(a.ProgramChoice), string(b.ProgramChoice))
	},
	"status":     func(a, b admission.Registration) int { return cmpStrings(string(a.Status), string(b.Status)) },
	"created_at": func(a, b admission.Registration) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func (repo *admissionRepository) CreateRegistration(_ context.Context, reg admission.Registration) (admission.Registration, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	reg.ID = newID()
	repo.db.rows[reg.ID] = reg
	return reg, nil
}

func (repo *admissionRepository) QueryRegistrations(
	_ context.Context,
	filter *admission.QueryFilter,
	ordering []core.DBOrdering,
) ([]admission.Registration, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter == nil {
		filter = &admission.QueryFilter{}
	}
	regs := make([]admission.Registration, 0, len(repo.db.rows))
	for _, reg := range repo.db.rows {
		if filter.Search != "" &&
			!(containsFold(reg.ApplicantName, filter.Search) || containsFold(reg.GuardianName, filter.Search) || containsFold(reg.Phone, filter.Search)) {
			continue
		}
		if !inSet(reg.Status, filter.Status) || !inSet(reg.ProgramChoice, filter.Program) {
			continue
		}
		regs = append(regs, reg)
	}
	sortRows(regs, ordering, registrationComparators, core.DBOrdering{Field: "created_at"})
	return regs, nil
}

func (repo *admissionRepository) GetRegistration(_ context.Context, id string) (admission.Registration, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if reg, ok := repo.db.rows[id]; ok {
		return reg, nil
	}
	return admission.Registration{}, admission.ErrNotFound
}

func (repo *admissionRepository) UpdateRegistrationStatus(
	_ context.Context,
	id string,
	from, to workflow.Status,
	review workflow.Review,
) (admission.Registration, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	reg, ok := repo.db.rows[id]
	if !ok {
		return admission.Registration{}, admission.ErrNotFound
	}
	if reg.Status != from {
		return admission.Registration{}, workflow.ErrStatusConflict
	}
	at := review.At
	reg.Status = to
	reg.ReviewedBy = review.By
	reg.ReviewedAt = &at
	reg.ReviewNote = review.Note
	repo.db.rows[id] = reg
	return reg, nil
}

func (repo *admissionRepository) CountRegistrationsByStatus(_ context.Context) (map[workflow.Status]int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(map[workflow.Status]int, len(workflow.Statuses))
	for _, reg := range repo.db.rows {
		counts[reg.Status]++
	}
	return counts, nil
}

func (repo *admissionRepository) DeleteRegistrations(_ context.Context, ids ...string) error {
	repo.db.delete(ids...)
	return nil
}
