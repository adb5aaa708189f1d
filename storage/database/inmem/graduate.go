package inmemdb

import (
	"context"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/graduate"
)

type graduateRepository struct {
	db *table[graduate.Graduate]
}

var _ graduate.Repository = (*graduateRepository)(nil) // interface compliance check

func NewGraduateRepository(db *DB) graduate.Repository {
	return &graduateRepository{db: db.graduates}
}

var graduateComparators = comparators[graduate.Graduate]{
	"nama":        func(a, b graduate.Graduate) int { return cmpStrings(a.Name, b.Name) },
	"program":     func(a, b graduate.Graduate) int { return cmpStrings(string(a.Program), string(b.Program)) },
	"tahun_lulus": func(a, b graduate.Graduate) int { return cmpInts(a.GraduationYear, b.GraduationYear) },
	"created_at":  func(a, b graduate.Graduate) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func (repo *graduateRepository) CreateGraduate(_ context.Context, g graduate.Graduate) (graduate.Graduate, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	g.ID = newID()
	repo.db.rows[g.ID] = g
	return g, nil
}

func (repo *graduateRepository) QueryGraduates(_ context.Context, filter *graduate.QueryFilter, ordering []core.DBOrdering) ([]graduate.Graduate, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter == nil {
		filter = &graduate.QueryFilter{}
	}
	grads := make([]graduate.Graduate, 0, len(repo.db.rows))
	for _, g := range repo.db.rows {
		if filter.Search != "" && !(containsFold(g.Name, filter.Search) || containsFold(g.ContinuedTo, filter.Search)) {
			continue
		}
		if !inSet(g.Program, filter.Program) || !inSet(g.GraduationYear, filter.Year) {
			continue
		}
		grads = append(grads, g)
	}
	sortRows(grads, ordering, graduateComparators,
		core.DBOrdering{Field: "tahun_lulus"}, core.DBOrdering{Field: "nama", Ascending: true})
	return grads, nil
}

func (repo *graduateRepository) GetGraduate(_ context.Context, id string) (graduate.Graduate, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if g, ok := repo.db.rows[id]; ok {
		return g, nil
	}
	return graduate.Graduate{}, graduate.ErrNotFound
}

func (repo *graduateRepository) UpdateGraduate(_ context.Context, g graduate.Graduate) (graduate.Graduate, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[g.ID]; !ok {
		return graduate.Graduate{}, graduate.ErrNotFound
	}
	repo.db.rows[g.ID] = g
	return g, nil
}

func (repo *graduateRepository) DeleteGraduates(_ context.Context, ids ...string) error {
	repo.db.delete(ids...)
	return nil
}
