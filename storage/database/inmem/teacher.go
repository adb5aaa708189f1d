package inmemdb

import (
	"context"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/teacher"
)

type teacherRepository struct {
	db *table[teacher.Teacher]
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db.teachers}
}

var teacherComparators = comparators[teacher.Teacher]{
	"nama":       func(a, b teacher.Teacher) int { return cmpStrings(a.Name, b.Name) },
	"program":    func(a, b teacher.Teacher) int { return cmpStrings(string(a.Program), string(b.Program)) },
	"created_at": func(a, b teacher.Teacher) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func (repo *teacherRepository) CreateTeacher(_ context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	t.ID = newID()
	repo.db.rows[t.ID] = t
	return t, nil
}

func (repo *teacherRepository) QueryTeachers(_ context.Context, filter *teacher.QueryFilter, ordering []core.DBOrdering) ([]teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter == nil {
		filter = &teacher.QueryFilter{}
	}
	teachers := make([]teacher.Teacher, 0, len(repo.db.rows))
	for _, t := range repo.db.rows {
		if filter.Search != "" && !(containsFold(t.Name, filter.Search) || containsFold(t.Position, filter.Search)) {
			continue
		}
		if !inSet(t.Program, filter.Program) {
			continue
		}
		teachers = append(teachers, t)
	}
	sortRows(teachers, ordering, teacherComparators, core.DBOrdering{Field: "nama", Ascending: true})
	return teachers, nil
}

func (repo *teacherRepository) GetTeacher(_ context.Context, id string) (teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if t, ok := repo.db.rows[id]; ok {
		return t, nil
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) UpdateTeacher(_ context.Context, t teacher.Teacher) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[t.ID]; !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	repo.db.rows[t.ID] = t
	return t, nil
}

func (repo *teacherRepository) DeleteTeachers(_ context.Context, ids ...string) error {
	repo.db.delete(ids...)
	return nil
}
