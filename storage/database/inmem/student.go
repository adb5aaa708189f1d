package inmemdb

import (
	"context"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/student"
)

type studentRepository struct {
	db *table[student.Student]
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db.students}
}

var studentComparators = comparators[student.Student]{
	"nama":       func(a, b student.Student) int { return cmpStrings(a.Name, b.Name) },
	"nis":        func(a, b student.Student) int { return cmpStrings(a.NIS, b.NIS) },
	"program":    func(a, b student.Student) int { return cmpStrings(string(a.Program), string(b.Program)) },
	"created_at": func(a, b student.Student) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if err := repo.checkNIS(s.NIS); err != nil {
		return student.Student{}, err
	}
	s.ID = newID()
	repo.db.rows[s.ID] = s
	return s, nil
}

func (repo *studentRepository) QueryStudents(_ context.Context, filter *student.QueryFilter, ordering []core.DBOrdering) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter == nil {
		filter = &student.QueryFilter{}
	}
	students := make([]student.Student, 0, len(repo.db.rows))
	for _, s := range repo.db.rows {
		if filter.Search != "" && !(containsFold(s.Name, filter.Search) || containsFold(s.NIS, filter.Search)) {
			continue
		}
		if !inSet(s.Program, filter.Program) || !inSet(s.Status, filter.Status) {
			continue
		}
		students = append(students, s)
	}
	sortRows(students, ordering, studentComparators, core.DBOrdering{Field: "nama", Ascending: true})
	return students, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.rows[id]; ok {
		return s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) checkNIS(nis string, excludedID ...string) error {
	if nis == "" {
		return nil
	}
	for _, s := range repo.db.rows {
		if len(excludedID) > 0 && s.ID == excludedID[0] {
			continue
		}
		if s.NIS == nis {
			return student.ErrNISExists
		}
	}
	return nil
}

func (repo *studentRepository) CheckNISUniqueness(_ context.Context, nis string, excludedID ...string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.checkNIS(nis, excludedID...)
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[s.ID]; !ok {
		return student.Student{}, student.ErrNotFound
	}
	if err := repo.checkNIS(s.NIS, s.ID); err != nil {
		return student.Student{}, err
	}
	repo.db.rows[s.ID] = s
	return s, nil
}

func (repo *studentRepository) CountStudents(_ context.Context) (student.Count, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	count := make(student.Count)
	for _, s := range repo.db.rows {
		if _, ok := count[s.Program]; !ok {
			count[s.Program] = make(map[student.Status]int)
		}
		count[s.Program][s.Status]++
	}
	return count, nil
}

func (repo *studentRepository) DeleteStudents(_ context.Context, ids ...string) error {
	repo.db.delete(ids...)
	return nil
}
