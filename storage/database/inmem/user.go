package inmemdb

import (
	"context"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
)

type userRepository struct {
	db *table[user.User]
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.users}
}

var userComparators = comparators[user.User]{
	"name":       func(a, b user.User) int { return cmpStrings(a.Name, b.Name) },
	"username":   func(a, b user.User) int { return cmpStrings(a.Username, b.Username) },
	"created_at": func(a, b user.User) int { return a.CreatedAt.Compare(b.CreatedAt) },
	"last_login": func(a, b user.User) int {
		switch {
		case a.LastLogin == nil && b.LastLogin == nil:
			return 0
		case a.LastLogin == nil:
			return -1
		case b.LastLogin == nil:
			return 1
		}
		return a.LastLogin.Compare(*b.LastLogin)
	},
}

func (repo *userRepository) CheckUniqueness(_ context.Context, username, email string, excludedID ...string) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, usr := range repo.db.rows {
		if len(excludedID) > 0 && usr.ID == excludedID[0] {
			continue
		}
		if usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	usr.ID = newID()
	repo.db.rows[usr.ID] = usr
	return usr, nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter == nil {
		filter = &user.QueryFilter{}
	}
	users := make([]user.User, 0, len(repo.db.rows))
	for _, usr := range repo.db.rows {
		if filter.Search != "" &&
			!(containsFold(usr.Name, filter.Search) || containsFold(usr.Username, filter.Search) || containsFold(usr.Email, filter.Search)) {
			continue
		}
		if !inSet(usr.Role, filter.Roles) {
			continue
		}
		if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
			continue
		}
		users = append(users, usr)
	}
	sortRows(users, ordering, userComparators, core.DBOrdering{Field: "created_at"})
	return users, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.rows[filter.ID]; ok {
			return usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	if filter.UsernameOrEmail != "" {
		for _, usr := range repo.db.rows {
			if usr.Username == filter.UsernameOrEmail || usr.Email == filter.UsernameOrEmail {
				return usr, nil
			}
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rows[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.rows[usr.ID] = usr
	return usr, nil
}
