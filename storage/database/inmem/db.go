// Package inmemdb implements the repositories on in-process maps. It backs the tests and the DEV server
// when no database is configured.
package inmemdb

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/admission"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/album"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/graduate"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/message"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/settings"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/student"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/teacher"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/user"
)

type (
	DB struct {
		users         *table[user.User]
		registrations *table[admission.Registration]
		messages      *table[message.Message]
		students      *table[student.Student]
		teachers      *table[teacher.Teacher]
		graduates     *table[graduate.Graduate]
		albums        *table[album.Album]
		photos        *table[album.Photo]

		settingsMu sync.Mutex
		settings   *settings.Settings
	}

	table[T any] struct {
		rows  map[string]T
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		users:         newTable[user.User](),
		registrations: newTable[admission.Registration](),
		messages:      newTable[message.Message](),
		students:      newTable[student.Student](),
		teachers:      newTable[teacher.Teacher](),
		graduates:     newTable[graduate.Graduate](),
		albums:        newTable[album.Album](),
		photos:        newTable[album.Photo](),
	}
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]T)}
}

// all returns the rows; callers hold the lock.
func (t *table[T]) all() []T {
	rows := make([]T, 0, len(t.rows))
	for _, r := range t.rows {
		rows = append(rows, r)
	}
	return rows
}

func (t *table[T]) delete(ids ...string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	for _, id := range ids {
		delete(t.rows, id)
	}
}

func newID() string {
	return uuid.New().String()
}

// comparators compare two rows on one ordering field, returning <0, 0 or >0.
type comparators[T any] map[string]func(a, b T) int

// sortRows orders rows by the known orderings, falling back to `fallback` when none applies.
func sortRows[T any](rows []T, orderings []core.DBOrdering, cmps comparators[T], fallback ...core.DBOrdering) {
	ords := make([]core.DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		if _, ok := cmps[ord.Field]; ok {
			ords = append(ords, ord)
		}
	}
	if len(ords) == 0 {
		ords = fallback
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range ords {
			c := cmps[ord.Field](rows[i], rows[j])
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func cmpStrings(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func cmpInts(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func inSet[T comparable](v T, set []T) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if v == s {
			return true
		}
	}
	return false
}
