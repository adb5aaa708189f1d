package inmemdb

import (
	"context"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/message"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
)

type messageRepository struct {
	db *table[message.Message]
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *DB) message.Repository {
	return &messageRepository{db: db.messages}
}

var messageComparators = comparators[message.Message]{
	"nama":       func(a, b message.Message) int { return cmpStrings(a.Name, b.Name) },
	"rating":     func(a, b message.Message) int { return cmpInts(a.Rating, b.Rating) },
	"status":     func(a, b message.Message) int { return cmpStrings(string(a.Status), string(b.Status)) },
	"created_at": func(a, b message.Message) int { return a.CreatedAt.Compare(b.CreatedAt) },
}

func (repo *messageRepository) CreateMessage(_ context.Context, msg message.Message) (message.Message, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	msg.ID = newID()
	repo.db.rows[msg.ID] = msg
	return msg, nil
}

func (repo *messageRepository) QueryMessages(_ context.Context, filter *message.QueryFilter, ordering []core.DBOrdering) ([]message.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter == nil {
		filter = &message.QueryFilter{}
	}
	msgs := make([]message.Message, 0, len(repo.db.rows))
	for _, msg := range repo.db.rows {
		if filter.Search != "" && !(containsFold(msg.Name, filter.Search) || containsFold(msg.Body, filter.Search)) {
			continue
		}
		if !inSet(msg.Status, filter.Status) || !inSet(msg.Rating, filter.Rating) {
			continue
		}
		msgs = append(msgs, msg)
	}
	sortRows(msgs, ordering, messageComparators, core.DBOrdering{Field: "created_at"})
	return msgs, nil
}

func (repo *messageRepository) GetMessage(_ context.Context, id string) (message.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if msg, ok := repo.db.rows[id]; ok {
		return msg, nil
	}
	return message.Message{}, message.ErrNotFound
}

func (repo *messageRepository) UpdateMessageStatus(
	_ context.Context,
	id string,
	from, to workflow.Status,
	review workflow.Review,
	reply string,
) (message.Message, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	msg, ok := repo.db.rows[id]
	if !ok {
		return message.Message{}, message.ErrNotFound
	}
	if msg.Status != from {
		return message.Message{}, workflow.ErrStatusConflict
	}
	at := review.At
	msg.Status = to
	msg.ReviewedBy = review.By
	msg.ReviewedAt = &at
	msg.AdminReply = reply
	repo.db.rows[id] = msg
	return msg, nil
}

func (repo *messageRepository) UpdateMessageReply(_ context.Context, id string, status workflow.Status, reply string) (message.Message, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	msg, ok := repo.db.rows[id]
	if !ok {
		return message.Message{}, message.ErrNotFound
	}
	if msg.Status != status {
		return message.Message{}, workflow.ErrStatusConflict
	}
	msg.AdminReply = reply
	repo.db.rows[id] = msg
	return msg, nil
}

func (repo *messageRepository) CountMessagesByStatus(_ context.Context) (map[workflow.Status]int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(map[workflow.Status]int, len(workflow.Statuses))
	for _, msg := range repo.db.rows {
		counts[msg.Status]++
	}
	return counts, nil
}

func (repo *messageRepository) AverageApprovedRating(_ context.Context) (float64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var sum, n int
	for _, msg := range repo.db.rows {
		if msg.Status == workflow.StatusApproved {
			sum += msg.Rating
			n++
		}
	}
	if n == 0 {
		return 0, nil
	}
	return float64(sum) / float64(n), nil
}

func (repo *messageRepository) DeleteMessages(_ context.Context, ids ...string) error {
	repo.db.delete(ids...)
	return nil
}
