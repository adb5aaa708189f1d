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
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/message"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
)

const messagesTable = "pesan"

var (
	messageColumns = []string{"id", "nama", "email", "rating", "pesan", "status", "balasan_admin", "created_at", "reviewed_by", "reviewed_at"}

	messageOrderings = map[string]string{
		"nama":       "nama",
		"rating":     "rating",
		"status":     "status",
		"created_at": "created_at",
	}
)

type messageRow struct {
	ID         string      `db:"id"`
	Name       string      `db:"nama"`
	Email      null.String `db:"email"`
	Rating     int         `db:"rating"`
	Body       string      `db:"pesan"`
	Status     string      `db:"status"`
	AdminReply null.String `db:"balasan_admin"`
	CreatedAt  time.Time   `db:"created_at"`
	ReviewedBy null.String `db:"reviewed_by"`
	ReviewedAt null.Time   `db:"reviewed_at"`
}

func (r messageRow) message() message.Message {
	return message.Message{
		ID:         r.ID,
		Name:       r.Name,
		Email:      r.Email.String,
		Rating:     r.Rating,
		Body:       r.Body,
		Status:     workflow.Status(r.Status),
		AdminReply: r.AdminReply.String,
		CreatedAt:  r.CreatedAt.UTC(),
		ReviewedBy: r.ReviewedBy.String,
		ReviewedAt: r.ReviewedAt.Ptr(),
	}
}

type messageRepository struct {
	db *sqlx.DB
}

var _ message.Repository = (*messageRepository)(nil) // interface compliance check

func NewMessageRepository(db *sqlx.DB) message.Repository {
	return &messageRepository{db: db}
}

func (repo *messageRepository) CreateMessage(ctx context.Context, msg message.Message) (message.Message, error) {
	msg.ID = uuid.New().String()
	query := psql.Insert(messagesTable).
		Columns("id", "nama", "email", "rating", "pesan", "status", "created_at").
		Values(msg.ID, msg.Name, nullString(msg.Email), msg.Rating, msg.Body, string(msg.Status), msg.CreatedAt)
	if _, err := exec(ctx, repo.db, query); err != nil {
		return message.Message{}, errors.Wrap(err, "inserting message")
	}
	return msg, nil
}

func (repo *messageRepository) QueryMessages(ctx context.Context, filter *message.QueryFilter, ordering []core.DBOrdering) ([]message.Message, error) {
	query := psql.Select(messageColumns...).From(messagesTable)
	if filter != nil {
		if filter.Search != "" {
			query = query.Where(search(filter.Search, "nama", "pesan"))
		}
		if len(filter.Status) > 0 {
			query = query.Where(sq.Eq{"status": strs(filter.Status)})
		}
		if len(filter.Rating) > 0 {
			query = query.Where(sq.Eq{"rating": filter.Rating})
		}
	}
	query = orderBy(query, ordering, messageOrderings, "created_at DESC")

	var rows []messageRow
	if err := selectRows(ctx, repo.db, &rows, query); err != nil {
		return nil, errors.Wrap(err, "querying messages")
	}
	msgs := make([]message.Message, 0, len(rows))
	for _, r := range rows {
		msgs = append(msgs, r.message())
	}
	return msgs, nil
}

func (repo *messageRepository) GetMessage(ctx context.Context, id string) (message.Message, error) {
	if !isValidID(id) {
		return message.Message{}, message.ErrNotFound
	}
	var row messageRow
	query := psql.Select(messageColumns...).From(messagesTable).Where(sq.Eq{"id": id})
	if err := get(ctx, repo.db, &row, query); err != nil {
		return message.Message{}, trapNoRowsErr(err, message.ErrNotFound, "getting message")
	}
	return row.message(), nil
}

func (repo *messageRepository) update(ctx context.Context, id string, status workflow.Status, set map[string]interface{}) (message.Message, error) {
	if !isValidID(id) {
		return message.Message{}, message.ErrNotFound
	}
	query := psql.Update(messagesTable).SetMap(set).
		Where(sq.Eq{"id": id, "status": string(status)}).
		Suffix("RETURNING " + joinColumns(messageColumns))

	var row messageRow
	if err := get(ctx, repo.db, &row, query); err != nil {
		if isNoRows(err) {
			return message.Message{}, missingOrConflict(ctx, repo.db, messagesTable, id, message.ErrNotFound)
		}
		return message.Message{}, errors.Wrap(err, "updating message")
	}
	return row.message(), nil
}

func (repo *messageRepository) UpdateMessageStatus(
	ctx context.Context,
	id string,
	from, to workflow.Status,
	review workflow.Review,
	reply string,
) (message.Message, error) {
	return repo.update(ctx, id, from, map[string]interface{}{
		"status":        string(to),
		"reviewed_by":   nullString(review.By),
		"reviewed_at":   review.At,
		"balasan_admin": nullString(reply),
	})
}

func (repo *messageRepository) UpdateMessageReply(ctx context.Context, id string, status workflow.Status, reply string) (message.Message, error) {
	return repo.update(ctx, id, status, map[string]interface{}{"balasan_admin": nullString(reply)})
}

func (repo *messageRepository) CountMessagesByStatus(ctx context.Context) (map[workflow.Status]int, error) {
	return countByStatus(ctx, repo.db, messagesTable)
}

func (repo *messageRepository) AverageApprovedRating(ctx context.Context) (float64, error) {
	var avg null.Float64
	query := psql.Select("AVG(rating)").From(messagesTable).Where(sq.Eq{"status": string(workflow.StatusApproved)})
	if err := get(ctx, repo.db, &avg, query); err != nil {
		return 0, errors.Wrap(err, "averaging ratings")
	}
	return avg.Float64, nil
}

func (repo *messageRepository) DeleteMessages(ctx context.Context, ids ...string) error {
	if ids = validIDs(ids); len(ids) == 0 {
		return nil
	}
	_, err := exec(ctx, repo.db, psql.Delete(messagesTable).Where(sq.Eq{"id": ids}))
	return errors.Wrap(err, "deleting messages")
}
