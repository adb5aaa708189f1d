// Package sqlxrepos implements the repositories on PostgreSQL, with queries built by squirrel and scanned by sqlx.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/workflow"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

var (
	psql       = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	likeEscape = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
)

func get(ctx context.Context, db sqlx.QueryerContext, dest interface{}, query sq.Sqlizer) error {
	q, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.GetContext(ctx, db, dest, q, args...)
}

func selectRows(ctx context.Context, db sqlx.QueryerContext, dest interface{}, query sq.Sqlizer) error {
	q, args, err := query.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.SelectContext(ctx, db, dest, q, args...)
}

func exec(ctx context.Context, db sqlx.ExecerContext, query sq.Sqlizer) (sql.Result, error) {
	q, args, err := query.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	return db.ExecContext(ctx, q, args...)
}

// orderBy applies the whitelisted orderings, or `fallback` when none is allowed.
func orderBy(query sq.SelectBuilder, orderings []core.DBOrdering, columns map[string]string, fallback ...string) sq.SelectBuilder {
	allowed := core.AllowedOrderings(orderings, columns)
	if len(allowed) == 0 {
		return query.OrderBy(fallback...)
	}
	clauses := make([]string, 0, len(allowed))
	for _, ord := range allowed {
		clauses = append(clauses, ord.String())
	}
	return query.OrderBy(clauses...)
}

// search matches `term` case-insensitively anywhere in one of `columns`.
func search(term string, columns ...string) sq.Or {
	pattern := "%" + likeEscape.Replace(term) + "%"
	or := make(sq.Or, 0, len(columns))
	for _, col := range columns {
		or = append(or, sq.ILike{col: pattern})
	}
	return or
}

// trapNoRowsErr maps psql "no rows" err to `notFound`
func trapNoRowsErr(err, notFound error, msg string) error {
	if isNoRows(err) {
		return notFound
	}
	return errors.Wrap(err, msg)
}

func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == uniqueViolation && pqErr.Constraint == constraint
}

func isForeignKeyViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == foreignKeyViolation
}

// isValidID reports whether `id` can be compared to a UUID column without a psql error.
func isValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func validIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if isValidID(id) {
			valid = append(valid, id)
		}
	}
	return valid
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	return n, errors.Wrap(err, "reading affected rows")
}

// inTx runs fn in a transaction, rolled back when fn fails.
func inTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func strs[T ~string](values []T) []string {
	s := make([]string, 0, len(values))
	for _, v := range values {
		s = append(s, string(v))
	}
	return s
}

// missingOrConflict tells why a conditional update on `table` matched no row:
// `notFound` when the row does not exist, workflow.ErrStatusConflict otherwise.
func missingOrConflict(ctx context.Context, db sqlx.QueryerContext, table, id string, notFound error) error {
	var exists bool
	query := psql.Select("true").From(table).Where(sq.Eq{"id": id})
	if err := get(ctx, db, &exists, query); err != nil {
		return trapNoRowsErr(err, notFound, "checking row existence")
	}
	return workflow.ErrStatusConflict
}

func isNoRows(err error) bool {
	return errors.Cause(err) == sql.ErrNoRows
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}

type statusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

func countByStatus(ctx context.Context, db sqlx.QueryerContext, table string) (map[workflow.Status]int, error) {
	var rows []statusCount
	query := psql.Select("status", "COUNT(*) AS count").From(table).GroupBy("status")
	if err := selectRows(ctx, db, &rows, query); err != nil {
		return nil, errors.Wrapf(err, "counting %s by status", table)
	}
	counts := make(map[workflow.Status]int, len(workflow.Statuses))
	for _, r := range rows {
		counts[workflow.Status(r.Status)] = r.Count
	}
	return counts, nil
}
