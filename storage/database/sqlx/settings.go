package sqlxrepos

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/settings"
)

const (
	settingsTable = "website_settings"
	settingsRowID = 1
)

type settingsRow struct {
	Version   int            `db:"version"`
	Data      types.JSONText `db:"data"`
	UpdatedAt time.Time      `db:"updated_at"`
	UpdatedBy null.String    `db:"updated_by"`
}

type settingsRepository struct {
	db *sqlx.DB
}

var _ settings.Repository = (*settingsRepository)(nil) // interface compliance check

func NewSettingsRepository(db *sqlx.DB) settings.Repository {
	return &settingsRepository{db: db}
}

func (repo *settingsRepository) GetSettings(ctx context.Context) (settings.Settings, error) {
	var row settingsRow
	query := psql.Select("version", "data", "updated_at", "updated_by").From(settingsTable).Where(sq.Eq{"id": settingsRowID})
	if err := get(ctx, repo.db, &row, query); err != nil {
		return settings.Settings{}, trapNoRowsErr(err, settings.ErrNotFound, "getting settings")
	}

	var s settings.Settings
	if err := row.Data.Unmarshal(&s); err != nil {
		return settings.Settings{}, errors.Wrap(err, "decoding settings")
	}
	s.Version = row.Version
	s.UpdatedAt = row.UpdatedAt.UTC()
	s.UpdatedBy = row.UpdatedBy.String
	return s, nil
}

// SaveSettings inserts the first version, or updates the row still holding `expectedVersion`.
func (repo *settingsRepository) SaveSettings(ctx context.Context, s settings.Settings, expectedVersion int) error {
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encoding settings")
	}
	updatedBy := nullString(s.UpdatedBy)
	if !isValidID(s.UpdatedBy) {
		updatedBy = null.String{}
	}

	var query sq.Sqlizer
	if expectedVersion == 0 {
		query = psql.Insert(settingsTable).
			Columns("id", "version", "data", "updated_at", "updated_by").
			Values(settingsRowID, s.Version, types.JSONText(data), s.UpdatedAt, updatedBy).
			Suffix("ON CONFLICT (id) DO NOTHING")
	} else {
		query = psql.Update(settingsTable).SetMap(map[string]interface{}{
			"version":    s.Version,
			"data":       types.JSONText(data),
			"updated_at": s.UpdatedAt,
			"updated_by": updatedBy,
		}).Where(sq.Eq{"id": settingsRowID, "version": expectedVersion})
	}

	res, err := exec(ctx, repo.db, query)
	if err != nil {
		return errors.Wrap(err, "saving settings")
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return settings.ErrVersionConflict
	}
	return nil
}
