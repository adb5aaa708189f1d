package inmemdb

import (
	"context"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/settings"
)

type settingsRepository struct {
	db *DB
}

var _ settings.Repository = (*settingsRepository)(nil) // interface compliance check

func NewSettingsRepository(db *DB) settings.Repository {
	return &settingsRepository{db: db}
}

func (repo *settingsRepository) GetSettings(_ context.Context) (settings.Settings, error) {
	repo.db.settingsMu.Lock()
	defer repo.db.settingsMu.Unlock()

	if repo.db.settings == nil {
		return settings.Settings{}, settings.ErrNotFound
	}
	return repo.db.settings.Clone(), nil
}

func (repo *settingsRepository) SaveSettings(_ context.Context, s settings.Settings, expectedVersion int) error {
	repo.db.settingsMu.Lock()
	defer repo.db.settingsMu.Unlock()

	var current int
	if repo.db.settings != nil {
		current = repo.db.settings.Version
	}
	if current != expectedVersion {
		return settings.ErrVersionConflict
	}
	stored := s.Clone()
	repo.db.settings = &stored
	return nil
}
