// Package filesvc holds the object stores backing the uploaded photos.
package filesvc

import (
	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

// NewStore returns the configured store, wrapped to normalize images.
func NewStore(conf *core.Config) (core.FileStore, error) {
	var store core.FileStore
	switch conf.Storage.Driver {
	case "supabase":
		if conf.Storage.SupabaseURL == "" || conf.Storage.SupabaseKey == "" {
			return nil, errors.New("supabase storage requires STORAGE_SUPABASE_URL and STORAGE_SUPABASE_KEY")
		}
		store = NewSupabaseStore(conf.Storage.SupabaseURL, conf.Storage.SupabaseKey)
	case "local", "":
		store = NewLocalStore(conf.Storage.LocalDir, conf.Storage.PublicBaseURL)
	case "memory":
		store = NewMemoryStore()
	default:
		return nil, errors.Errorf("unknown storage driver %q", conf.Storage.Driver)
	}
	return NewImageStore(store, conf.Storage.ImageMaxWidth, conf.Storage.WebPQuality), nil
}
