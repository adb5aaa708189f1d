package inmemdb

import (
	"context"
	"sort"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/album"
)

type albumRepository struct {
	db *DB
}

var _ album.Repository = (*albumRepository)(nil) // interface compliance check

func NewAlbumRepository(db *DB) album.Repository {
	return &albumRepository{db: db}
}

// photosOf returns the photos of an album, oldest first; callers hold the photos lock.
func (repo *albumRepository) photosOf(albumID string) []album.Photo {
	var photos []album.Photo
	for _, p := range repo.db.photos.rows {
		if p.AlbumID == albumID {
			photos = append(photos, p)
		}
	}
	sort.SliceStable(photos, func(i, j int) bool { return photos[i].CreatedAt.Before(photos[j].CreatedAt) })
	return photos
}

func (repo *albumRepository) CreateAlbum(_ context.Context, a album.Album) (album.Album, error) {
	repo.db.albums.mutex.Lock()
	defer repo.db.albums.mutex.Unlock()

	a.ID = newID()
	a.Photos = nil
	a.PhotoCount = 0
	repo.db.albums.rows[a.ID] = a
	return a, nil
}

func (repo *albumRepository) QueryAlbums(_ context.Context) ([]album.Album, error) {
	repo.db.albums.mutex.RLock()
	defer repo.db.albums.mutex.RUnlock()
	repo.db.photos.mutex.RLock()
	defer repo.db.photos.mutex.RUnlock()

	albums := repo.db.albums.all()
	for i := range albums {
		photos := repo.photosOf(albums[i].ID)
		albums[i].PhotoCount = len(photos)
		if len(photos) > 0 {
			albums[i].CoverURL = photos[0].URL
		}
	}
	sort.SliceStable(albums, func(i, j int) bool { return albums[i].CreatedAt.After(albums[j].CreatedAt) })
	return albums, nil
}

func (repo *albumRepository) GetAlbum(_ context.Context, id string) (album.Album, error) {
	repo.db.albums.mutex.RLock()
	defer repo.db.albums.mutex.RUnlock()
	repo.db.photos.mutex.RLock()
	defer repo.db.photos.mutex.RUnlock()

	a, ok := repo.db.albums.rows[id]
	if !ok {
		return album.Album{}, album.ErrNotFound
	}
	a.Photos = repo.photosOf(id)
	a.PhotoCount = len(a.Photos)
	if len(a.Photos) > 0 {
		a.CoverURL = a.Photos[0].URL
	}
	return a, nil
}

func (repo *albumRepository) UpdateAlbum(_ context.Context, a album.Album) (album.Album, error) {
	repo.db.albums.mutex.Lock()
	defer repo.db.albums.mutex.Unlock()

	if _, ok := repo.db.albums.rows[a.ID]; !ok {
		return album.Album{}, album.ErrNotFound
	}
	a.Photos = nil
	repo.db.albums.rows[a.ID] = a
	return a, nil
}

func (repo *albumRepository) DeleteAlbum(_ context.Context, id string) ([]album.Photo, error) {
	repo.db.albums.mutex.Lock()
	defer repo.db.albums.mutex.Unlock()
	repo.db.photos.mutex.Lock()
	defer repo.db.photos.mutex.Unlock()

	if _, ok := repo.db.albums.rows[id]; !ok {
		return nil, album.ErrNotFound
	}
	photos := repo.photosOf(id)
	for _, p := range photos {
		delete(repo.db.photos.rows, p.ID)
	}
	delete(repo.db.albums.rows, id)
	return photos, nil
}

func (repo *albumRepository) AddPhoto(_ context.Context, p album.Photo) (album.Photo, error) {
	repo.db.albums.mutex.RLock()
	defer repo.db.albums.mutex.RUnlock()
	repo.db.photos.mutex.Lock()
	defer repo.db.photos.mutex.Unlock()

	if _, ok := repo.db.albums.rows[p.AlbumID]; !ok {
		return album.Photo{}, album.ErrNotFound
	}
	p.ID = newID()
	repo.db.photos.rows[p.ID] = p
	return p, nil
}

func (repo *albumRepository) GetPhoto(_ context.Context, albumID, photoID string) (album.Photo, error) {
	repo.db.photos.mutex.RLock()
	defer repo.db.photos.mutex.RUnlock()

	p, ok := repo.db.photos.rows[photoID]
	if !ok || p.AlbumID != albumID {
		return album.Photo{}, album.ErrPhotoNotFound
	}
	return p, nil
}

func (repo *albumRepository) DeletePhoto(_ context.Context, albumID, photoID string) error {
	repo.db.photos.mutex.Lock()
	defer repo.db.photos.mutex.Unlock()

	p, ok := repo.db.photos.rows[photoID]
	if !ok || p.AlbumID != albumID {
		return album.ErrPhotoNotFound
	}
	delete(repo.db.photos.rows, photoID)
	return nil
}
