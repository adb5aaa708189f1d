package album

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

var (
	ErrNotFound      = core.NewNotFoundError("album")
	ErrPhotoNotFound = core.NewNotFoundError("photo")
)

type Album struct {
	ID          string    `json:"id"`
	Title       string    `json:"judul"`
	Description string    `json:"deskripsi,omitempty"`
	CoverURL    string    `json:"cover_url,omitempty"`
	PhotoCount  int       `json:"jumlah_foto"`
	Photos      []Photo   `json:"foto,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Photo struct {
	ID        string    `json:"id"`
	AlbumID   string    `json:"album_id"`
	URL       string    `json:"url"`
	Path      string    `json:"-"`
	Caption   string    `json:"keterangan,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type AlbumInput struct {
	Title       string `json:"judul" validate:"required,notblank,max=255"`
	Description string `json:"deskripsi" validate:"max=5000"`
}

func (in *AlbumInput) Clean() {
	in.Title = core.CleanString(in.Title)
	in.Description = core.CleanString(in.Description)
}

type PhotoInput struct {
	Caption string `json:"keterangan" form:"keterangan" validate:"max=1000"`
}

type (
	Repository interface {
		CreateAlbum(ctx context.Context, a Album) (Album, error)
		// QueryAlbums returns the albums, newest first, with PhotoCount and CoverURL set and Photos left empty.
		QueryAlbums(ctx context.Context) ([]Album, error)
		// GetAlbum returns the album with its photos, oldest first.
		GetAlbum(ctx context.Context, id string) (Album, error)
		UpdateAlbum(ctx context.Context, a Album) (Album, error)
		// DeleteAlbum removes the album and its photos, returning the removed photos.
		DeleteAlbum(ctx context.Context, id string) ([]Photo, error)
		AddPhoto(ctx context.Context, p Photo) (Photo, error)
		GetPhoto(ctx context.Context, albumID, photoID string) (Photo, error)
		DeletePhoto(ctx context.Context, albumID, photoID string) error
	}

	Service struct {
		repo  Repository
		v     *core.Validator
		media core.Media
	}
)

func NewService(repo Repository, v *core.Validator, media core.Media) *Service {
	return &Service{repo: repo, v: v, media: media}
}

func (svc *Service) Create(ctx context.Context, in AlbumInput) (Album, error) {
	in.Clean()
	if err := svc.v.Struct(in); err != nil {
		return Album{}, err
	}
	now := time.Now().UTC()
	return svc.repo.CreateAlbum(ctx, Album{Title: in.Title, Description: in.Description, CreatedAt: now, UpdatedAt: now})
}

func (svc *Service) Query(ctx context.Context) ([]Album, error) {
	return svc.repo.QueryAlbums(ctx)
}

func (svc *Service) Get(ctx context.Context, id string) (Album, error) {
	return svc.repo.GetAlbum(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, in AlbumInput) (Album, error) {
	a, err := svc.repo.GetAlbum(ctx, id)
	if err != nil {
		return Album{}, err
	}
	in.Clean()
	if err = svc.v.Struct(in); err != nil {
		return Album{}, err
	}
	a.Title = in.Title
	a.Description = in.Description
	a.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateAlbum(ctx, a)
}

// Delete removes the album, its photos and their stored files.
func (svc *Service) Delete(ctx context.Context, id string) error {
	photos, err := svc.repo.DeleteAlbum(ctx, id)
	if err != nil {
		return err
	}
	for _, p := range photos {
		svc.media.Remove(ctx, core.BucketAlbum, p.Path)
	}
	return nil
}

// AddPhoto stores an uploaded image and attaches it to the album.
func (svc *Service) AddPhoto(ctx context.Context, albumID, filename, contentType string, r io.Reader, in PhotoInput) (Photo, error) {
	in.Caption = core.CleanString(in.Caption)
	if err := svc.v.Struct(in); err != nil {
		return Photo{}, err
	}
	if _, err := svc.repo.GetAlbum(ctx, albumID); err != nil {
		return Photo{}, err
	}

	var photo Photo
	_, err := svc.media.Replace(ctx, core.BucketAlbum, "", albumID, filename, contentType, r, func(f core.StoredFile) error {
		var err error
		photo, err = svc.repo.AddPhoto(ctx, Photo{
			AlbumID:   albumID,
			URL:       f.URL,
			Path:      f.Path,
			Caption:   in.Caption,
			CreatedAt: time.Now().UTC(),
		})
		return errors.Wrap(err, "adding photo")
	})
	return photo, err
}

func (svc *Service) DeletePhoto(ctx context.Context, albumID, photoID string) error {
	p, err := svc.repo.GetPhoto(ctx, albumID, photoID)
	if err != nil {
		return err
	}
	if err = svc.repo.DeletePhoto(ctx, albumID, photoID); err != nil {
		return err
	}
	svc.media.Remove(ctx, core.BucketAlbum, p.Path)
	return nil
}
