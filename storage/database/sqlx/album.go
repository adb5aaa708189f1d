package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/album"
)

const (
	albumsTable = "album"
	photosTable = "album_foto"
)

var photoColumns = []string{"id", "album_id", "url", "path", "keterangan", "created_at"}

type albumRow struct {
	ID          string      `db:"id"`
	Title       string      `db:"judul"`
	Description null.String `db:"deskripsi"`
	CoverURL    null.String `db:"cover_url"`
	PhotoCount  int         `db:"jumlah_foto"`
	CreatedAt   time.Time   `db:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at"`
}

func (r albumRow) album() album.Album {
	return album.Album{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description.String,
		CoverURL:    r.CoverURL.String,
		PhotoCount:  r.PhotoCount,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type photoRow struct {
	ID        string      `db:"id"`
	AlbumID   string      `db:"album_id"`
	URL       string      `db:"url"`
	Path      string      `db:"path"`
	Caption   null.String `db:"keterangan"`
	CreatedAt time.Time   `db:"created_at"`
}

func (r photoRow) photo() album.Photo {
	return album.Photo{
		ID:        r.ID,
		AlbumID:   r.AlbumID,
		URL:       r.URL,
		Path:      r.Path,
		Caption:   r.Caption.String,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func photos(rows []photoRow) []album.Photo {
	ps := make([]album.Photo, 0, len(rows))
	for _, r := range rows {
		ps = append(ps, r.photo())
	}
	return ps
}

type albumRepository struct {
	db *sqlx.DB
}

var _ album.Repository = (*albumRepository)(nil) // interface compliance check

func NewAlbumRepository(db *sqlx.DB) album.Repository {
	return &albumRepository{db: db}
}

// selectAlbums selects the albums with their photo count and the url of their oldest photo as cover.
func selectAlbums() sq.SelectBuilder {
	return psql.Select(
		"a.id", "a.judul", "a.deskripsi", "a.created_at", "a.updated_at",
		"(SELECT COUNT(*) FROM album_foto f WHERE f.album_id = a.id) AS jumlah_foto",
		"(SELECT f.url FROM album_foto f WHERE f.album_id = a.id ORDER BY f.created_at LIMIT 1) AS cover_url",
	).From(albumsTable + " a")
}

func (repo *albumRepository) CreateAlbum(ctx context.Context, a album.Album) (album.Album, error) {
	a.ID = uuid.New().String()
	query := psql.Insert(albumsTable).
		Columns("id", "judul", "deskripsi", "created_at", "updated_at").
		Values(a.ID, a.Title, nullString(a.Description), a.CreatedAt, a.UpdatedAt)
	if _, err := exec(ctx, repo.db, query); err != nil {
		return album.Album{}, errors.Wrap(err, "inserting album")
	}
	a.Photos = nil
	a.PhotoCount = 0
	return a, nil
}

func (repo *albumRepository) QueryAlbums(ctx context.Context) ([]album.Album, error) {
	var rows []albumRow
	if err := selectRows(ctx, repo.db, &rows, selectAlbums().OrderBy("a.created_at DESC")); err != nil {
		return nil, errors.Wrap(err, "querying albums")
	}
	albums := make([]album.Album, 0, len(rows))
	for _, r := range rows {
		albums = append(albums, r.album())
	}
	return albums, nil
}

func (repo *albumRepository) GetAlbum(ctx context.Context, id string) (album.Album, error) {
	if !isValidID(id) {
		return album.Album{}, album.ErrNotFound
	}
	var row albumRow
	if err := get(ctx, repo.db, &row, selectAlbums().Where(sq.Eq{"a.id": id})); err != nil {
		return album.Album{}, trapNoRowsErr(err, album.ErrNotFound, "getting album")
	}

	var rows []photoRow
	query := psql.Select(photoColumns...).From(photosTable).Where(sq.Eq{"album_id": id}).OrderBy("created_at ASC")
	if err := selectRows(ctx, repo.db, &rows, query); err != nil {
		return album.Album{}, errors.Wrap(err, "querying album photos")
	}
	a := row.album()
	a.Photos = photos(rows)
	return a, nil
}

func (repo *albumRepository) UpdateAlbum(ctx context.Context, a album.Album) (album.Album, error) {
	if !isValidID(a.ID) {
		return album.Album{}, album.ErrNotFound
	}
	query := psql.Update(albumsTable).SetMap(map[string]interface{}{
		"judul":      a.Title,
		"deskripsi":  nullString(a.Description),
		"updated_at": a.UpdatedAt,
	}).Where(sq.Eq{"id": a.ID})

	res, err := exec(ctx, repo.db, query)
	if err != nil {
		return album.Album{}, errors.Wrap(err, "updating album")
	}
	if n, err := rowsAffected(res); err != nil {
		return album.Album{}, err
	} else if n == 0 {
		return album.Album{}, album.ErrNotFound
	}
	a.Photos = nil
	return a, nil
}

// DeleteAlbum relies on the cascading foreign key to remove the photo rows.
func (repo *albumRepository) DeleteAlbum(ctx context.Context, id string) ([]album.Photo, error) {
	if !isValidID(id) {
		return nil, album.ErrNotFound
	}
	var rows []photoRow
	err := inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		query := psql.Select(photoColumns...).From(photosTable).Where(sq.Eq{"album_id": id}).Suffix("FOR UPDATE")
		if err := selectRows(ctx, tx, &rows, query); err != nil {
			return errors.Wrap(err, "querying album photos")
		}
		res, err := exec(ctx, tx, psql.Delete(albumsTable).Where(sq.Eq{"id": id}))
		if err != nil {
			return errors.Wrap(err, "deleting album")
		}
		if n, err := rowsAffected(res); err != nil {
			return err
		} else if n == 0 {
			return album.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return photos(rows), nil
}

func (repo *albumRepository) AddPhoto(ctx context.Context, p album.Photo) (album.Photo, error) {
	if !isValidID(p.AlbumID) {
		return album.Photo{}, album.ErrNotFound
	}
	p.ID = uuid.New().String()
	query := psql.Insert(photosTable).Columns(photoColumns...).
		Values(p.ID, p.AlbumID, p.URL, p.Path, nullString(p.Caption), p.CreatedAt)
	if _, err := exec(ctx, repo.db, query); err != nil {
		if isForeignKeyViolation(err) {
			return album.Photo{}, album.ErrNotFound
		}
		return album.Photo{}, errors.Wrap(err, "inserting photo")
	}
	return p, nil
}

func (repo *albumRepository) GetPhoto(ctx context.Context, albumID, photoID string) (album.Photo, error) {
	if !isValidID(albumID) || !isValidID(photoID) {
		return album.Photo{}, album.ErrPhotoNotFound
	}
	var row photoRow
	query := psql.Select(photoColumns...).From(photosTable).Where(sq.Eq{"id": photoID, "album_id": albumID})
	if err := get(ctx, repo.db, &row, query); err != nil {
		return album.Photo{}, trapNoRowsErr(err, album.ErrPhotoNotFound, "getting photo")
	}
	return row.photo(), nil
}

func (repo *albumRepository) DeletePhoto(ctx context.Context, albumID, photoID string) error {
	if !isValidID(albumID) || !isValidID(photoID) {
		return album.ErrPhotoNotFound
	}
	res, err := exec(ctx, repo.db, psql.Delete(photosTable).Where(sq.Eq{"id": photoID, "album_id": albumID}))
	if err != nil {
		return errors.Wrap(err, "deleting photo")
	}
	if n, err := rowsAffected(res); err != nil {
		return err
	} else if n == 0 {
		return album.ErrPhotoNotFound
	}
	return nil
}
