package graduate

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

var ErrNotFound = core.NewNotFoundError("graduate")

type Graduate struct {
	ID             string       `json:"id"`
	Name           string       `json:"nama"`
	Program        core.Program `json:"program"`
	GraduationYear int          `json:"tahun_lulus"`
	Achievement    string       `json:"prestasi,omitempty"`
	Testimony      string       `json:"kesan,omitempty"`
	ContinuedTo    string       `json:"melanjutkan_ke,omitempty"`
	PhotoURL       string       `json:"foto_url,omitempty"`
	PhotoPath      string       `json:"-"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// GraduateInput holds the editable attributes of a Graduate, used on create and on full update.
type GraduateInput struct {
	Name           string       `json:"nama" validate:"required,notblank,max=255"`
	Program        core.Program `json:"program" validate:"required,program"`
	GraduationYear int          `json:"tahun_lulus" validate:"required,min=1990,max=2100"`
	Achievement    string       `json:"prestasi" validate:"max=5000"`
	Testimony      string       `json:"kesan" validate:"max=5000"`
	ContinuedTo    string       `json:"melanjutkan_ke" validate:"max=255"`
}

func (in *GraduateInput) Clean() {
	in.Name = core.CleanString(in.Name)
	in.Achievement = core.CleanString(in.Achievement)
	in.Testimony = core.CleanString(in.Testimony)
	in.ContinuedTo = core.CleanString(in.ContinuedTo)
}

func (in GraduateInput) apply(g *Graduate) {
	g.Name = in.Name
	g.Program = in.Program
	g.GraduationYear = in.GraduationYear
	g.Achievement = in.Achievement
	g.Testimony = in.Testimony
	g.ContinuedTo = in.ContinuedTo
}

type QueryFilter struct {
	Search  string         `query:"search"`
	Program []core.Program `query:"program"`
	Year    []int          `query:"tahun_lulus"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

type (
	Repository interface {
		CreateGraduate(ctx context.Context, g Graduate) (Graduate, error)
		QueryGraduates(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Graduate, error)
		GetGraduate(ctx context.Context, id string) (Graduate, error)
		UpdateGraduate(ctx context.Context, g Graduate) (Graduate, error)
		DeleteGraduates(ctx context.Context, ids ...string) error
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

func (svc *Service) Create(ctx context.Context, in GraduateInput) (Graduate, error) {
	in.Clean()
	if err := svc.v.Struct(in); err != nil {
		return Graduate{}, err
	}
	now := time.Now().UTC()
	g := Graduate{CreatedAt: now, UpdatedAt: now}
	in.apply(&g)
	return svc.repo.CreateGraduate(ctx, g)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Graduate, error) {
	return svc.repo.QueryGraduates(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Graduate, error) {
	return svc.repo.GetGraduate(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, in GraduateInput) (Graduate, error) {
	g, err := svc.repo.GetGraduate(ctx, id)
	if err != nil {
		return Graduate{}, err
	}
	in.Clean()
	if err = svc.v.Struct(in); err != nil {
		return Graduate{}, err
	}
	in.apply(&g)
	g.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateGraduate(ctx, g)
}

// SetPhoto stores a new photo for the graduate and removes the previous one.
func (svc *Service) SetPhoto(ctx context.Context, id, filename, contentType string, r io.Reader) (Graduate, error) {
	g, err := svc.repo.GetGraduate(ctx, id)
	if err != nil {
		return Graduate{}, err
	}
	_, err = svc.media.Replace(ctx, core.BucketGraduate, g.PhotoPath, g.ID, filename, contentType, r, func(f core.StoredFile) error {
		g.PhotoURL, g.PhotoPath = f.URL, f.Path
		g.UpdatedAt = time.Now().UTC()
		g, err = svc.repo.UpdateGraduate(ctx, g)
		return err
	})
	return g, err
}

// Delete removes the graduates and their photos.
func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	paths := make([]string, 0, len(ids))
	for _, id := range ids {
		g, err := svc.repo.GetGraduate(ctx, id)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				continue
			}
			return errors.Wrap(err, "finding graduate")
		}
		paths = append(paths, g.PhotoPath)
	}
	if err := svc.repo.DeleteGraduates(ctx, ids...); err != nil {
		return err
	}
	for _, p := range paths {
		svc.media.Remove(ctx, core.BucketGraduate, p)
	}
	return nil
}
