package teacher

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

var ErrNotFound = core.NewNotFoundError("teacher")

type Teacher struct {
	ID        string       `json:"id"`
	Name      string       `json:"nama"`
	Program   core.Program `json:"program"`
	Position  string       `json:"jabatan,omitempty"`
	Education string       `json:"pendidikan,omitempty"`
	Phone     string       `json:"no_telepon,omitempty"`
	Email     string       `json:"email,omitempty"`
	Bio       string       `json:"bio,omitempty"`
	PhotoURL  string       `json:"foto_url,omitempty"`
	PhotoPath string       `json:"-"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Profile is the public view of a teacher, without contact details.
type Profile struct {
	ID        string       `json:"id"`
	Name      string       `json:"nama"`
	Program   core.Program `json:"program"`
	Position  string       `json:"jabatan,omitempty"`
	Education string       `json:"pendidikan,omitempty"`
	Bio       string       `json:"bio,omitempty"`
	PhotoURL  string       `json:"foto_url,omitempty"`
}

func (t Teacher) Profile() Profile {
	return Profile{
		ID:        t.ID,
		Name:      t.Name,
		Program:   t.Program,
		Position:  t.Position,
		Education: t.Education,
		Bio:       t.Bio,
		PhotoURL:  t.PhotoURL,
	}
}

// TeacherInput holds the editable attributes of a Teacher, used on create and on full update.
type TeacherInput struct {
	Name      string       `json:"nama" validate:"required,notblank,max=255"`
	Program   core.Program `json:"program" validate:"required,program"`
	Position  string       `json:"jabatan" validate:"max=255"`
	Education string       `json:"pendidikan" validate:"max=255"`
	Phone     string       `json:"no_telepon" validate:"omitempty,phone"`
	Email     string       `json:"email" validate:"omitempty,email"`
	Bio       string       `json:"bio" validate:"max=5000"`
}

func (in *TeacherInput) Clean() {
	in.Name = core.CleanString(in.Name)
	in.Position = core.CleanString(in.Position)
	in.Education = core.CleanString(in.Education)
	in.Phone = core.CleanString(in.Phone)
	in.Email = core.CleanString(in.Email, true /* lower */)
	in.Bio = core.CleanString(in.Bio)
}

func (in TeacherInput) apply(t *Teacher) {
	t.Name = in.Name
	t.Program = in.Program
	t.Position = in.Position
	t.Education = in.Education
	t.Phone = in.Phone
	t.Email = in.Email
	t.Bio = in.Bio
}

type QueryFilter struct {
	Search  string         `query:"search"`
	Program []core.Program `query:"program"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

type (
	Repository interface {
		CreateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		QueryTeachers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Teacher, error)
		GetTeacher(ctx context.Context, id string) (Teacher, error)
		UpdateTeacher(ctx context.Context, t Teacher) (Teacher, error)
		DeleteTeachers(ctx context.Context, ids ...string) error
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

func (svc *Service) Create(ctx context.Context, in TeacherInput) (Teacher, error) {
	in.Clean()
	if err := svc.v.Struct(in); err != nil {
		return Teacher{}, err
	}
	now := time.Now().UTC()
	t := Teacher{CreatedAt: now, UpdatedAt: now}
	in.apply(&t)
	return svc.repo.CreateTeacher(ctx, t)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Teacher, error) {
	return svc.repo.QueryTeachers(ctx, filter, ordering)
}

// Profiles returns the public teacher listing, ordered by name.
func (svc *Service) Profiles(ctx context.Context, filter *QueryFilter) ([]Profile, error) {
	teachers, err := svc.repo.QueryTeachers(ctx, filter, []core.DBOrdering{{Field: "nama", Ascending: true}})
	if err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	profiles := make([]Profile, 0, len(teachers))
	for _, t := range teachers {
		profiles = append(profiles, t.Profile())
	}
	return profiles, nil
}

func (svc *Service) Get(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, in TeacherInput) (Teacher, error) {
	t, err := svc.repo.GetTeacher(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	in.Clean()
	if err = svc.v.Struct(in); err != nil {
		return Teacher{}, err
	}
	in.apply(&t)
	t.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTeacher(ctx, t)
}

// SetPhoto stores a new photo for the teacher and removes the previous one.
func (svc *Service) SetPhoto(ctx context.Context, id, filename, contentType string, r io.Reader) (Teacher, error) {
	t, err := svc.repo.GetTeacher(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	_, err = svc.media.Replace(ctx, core.BucketTeacher, t.PhotoPath, t.ID, filename, contentType, r, func(f core.StoredFile) error {
		t.PhotoURL, t.PhotoPath = f.URL, f.Path
		t.UpdatedAt = time.Now().UTC()
		t, err = svc.repo.UpdateTeacher(ctx, t)
		return err
	})
	return t, err
}

// Delete removes the teachers and their photos.
func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	paths := make([]string, 0, len(ids))
	for _, id := range ids {
		t, err := svc.repo.GetTeacher(ctx, id)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				continue
			}
			return errors.Wrap(err, "finding teacher")
		}
		paths = append(paths, t.PhotoPath)
	}
	if err := svc.repo.DeleteTeachers(ctx, ids...); err != nil {
		return err
	}
	for _, p := range paths {
		svc.media.Remove(ctx, core.BucketTeacher, p)
	}
	return nil
}
