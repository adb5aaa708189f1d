package student

import (
	"context"
	"io"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

var (
	ErrNotFound  = core.NewNotFoundError("student")
	ErrNISExists = errors.New("a student with this NIS already exists")

	statusTag  = "student_status"
	statusText = "must be one of active, inactive or graduated"
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error)
		GetStudent(ctx context.Context, id string) (Student, error)
		// CheckNISUniqueness returns ErrNISExists when another student than `excludedID` holds `nis`.
		CheckNISUniqueness(ctx context.Context, nis string, excludedID ...string) error
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		CountStudents(ctx context.Context) (Count, error)
		DeleteStudents(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo  Repository
		v     *core.Validator
		media core.Media
	}
)

// InitValidators registers the student validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, func(fl validator.FieldLevel) bool {
		return Status(fl.Field().String()).IsValid()
	})
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

func NewService(repo Repository, v *core.Validator, media core.Media) *Service {
	InitValidators(v.Engine(), v.Translator())
	return &Service{repo: repo, v: v, media: media}
}

func (svc *Service) validate(ctx context.Context, in *StudentInput, excludedID ...string) error {
	in.Clean()
	if err := svc.v.Struct(in); err != nil {
		return err
	}
	if in.NIS == "" {
		return nil
	}
	if err := svc.repo.CheckNISUniqueness(ctx, in.NIS, excludedID...); err != nil {
		if err == ErrNISExists {
			return core.NewValidationError(err, core.FieldError{Field: "nis", Error: err.Error()})
		}
		return errors.Wrap(err, "checking NIS uniqueness")
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, in StudentInput) (Student, error) {
	if err := svc.validate(ctx, &in); err != nil {
		return Student{}, err
	}
	now := time.Now().UTC()
	s := Student{CreatedAt: now, UpdatedAt: now}
	if err := in.apply(&s); err != nil {
		return Student{}, errors.Wrap(err, "applying input")
	}
	return svc.repo.CreateStudent(ctx, s)
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudent(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id string, in StudentInput) (Student, error) {
	s, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if err = svc.validate(ctx, &in, id); err != nil {
		return Student{}, err
	}
	if err = in.apply(&s); err != nil {
		return Student{}, errors.Wrap(err, "applying input")
	}
	s.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateStudent(ctx, s)
}

// SetPhoto stores a new photo for the student and removes the previous one.
func (svc *Service) SetPhoto(ctx context.Context, id, filename, contentType string, r io.Reader) (Student, error) {
	s, err := svc.repo.GetStudent(ctx, id)
	if err != nil {
		return Student{}, err
	}
	_, err = svc.media.Replace(ctx, core.BucketStudent, s.PhotoPath, s.ID, filename, contentType, r, func(f core.StoredFile) error {
		s.PhotoURL, s.PhotoPath = f.URL, f.Path
		s.UpdatedAt = time.Now().UTC()
		s, err = svc.repo.UpdateStudent(ctx, s)
		return err
	})
	return s, err
}

func (svc *Service) Count(ctx context.Context) (Count, error) {
	return svc.repo.CountStudents(ctx)
}

// Delete removes the students and their photos.
func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	paths := make([]string, 0, len(ids))
	for _, id := range ids {
		s, err := svc.repo.GetStudent(ctx, id)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				continue
			}
			return errors.Wrap(err, "finding student")
		}
		paths = append(paths, s.PhotoPath)
	}
	if err := svc.repo.DeleteStudents(ctx, ids...); err != nil {
		return err
	}
	for _, p := range paths {
		svc.media.Remove(ctx, core.BucketStudent, p)
	}
	return nil
}
