// Package settings manages the website settings: branding, contact details, program descriptions
// and the admission period. The settings form one versioned document that is replaced as a whole.
package settings

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

var (
	ErrNotFound = core.NewNotFoundError("settings")

	// ErrVersionConflict is returned when saving over a version that is no longer the current one.
	ErrVersionConflict = errors.New("settings were changed in the meantime, reload them and try again")
)

type (
	Settings struct {
		Version      int           `json:"version"`
		SiteName     string        `json:"nama_situs" validate:"required,notblank,max=255"`
		Tagline      string        `json:"tagline" validate:"max=255"`
		LogoURL      string        `json:"logo_url" validate:"omitempty,url"`
		LogoPath     string        `json:"logo_path,omitempty"`
		HeroImageURL string        `json:"hero_url" validate:"omitempty,url"`
		About        About         `json:"tentang"`
		Contact      Contact       `json:"kontak"`
		Social       Social        `json:"sosial_media"`
		Programs     []ProgramInfo `json:"program" validate:"dive"`
		Admission    AdmissionInfo `json:"spmb"`
		UpdatedAt    time.Time     `json:"updated_at"`
		UpdatedBy    string        `json:"updated_by,omitempty"`
	}

	About struct {
		History string   `json:"sejarah"`
		Vision  string   `json:"visi"`
		Mission []string `json:"misi"`
	}

	Contact struct {
		Address  string `json:"alamat"`
		Phone    string `json:"telepon" validate:"omitempty,phone"`
		WhatsApp string `json:"whatsapp" validate:"omitempty,phone"`
		Email    string `json:"email" validate:"omitempty,email"`
		MapsURL  string `json:"maps_url" validate:"omitempty,url"`
	}

	Social struct {
		Instagram string `json:"instagram" validate:"omitempty,url"`
		Facebook  string `json:"facebook" validate:"omitempty,url"`
		YouTube   string `json:"youtube" validate:"omitempty,url"`
	}

	ProgramInfo struct {
		Program     core.Program `json:"program" validate:"required,program"`
		Title       string       `json:"judul" validate:"required,notblank"`
		Description string       `json:"deskripsi"`
		AgeRange    string       `json:"usia"`
		Schedule    string       `json:"jadwal"`
	}

	AdmissionInfo struct {
		Open         bool     `json:"dibuka"`
		AcademicYear string   `json:"tahun_ajaran"`
		Requirements []string `json:"persyaratan"`
	}
)

// Default returns the settings used before any have been saved.
func Default() Settings {
	return Settings{
		SiteName: "Yayasan Al-Hikmah",
		Tagline:  "Mendidik generasi Qur'ani",
		Programs: []ProgramInfo{
			{Program: core.ProgramTKATPA, Title: "Taman Kanak-kanak & Taman Pendidikan Al-Qur'an"},
			{Program: core.ProgramPAUDKober, Title: "Pendidikan Anak Usia Dini / Kelompok Bermain"},
			{Program: core.ProgramDiniyah, Title: "Madrasah Diniyah"},
		},
		About:     About{Mission: []string{}},
		Admission: AdmissionInfo{Requirements: []string{}},
	}
}

// Clone returns a deep copy, so the cached document is never shared.
func (s Settings) Clone() Settings {
	c := s
	c.About.Mission = append([]string(nil), s.About.Mission...)
	c.Programs = append([]ProgramInfo(nil), s.Programs...)
	c.Admission.Requirements = append([]string(nil), s.Admission.Requirements...)
	return c
}

func (s *Settings) clean() {
	s.SiteName = core.CleanString(s.SiteName)
	s.Tagline = core.CleanString(s.Tagline)
	s.Contact.Email = core.CleanString(s.Contact.Email, true /* lower */)
	for i := range s.Programs {
		s.Programs[i].Title = core.CleanString(s.Programs[i].Title)
	}
}

type (
	Repository interface {
		// GetSettings returns the stored document or ErrNotFound.
		GetSettings(ctx context.Context) (Settings, error)
		// SaveSettings stores `s` if the stored version still equals `expectedVersion` (0 when none is stored),
		// returning ErrVersionConflict otherwise.
		SaveSettings(ctx context.Context, s Settings, expectedVersion int) error
	}

	Service struct {
		repo  Repository
		v     *core.Validator
		media core.Media

		mu      sync.RWMutex
		current *Settings
	}
)

func NewService(repo Repository, v *core.Validator, media core.Media) *Service {
	return &Service{repo: repo, v: v, media: media}
}

// Current returns the current settings, loading them once.
func (svc *Service) Current(ctx context.Context) (Settings, error) {
	svc.mu.RLock()
	if svc.current != nil {
		defer svc.mu.RUnlock()
		return svc.current.Clone(), nil
	}
	svc.mu.RUnlock()

	s, err := svc.repo.GetSettings(ctx)
	if err != nil {
		if errors.Cause(err) != ErrNotFound {
			return Settings{}, errors.Wrap(err, "loading settings")
		}
		s = Default()
	}

	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.current == nil || svc.current.Version < s.Version {
		svc.current = &s
	}
	return svc.current.Clone(), nil
}

// Save replaces the whole document. `s.Version` must be the version being replaced.
func (svc *Service) Save(ctx context.Context, s Settings, actorID string) (Settings, error) {
	s = s.Clone()
	s.clean()
	if err := svc.v.Struct(s); err != nil {
		return Settings{}, err
	}
	return svc.save(ctx, s, actorID)
}

func (svc *Service) save(ctx context.Context, s Settings, actorID string) (Settings, error) {
	expected := s.Version
	s.Version = expected + 1
	s.UpdatedAt = time.Now().UTC()
	s.UpdatedBy = actorID

	if err := svc.repo.SaveSettings(ctx, s, expected); err != nil {
		if errors.Cause(err) == ErrVersionConflict {
			svc.invalidate()
			return Settings{}, ErrVersionConflict
		}
		return Settings{}, errors.Wrap(err, "saving settings")
	}

	// a slower save of an older version must not replace a newer cached one
	svc.mu.Lock()
	defer svc.mu.Unlock()
	if svc.current == nil || svc.current.Version < s.Version {
		stored := s.Clone()
		svc.current = &stored
	}
	return s, nil
}

func (svc *Service) invalidate() {
	svc.mu.Lock()
	svc.current = nil
	svc.mu.Unlock()
}

// SetLogo uploads a new logo and saves it into a new settings version.
func (svc *Service) SetLogo(ctx context.Context, filename, contentType string, r io.Reader, actorID string) (Settings, error) {
	current, err := svc.Current(ctx)
	if err != nil {
		return Settings{}, err
	}
	var saved Settings
	_, err = svc.media.Replace(ctx, core.BucketSite, current.LogoPath, "logo", filename, contentType, r, func(f core.StoredFile) error {
		doc := current.Clone()
		doc.LogoURL, doc.LogoPath = f.URL, f.Path
		saved, err = svc.save(ctx, doc, actorID)
		return err
	})
	return saved, err
}
