package settings_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core/settings"
	inmemdb "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/storage/database/inmem"
	testutil "github.com/Adeanak/web-pendidikanalhikmahfix-sub000/tests"
)

var ctx = context.Background()

func TestService_Save(t *testing.T) {
	env := testutil.Setup(t)

	s, err := env.Settings.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.Default().SiteName, s.SiteName)

	s.About.Mission = append(s.About.Mission, "Mencetak hafidz")
	saved, err := env.Settings.Save(ctx, s, "admin-id")
	require.NoError(t, err)
	assert.Equal(t, 1, saved.Version)

	// the returned copy does not alias the cached one
	saved.About.Mission[0] = "changed"
	current, err := env.Settings.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mencetak hafidz"}, current.About.Mission)

	_, err = env.Settings.Save(ctx, s, "admin-id")
	assert.Equal(t, settings.ErrVersionConflict, err)
}

func TestService_Save_concurrent(t *testing.T) {
	env := testutil.Setup(t)
	base, err := env.Settings.Current(ctx)
	require.NoError(t, err)

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			doc := base.Clone()
			doc.Tagline = strings.Repeat("x", i+1)
			_, err := env.Settings.Save(ctx, doc, "admin-id")

			mu.Lock()
			defer mu.Unlock()
			switch err {
			case nil:
				wins++
			case settings.ErrVersionConflict:
				conflicts++
			default:
				t.Errorf("Save() unexpected error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, writers-1, conflicts)

	current, err := env.Settings.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, base.Version+1, current.Version)
}

func TestService_Save_validation(t *testing.T) {
	env := testutil.Setup(t)
	s, _ := env.Settings.Current(ctx)
	s.Programs = append(s.Programs, settings.ProgramInfo{Program: "SMP", Title: ""})
	s.Social.Instagram = "not a url"

	_, err := env.Settings.Save(ctx, s, "admin-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid input")

	current, _ := env.Settings.Current(ctx)
	assert.Equal(t, 0, current.Version)
}

func TestService_SetLogo(t *testing.T) {
	env := testutil.Setup(t)

	s, err := env.Settings.SetLogo(ctx, "logo.png", "image/png", strings.NewReader("png"), "admin-id")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Version)
	assert.NotEmpty(t, s.LogoPath)
	_, _, ok := env.Store.Object("website", s.LogoPath)
	assert.True(t, ok)

	s2, err := env.Settings.SetLogo(ctx, "logo2.png", "image/png", strings.NewReader("png"), "admin-id")
	require.NoError(t, err)
	assert.Equal(t, 2, s2.Version)
	_, _, ok = env.Store.Object("website", s.LogoPath)
	assert.False(t, ok, "previous logo is removed")
	assert.Equal(t, 1, env.Store.Len())
}

// slowFirstSave holds the first save after it is stored, until released.
type slowFirstSave struct {
	settings.Repository
	once     sync.Once
	stored   chan struct{}
	released chan struct{}
}

func (r *slowFirstSave) SaveSettings(ctx context.Context, s settings.Settings, expectedVersion int) error {
	if err := r.Repository.SaveSettings(ctx, s, expectedVersion); err != nil {
		return err
	}
	r.once.Do(func() {
		close(r.stored)
		<-r.released
	})
	return nil
}

func TestService_Save_keepsNewestCached(t *testing.T) {
	env := testutil.Setup(t)
	repo := &slowFirstSave{
		Repository: inmemdb.NewSettingsRepository(env.DB),
		stored:     make(chan struct{}),
		released:   make(chan struct{}),
	}
	svc := settings.NewService(repo, core.NewValidator(), core.Media{Store: env.Store, Logger: testutil.Logger})

	base, err := svc.Current(ctx)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		doc := base.Clone()
		doc.Tagline = "v1"
		_, err := svc.Save(ctx, doc, "admin-1")
		done <- err
	}()
	<-repo.stored

	doc := base.Clone()
	doc.Version = 1
	doc.Tagline = "v2"
	saved, err := svc.Save(ctx, doc, "admin-2")
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Version)

	close(repo.released)
	require.NoError(t, <-done)

	current, err := svc.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, current.Version)
	assert.Equal(t, "v2", current.Tagline)

	stored, err := repo.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, stored.Version, current.Version)
}
