package filesvc

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

func pngImage(t *testing.T, w, h int) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestImageStore_Upload(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	store := NewImageStore(mem, 100, 80)

	t.Run("converts to webp and downscales", func(t *testing.T) {
		f, err := store.Upload(ctx, core.BucketAlbum, "a1/20250101-x-photo.PNG", "image/png", bytes.NewReader(pngImage(t, 300, 150)))
		require.NoError(t, err)
		assert.Equal(t, "a1/20250101-x-photo.webp", f.Path)
		assert.Equal(t, "image/webp", f.ContentType)

		r, ct, ok := mem.Object(core.BucketAlbum, f.Path)
		require.True(t, ok)
		assert.Equal(t, "image/webp", ct)
		img, format, err := image.Decode(r)
		require.NoError(t, err)
		assert.Equal(t, "webp", format)
		assert.Equal(t, 100, img.Bounds().Dx())
		assert.Equal(t, 50, img.Bounds().Dy())
	})

	t.Run("keeps small images size", func(t *testing.T) {
		f, err := store.Upload(ctx, core.BucketSite, "logo/logo.png", "image/png", bytes.NewReader(pngImage(t, 40, 20)))
		require.NoError(t, err)
		r, _, ok := mem.Object(core.BucketSite, f.Path)
		require.True(t, ok)
		cfg, _, err := image.DecodeConfig(r)
		require.NoError(t, err)
		assert.Equal(t, 40, cfg.Width)
	})

	t.Run("rejects non images", func(t *testing.T) {
		before := mem.Len()
		_, err := store.Upload(ctx, core.BucketAlbum, "a1/notes.txt", "text/plain", strings.NewReader("hello"))
		require.Error(t, err)
		verr, ok := err.(*core.ValidationError)
		require.True(t, ok, "want *core.ValidationError, got %T", err)
		assert.Equal(t, "file", verr.Fields[0].Field)
		assert.Equal(t, before, mem.Len())
	})
}

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := NewLocalStore(dir, "http://localhost:8000/media/")

	f, err := store.Upload(ctx, core.BucketTeacher, "t1/photo.webp", "image/webp", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000/media/pengajar/t1/photo.webp", f.URL)
	assert.EqualValues(t, 4, f.Size)

	content, err := os.ReadFile(filepath.Join(dir, core.BucketTeacher, "t1", "photo.webp"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(content))

	t.Run("paths cannot escape the bucket", func(t *testing.T) {
		f, err := store.Upload(ctx, core.BucketTeacher, "../../evil.txt", "text/plain", strings.NewReader("x"))
		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(dir, core.BucketTeacher, "evil.txt"))
		assert.NoError(t, err, f.Path)
	})

	require.NoError(t, store.Delete(ctx, core.BucketTeacher, "t1/photo.webp"))
	_, err = os.Stat(filepath.Join(dir, core.BucketTeacher, "t1", "photo.webp"))
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Delete(ctx, core.BucketTeacher, "t1/photo.webp"), "deleting twice is not an error")
}

type failingStore struct {
	core.FileStore
}

func (failingStore) Delete(context.Context, string, string) error { return io.ErrUnexpectedEOF }

func TestMedia_Replace(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryStore()
	media := core.Media{Store: mem}

	old, err := mem.Upload(ctx, core.BucketStudent, "s1/old.webp", "image/webp", strings.NewReader("old"))
	require.NoError(t, err)

	t.Run("save failure removes the new object", func(t *testing.T) {
		_, err := media.Replace(ctx, core.BucketStudent, old.Path, "s1", "new.webp", "image/webp", strings.NewReader("new"),
			func(core.StoredFile) error { return io.ErrClosedPipe })
		assert.Equal(t, io.ErrClosedPipe, err)
		assert.Equal(t, 1, mem.Len())
		_, _, ok := mem.Object(core.BucketStudent, old.Path)
		assert.True(t, ok)
	})

	t.Run("success removes the old object", func(t *testing.T) {
		var saved core.StoredFile
		f, err := media.Replace(ctx, core.BucketStudent, old.Path, "s1", "new.webp", "image/webp", strings.NewReader("new"),
			func(f core.StoredFile) error { saved = f; return nil })
		require.NoError(t, err)
		assert.Equal(t, f, saved)
		assert.True(t, strings.HasPrefix(f.Path, "s1/"))
		assert.Equal(t, 1, mem.Len())
		_, _, ok := mem.Object(core.BucketStudent, old.Path)
		assert.False(t, ok)
	})

	t.Run("failing removal is not an error", func(t *testing.T) {
		media := core.Media{Store: failingStore{FileStore: mem}}
		_, err := media.Replace(ctx, core.BucketStudent, "s1/missing.webp", "s1", "x.webp", "image/webp", strings.NewReader("x"),
			func(core.StoredFile) error { return nil })
		assert.NoError(t, err)
	})
}
