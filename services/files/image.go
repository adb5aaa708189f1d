package filesvc

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"path"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

const (
	webpContentType = "image/webp"
	maxImageSize    = 10 << 20
)

var (
	ErrNotAnImage    = errors.New("file must be a JPEG, PNG, GIF or WebP image")
	ErrImageTooLarge = errors.New("image must not exceed 10 MB")
)

// ImageStore normalizes the uploaded images before storing them: they are auto-oriented, downscaled to maxWidth
// and re-encoded as WebP.
type ImageStore struct {
	core.FileStore
	maxWidth int
	quality  float32
}

var _ core.FileStore = (*ImageStore)(nil)

func NewImageStore(store core.FileStore, maxWidth int, quality float32) *ImageStore {
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	return &ImageStore{FileStore: store, maxWidth: maxWidth, quality: quality}
}

func (s *ImageStore) Upload(ctx context.Context, bucket, filePath, contentType string, r io.Reader) (core.StoredFile, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxImageSize+1))
	if err != nil {
		return core.StoredFile{}, errors.Wrap(err, "reading image")
	}
	if len(data) > maxImageSize {
		return core.StoredFile{}, core.NewValidationError(ErrImageTooLarge, core.FieldError{Field: "file", Error: ErrImageTooLarge.Error()})
	}

	out, err := s.normalize(data)
	if err != nil {
		return core.StoredFile{}, err
	}
	filePath = strings.TrimSuffix(filePath, path.Ext(filePath)) + ".webp"
	return s.FileStore.Upload(ctx, bucket, filePath, webpContentType, bytes.NewReader(out))
}

func (s *ImageStore) normalize(data []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		if err == image.ErrFormat {
			return nil, core.NewValidationError(ErrNotAnImage, core.FieldError{Field: "file", Error: ErrNotAnImage.Error()})
		}
		return nil, core.NewValidationError(errors.Wrap(err, "decoding image"), core.FieldError{Field: "file", Error: ErrNotAnImage.Error()})
	}
	if s.maxWidth > 0 && img.Bounds().Dx() > s.maxWidth {
		img = imaging.Resize(img, s.maxWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err = webp.Encode(buf, img, &webp.Options{Lossless: false, Quality: s.quality}); err != nil {
		return nil, errors.Wrap(err, "encoding webp")
	}
	return buf.Bytes(), nil
}
