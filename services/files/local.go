package filesvc

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

// LocalStore stores objects under a directory, one sub-directory per bucket. The server exposes the directory
// at publicBaseURL.
type LocalStore struct {
	dir           string
	publicBaseURL string
}

var _ core.FileStore = (*LocalStore)(nil)

func NewLocalStore(dir, publicBaseURL string) *LocalStore {
	return &LocalStore{dir: dir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

func (s *LocalStore) Dir() string { return s.dir }

// filePath resolves the object path, refusing paths escaping the bucket directory.
func (s *LocalStore) filePath(bucket, path string) (string, error) {
	root := filepath.Join(s.dir, filepath.Clean("/"+bucket))
	fp := filepath.Join(root, filepath.Clean("/"+path))
	if fp == root {
		return "", errors.Errorf("invalid object path %q", path)
	}
	return fp, nil
}

func (s *LocalStore) PublicURL(bucket, path string) string {
	return s.publicBaseURL + "/" + bucket + "/" + strings.TrimLeft(path, "/")
}

func (s *LocalStore) Upload(_ context.Context, bucket, path, contentType string, r io.Reader) (core.StoredFile, error) {
	fp, err := s.filePath(bucket, path)
	if err != nil {
		return core.StoredFile{}, err
	}
	if err = os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return core.StoredFile{}, errors.Wrap(err, "creating directory")
	}
	f, err := os.Create(fp)
	if err != nil {
		return core.StoredFile{}, errors.Wrap(err, "creating file")
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(fp)
		return core.StoredFile{}, errors.Wrap(err, "writing file")
	}
	return core.StoredFile{Bucket: bucket, Path: path, URL: s.PublicURL(bucket, path), ContentType: contentType, Size: n}, nil
}

func (s *LocalStore) Delete(_ context.Context, bucket, path string) error {
	fp, err := s.filePath(bucket, path)
	if err != nil {
		return err
	}
	if err = os.Remove(fp); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing file")
	}
	return nil
}
