package core

import (
	"context"
	"io"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Storage buckets.
const (
	BucketAlbum    = "album"
	BucketStudent  = "siswa"
	BucketTeacher  = "pengajar"
	BucketGraduate = "lulusan"
	BucketSite     = "website"
)

// StoredFile describes an uploaded object.
type StoredFile struct {
	Bucket      string `json:"bucket"`
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// FileStore is an object storage: uploaded objects are addressed by bucket and path and served from a public URL.
type FileStore interface {
	Upload(ctx context.Context, bucket, path, contentType string, r io.Reader) (StoredFile, error)
	Delete(ctx context.Context, bucket, path string) error
	PublicURL(bucket, path string) string
}

// UniqueFilePath returns `folder/YYYYMMDD-<uuid>-<name>` with `name` reduced to a safe slug.
func UniqueFilePath(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	base = strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(base), "-"), "-")
	if base == "" {
		base = "file"
	}
	if len(base) > 48 {
		base = base[:48]
	}
	name := time.Now().UTC().Format("20060102") + "-" + uuid.New().String() + "-" + base + ext
	if folder == "" {
		return name
	}
	return strings.Trim(folder, "/") + "/" + name
}

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]+`)

// Media uploads and removes the files attached to records.
type Media struct {
	Store  FileStore
	Logger Logger
}

// Replace uploads `r` under `folder`, hands the stored file to `save`, then removes `oldPath`.
// The new object is removed again when `save` fails; a failure to remove `oldPath` is only logged.
func (m Media) Replace(
	ctx context.Context,
	bucket, oldPath, folder, filename, contentType string,
	r io.Reader,
	save func(StoredFile) error,
) (StoredFile, error) {
	file, err := m.Store.Upload(ctx, bucket, UniqueFilePath(folder, filename), contentType, r)
	if err != nil {
		return StoredFile{}, errors.Wrap(err, "uploading file")
	}
	if err = save(file); err != nil {
		m.Remove(ctx, bucket, file.Path)
		return StoredFile{}, err
	}
	m.Remove(ctx, bucket, oldPath)
	return file, nil
}

// Remove deletes an object, logging failures.
func (m Media) Remove(ctx context.Context, bucket, path string) {
	if path == "" {
		return
	}
	if err := m.Store.Delete(ctx, bucket, path); err != nil && m.Logger != nil {
		m.Logger.Warn("removing stored file "+bucket+"/"+path, err)
	}
}
