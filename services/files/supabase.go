package filesvc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/Adeanak/web-pendidikanalhikmahfix-sub000/core"
)

// SupabaseStore stores objects in Supabase Storage public buckets through its REST API.
type SupabaseStore struct {
	baseURL string
	key     string
	client  *http.Client
}

var _ core.FileStore = (*SupabaseStore)(nil)

func NewSupabaseStore(baseURL, serviceKey string) *SupabaseStore {
	return &SupabaseStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     serviceKey,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *SupabaseStore) objectURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/%s/%s", s.baseURL, url.PathEscape(bucket), escapePath(path))
}

func (s *SupabaseStore) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, url.PathEscape(bucket), escapePath(path))
}

func (s *SupabaseStore) do(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+s.key)
	req.Header.Set("apikey", s.key)

	res, err := s.client.Do(req)
	if err != nil {
		return core.NewRemoteStoreError("supabase storage "+req.Method, err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return core.NewRemoteStoreError(
			"supabase storage "+req.Method,
			errors.Errorf("%s: status %d: %s", req.URL.Path, res.StatusCode, body),
		)
	}
	return nil
}

func (s *SupabaseStore) Upload(ctx context.Context, bucket, path, contentType string, r io.Reader) (core.StoredFile, error) {
	cr := &countingReader{r: r}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.objectURL(bucket, path), cr)
	if err != nil {
		return core.StoredFile{}, errors.Wrap(err, "creating upload request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("x-upsert", "true")
	if err = s.do(req); err != nil {
		return core.StoredFile{}, err
	}
	return core.StoredFile{
		Bucket:      bucket,
		Path:        path,
		URL:         s.PublicURL(bucket, path),
		ContentType: contentType,
		Size:        cr.n,
	}, nil
}

func (s *SupabaseStore) Delete(ctx context.Context, bucket, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.objectURL(bucket, path), nil)
	if err != nil {
		return errors.Wrap(err, "creating delete request")
	}
	return s.do(req)
}

func escapePath(p string) string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
