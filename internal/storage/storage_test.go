package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	gcs "cloud.google.com/go/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFS(t *testing.T) *StorageFS {
	t.Helper()
	fs, err := NewStorageFS(zap.NewNop(), t.TempDir())
	require.NoError(t, err)
	return fs
}

func TestStorageFSRoundTrip(t *testing.T) {
	ctx := context.Background()
	fs := newFS(t)

	require.NoError(t, WriteFile(ctx, fs, "a/b/c.txt", strings.NewReader("hello")))
	data, err := ReadFile(ctx, fs, "a/b/c.txt")
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))

	f, err := fs.ReadFile(ctx, "a/b/c.txt")
	require.NoError(t, err)
	require.Equal(t, int64(5), f.Size)
	require.NoError(t, f.Reader.Close())

	require.NoError(t, fs.DeleteFile(ctx, "a/b/c.txt"))
	_, err = fs.ReadFile(ctx, "a/b/c.txt")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, fs.DeleteFile(ctx, "a/b/c.txt"))
}

func TestStorageFSRejectsEscapingNames(t *testing.T) {
	ctx := context.Background()
	fs := newFS(t)

	for _, name := range []string{"", "../x", "a/../../x", "/etc/passwd"} {
		_, err := fs.WriteFile(ctx, name)
		require.Error(t, err, name)
		_, err = fs.ReadFile(ctx, name)
		require.Error(t, err, name)
	}
}

func TestSaveArtifactsWritesPNGs(t *testing.T) {
	ctx := context.Background()
	fs := newFS(t)
	mask := image.NewGray(image.Rect(0, 0, 4, 3))
	mask.Pix[5] = 255
	original := image.NewGray(image.Rect(0, 0, 4, 3))
	original.Pix[0] = 42

	a, err := SaveArtifacts(ctx, fs, "ab12cd34", mask, original)
	require.NoError(t, err)
	require.Equal(t, "results/ab12cd34/mask.png", a.MaskKey)
	require.Equal(t, "results/ab12cd34/original.png", a.OriginalKey)
	require.FileExists(t, filepath.Join(fs.Root, "results", "ab12cd34", "mask.png"))

	f, err := Open(ctx, fs, "ab12cd34", MaskFile)
	require.NoError(t, err)
	decoded, err := png.Decode(f.Reader)
	require.NoError(t, f.Reader.Close())
	require.NoError(t, err)
	gray, ok := decoded.(*image.Gray)
	require.True(t, ok)
	require.Equal(t, mask.Pix, gray.Pix)

	f, err = Open(ctx, fs, "ab12cd34", OriginalFile)
	require.NoError(t, err)
	decoded, err = png.Decode(f.Reader)
	require.NoError(t, f.Reader.Close())
	require.NoError(t, err)
	require.Equal(t, uint8(42), decoded.(*image.Gray).Pix[0])

	require.NoError(t, DeleteArtifacts(ctx, fs, "ab12cd34"))
	_, err = Open(ctx, fs, "ab12cd34", MaskFile)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOpenUnknownArtifact(t *testing.T) {
	ctx := context.Background()
	fs := newFS(t)

	for _, tc := range []struct{ id, file string }{
		{"missing", MaskFile},
		{"..", MaskFile},
		{"a/b", OriginalFile},
		{"ab12cd34", "secret.txt"},
	} {
		_, err := Open(ctx, fs, tc.id, tc.file)
		require.ErrorIs(t, err, ErrNotFound, "%s/%s", tc.id, tc.file)
	}
}

type failingStore struct {
	Store
	failOn  string
	deleted []string
}

func (s *failingStore) WriteFile(ctx context.Context, name string) (io.WriteCloser, error) {
	if strings.HasSuffix(name, s.failOn) {
		return nil, errors.New("disk full")
	}
	return s.Store.WriteFile(ctx, name)
}

func (s *failingStore) DeleteFile(ctx context.Context, name string) error {
	s.deleted = append(s.deleted, name)
	return s.Store.DeleteFile(ctx, name)
}

func TestSaveArtifactsRemovesMaskWhenOriginalFails(t *testing.T) {
	ctx := context.Background()
	fs := newFS(t)
	store := &failingStore{Store: fs, failOn: OriginalFile}
	img := image.NewGray(image.Rect(0, 0, 2, 2))

	_, err := SaveArtifacts(ctx, store, "ab12cd34", img, img)

	require.Error(t, err)
	require.Equal(t, []string{"results/ab12cd34/mask.png"}, store.deleted)
	_, statErr := os.Stat(filepath.Join(fs.Root, "results", "ab12cd34", "mask.png"))
	require.True(t, os.IsNotExist(statErr))
}

// fakeS3 serves path-style PUT, GET and DELETE for a single bucket.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = body
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestStorageS3AgainstFakeServer(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	t.Setenv("AWS_EC2_METADATA_DISABLED", "true")
	backend := &fakeS3{objects: map[string][]byte{}}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	ctx := context.Background()
	s3, err := NewStorageS3(zap.NewNop(), S3Options{
		Bucket:   "liver",
		Region:   "us-east-1",
		Prefix:   "prod",
		Endpoint: srv.URL,
	})
	require.NoError(t, err)

	payload := bytes.Repeat([]byte{7}, 1024)
	require.NoError(t, WriteFile(ctx, s3, "results/x/mask.png", bytes.NewReader(payload)))
	require.Contains(t, backend.objects, "liver/prod/results/x/mask.png")

	data, err := ReadFile(ctx, s3, "results/x/mask.png")
	require.NoError(t, err)
	require.Equal(t, payload, data)

	require.NoError(t, s3.DeleteFile(ctx, "results/x/mask.png"))
	_, err = s3.ReadFile(ctx, "results/x/mask.png")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGCSErrorMapping(t *testing.T) {
	require.ErrorIs(t, gcsError("a", gcs.ErrObjectNotExist), ErrNotFound)

	other := errors.New("permission denied")
	require.Equal(t, other, gcsError("a", other))
}

func TestObjectKey(t *testing.T) {
	require.Equal(t, "results/a/mask.png", objectKey("", "results/a/mask.png"))
	require.Equal(t, "p/results/a/mask.png", objectKey("p/", "results/a/mask.png"))
}

func TestNewSelectsBackend(t *testing.T) {
	root := filepath.Join(t.TempDir(), "artifacts")
	s, err := New(context.Background(), zap.NewNop(), Options{Backend: "fs", Root: root})
	require.NoError(t, err)
	require.IsType(t, &StorageFS{}, s)
	require.DirExists(t, root)

	_, err = New(context.Background(), zap.NewNop(), Options{Backend: "ftp"})
	require.Error(t, err)
}

type closingStore struct {
	Store
	closed int
	err    error
}

func (s *closingStore) Close() error {
	s.closed++
	return s.err
}

func TestCloseReleasesClosableBackends(t *testing.T) {
	var _ io.Closer = (*StorageGCS)(nil)

	fs := newFS(t)
	require.NoError(t, Close(fs))

	closable := &closingStore{Store: fs}
	require.NoError(t, Close(closable))
	require.Equal(t, 1, closable.closed)

	failing := &closingStore{Store: fs, err: errors.New("client closed twice")}
	require.EqualError(t, Close(failing), "client closed twice")
}
