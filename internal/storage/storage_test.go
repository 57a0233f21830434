package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfg "github.com/jewelcase/jewelcase/internal/config"
)

func newLocal(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocalStorage(root)
	require.NoError(t, err)
	return s, root
}

func TestLocalStorageSaveCreatesDirectories(t *testing.T) {
	s, root := newLocal(t)
	ctx := context.Background()

	err := s.Save(ctx, "rings/1-photo.png", strings.NewReader("png bytes"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "rings", "1-photo.png"))
	require.NoError(t, err)
	assert.Equal(t, "png bytes", string(data))

	// Directory already exists on the second save
	err = s.Save(ctx, "rings/2-photo.png", strings.NewReader("more"))
	require.NoError(t, err)
}

func TestLocalStorageSaveNeverOverwrites(t *testing.T) {
	s, root := newLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "rings/1-photo.png", strings.NewReader("first")))

	err := s.Save(ctx, "rings/1-photo.png", strings.NewReader("second"))
	assert.ErrorIs(t, err, ErrExists)

	data, err := os.ReadFile(filepath.Join(root, "rings", "1-photo.png"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestLocalStorageSaveRemovesPartialFile(t *testing.T) {
	s, root := newLocal(t)

	err := s.Save(context.Background(), "necklace/1-broken.png", failingReader{})
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(root, "necklace", "1-broken.png"))
	assert.True(t, os.IsNotExist(statErr))

	// The directory stays behind; there is no rollback
	info, statErr := os.Stat(filepath.Join(root, "necklace"))
	require.NoError(t, statErr)
	assert.True(t, info.IsDir())
}

func TestLocalStorageSaveStaysInsideRoot(t *testing.T) {
	s, root := newLocal(t)

	require.NoError(t, s.Save(context.Background(), "../../escape.png", strings.NewReader("x")))

	_, err := os.Stat(filepath.Join(root, "escape.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(filepath.Dir(root), "escape.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorageListMissingDirectory(t *testing.T) {
	s, _ := newLocal(t)

	_, err := s.List(context.Background(), "earrings")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorageListSkipsHiddenAndDirectories(t *testing.T) {
	s, root := newLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "rings/2-b.png", strings.NewReader("b")))
	require.NoError(t, s.Save(ctx, "rings/1-a.png", strings.NewReader("a")))
	require.NoError(t, s.Save(ctx, "rings/.DS_Store", strings.NewReader("junk")))
	require.NoError(t, os.Mkdir(filepath.Join(root, "rings", "nested"), 0o755))

	names, err := s.List(ctx, "rings")
	require.NoError(t, err)
	assert.Equal(t, []string{"1-a.png", "2-b.png"}, names)
}

func TestLocalStorageHandler(t *testing.T) {
	s, _ := newLocal(t)
	require.NoError(t, s.Save(context.Background(), "rings/1-photo.png", strings.NewReader("png bytes")))

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/rings/1-photo.png")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "png bytes", string(body))
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	// No directory listings
	resp, err = http.Get(srv.URL + "/rings/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLocalStorageHandlerNeverServesMarkup(t *testing.T) {
	s, root := newLocal(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "rings"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "rings", "1-x.html"), []byte("<script>alert(1)</script>"), 0o644))
	require.NoError(t, s.Save(context.Background(), "rings/2-y.JPEG", strings.NewReader("jpeg bytes")))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rings/1-x.html", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/rings/2-y.JPEG", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
}

func TestNewSelectsDriver(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	s, err := New(context.Background(), &cfg.Config{StorageDriver: cfg.StorageDriverLocal, UploadDir: dir})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, s)

	_, err = New(context.Background(), &cfg.Config{StorageDriver: "ftp"})
	assert.Error(t, err)
}

func newOfflineS3(t *testing.T) *S3Storage {
	t.Helper()
	client := s3.New(s3.Options{
		Region:       "us-east-1",
		BaseEndpoint: aws.String("http://localhost:9000"),
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider("access", "secret", ""),
	})
	return NewS3StorageFromClient(client, "jewelcase", 15*time.Minute)
}

func TestS3StorageHandlerRedirectsToPresignedURL(t *testing.T) {
	s := newOfflineS3(t)

	req := httptest.NewRequest(http.MethodGet, "/rings/1-photo.png", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	location := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(location, "http://localhost:9000/jewelcase/rings/1-photo.png?"), location)
	assert.Contains(t, location, "X-Amz-Signature=")
	assert.Contains(t, location, "X-Amz-Expires=900")
	assert.Contains(t, location, "response-content-type=image%2Fpng")
}

func TestS3StorageHandlerRejectsDirectories(t *testing.T) {
	s := newOfflineS3(t)

	for _, p := range []string{"/", "/rings/"} {
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, p)
	}
}

func TestIsConditionalWriteConflict(t *testing.T) {
	assert.True(t, isConditionalWriteConflict(&smithy.GenericAPIError{Code: "PreconditionFailed"}))
	assert.True(t, isConditionalWriteConflict(&smithy.GenericAPIError{Code: "ConditionalRequestConflict"}))
	assert.False(t, isConditionalWriteConflict(&smithy.GenericAPIError{Code: "AccessDenied"}))
	assert.False(t, isConditionalWriteConflict(errors.New("boom")))
}
