package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jewelcase/jewelcase/internal/model"
	"github.com/jewelcase/jewelcase/internal/storage"
)

var fixedTime = time.UnixMilli(1700000000123)

func fixedClock() time.Time { return fixedTime }

func newLocalService(t *testing.T) (*GalleryService, string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewLocalStorage(root)
	require.NoError(t, err)
	return NewGalleryService(store, fixedClock), root
}

func TestUploadStoresTimestampedName(t *testing.T) {
	svc, root := newLocalService(t)

	img, err := svc.Upload(context.Background(), model.CategoryRings, "photo.png", "image/png", strings.NewReader("ring"))
	require.NoError(t, err)

	assert.Equal(t, "1700000000123-photo.png", img.Name)
	assert.Equal(t, "/uploads/rings/1700000000123-photo.png", img.URL())

	data, err := os.ReadFile(filepath.Join(root, "rings", img.Name))
	require.NoError(t, err)
	assert.Equal(t, "ring", string(data))
}

func TestUploadSameMillisecondSameNameGetsSuffix(t *testing.T) {
	svc, root := newLocalService(t)
	ctx := context.Background()

	first, err := svc.Upload(ctx, model.CategoryEarrings, "stud.jpg", "image/jpeg", strings.NewReader("first"))
	require.NoError(t, err)
	second, err := svc.Upload(ctx, model.CategoryEarrings, "stud.jpg", "image/jpeg", strings.NewReader("second"))
	require.NoError(t, err)

	assert.Equal(t, "1700000000123-stud.jpg", first.Name)
	assert.Regexp(t, regexp.MustCompile(`^1700000000123-[0-9a-f]{8}-stud\.jpg$`), second.Name)

	data, err := os.ReadFile(filepath.Join(root, "earrings", first.Name))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	data, err = os.ReadFile(filepath.Join(root, "earrings", second.Name))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestUploadCleansFilename(t *testing.T) {
	svc, _ := newLocalService(t)

	img, err := svc.Upload(context.Background(), model.CategoryNecklace, "../../secret.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "1700000000123-secret.png", img.Name)
}

func TestUploadNameFollowsDetectedType(t *testing.T) {
	svc, root := newLocalService(t)
	ctx := context.Background()

	img, err := svc.Upload(ctx, model.CategoryRings, "evil.html", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "1700000000123-evil.png", img.Name)

	img, err = svc.Upload(ctx, model.CategoryRings, "scan", "image/jpeg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "1700000000123-scan.jpg", img.Name)

	_, err = os.Stat(filepath.Join(root, "rings", "1700000000123-evil.html"))
	assert.True(t, os.IsNotExist(err))
}

func TestGalleryEmptyWhenNothingUploaded(t *testing.T) {
	svc, _ := newLocalService(t)

	images, err := svc.Gallery(context.Background(), model.CategoryCustomDesigns)
	require.NoError(t, err)
	assert.NotNil(t, images)
	assert.Empty(t, images)
}

func TestGalleryListsUploadsInOrder(t *testing.T) {
	clock := fixedTime
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	svc := NewGalleryService(store, func() time.Time { return clock })
	ctx := context.Background()

	_, err = svc.Upload(ctx, model.CategoryRings, "a.png", "image/png", strings.NewReader("a"))
	require.NoError(t, err)
	clock = clock.Add(time.Second)
	_, err = svc.Upload(ctx, model.CategoryRings, "b.png", "image/png", strings.NewReader("b"))
	require.NoError(t, err)

	images, err := svc.Gallery(ctx, model.CategoryRings)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "1700000000123-a.png", images[0].Name)
	assert.Equal(t, "1700000001123-b.png", images[1].Name)

	// Other categories are unaffected
	others, err := svc.Gallery(ctx, model.CategoryNecklace)
	require.NoError(t, err)
	assert.Empty(t, others)
}

// stubStorage returns canned errors
type stubStorage struct {
	saveErr error
	listErr error
	saves   int
}

func (s *stubStorage) Save(_ context.Context, _ string, r io.Reader) error {
	s.saves++
	_, _ = io.Copy(io.Discard, r)
	return s.saveErr
}

func (s *stubStorage) List(context.Context, string) ([]string, error) {
	return nil, s.listErr
}

func (s *stubStorage) Handler() http.Handler {
	return http.NotFoundHandler()
}

func TestUploadGivesUpAfterRepeatedCollisions(t *testing.T) {
	store := &stubStorage{saveErr: storage.ErrExists}
	svc := NewGalleryService(store, fixedClock)

	_, err := svc.Upload(context.Background(), model.CategoryRings, "photo.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNameCollision)
	assert.Equal(t, maxNameAttempts, store.saves)
}

func TestUploadPropagatesStorageFailure(t *testing.T) {
	diskFull := errors.New("no space left on device")
	store := &stubStorage{saveErr: diskFull}
	svc := NewGalleryService(store, fixedClock)

	_, err := svc.Upload(context.Background(), model.CategoryRings, "photo.png", "image/png", strings.NewReader("x"))
	assert.ErrorIs(t, err, diskFull)
	assert.Equal(t, 1, store.saves)
}

func TestGalleryPropagatesReadFailure(t *testing.T) {
	denied := errors.New("permission denied")
	svc := NewGalleryService(&stubStorage{listErr: denied}, fixedClock)

	_, err := svc.Gallery(context.Background(), model.CategoryRings)
	assert.ErrorIs(t, err, denied)
}
