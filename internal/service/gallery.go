package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jewelcase/jewelcase/internal/model"
	"github.com/jewelcase/jewelcase/internal/storage"
	"github.com/jewelcase/jewelcase/internal/validation"
)

// maxNameAttempts bounds the collision retries for a single upload
const maxNameAttempts = 3

var ErrNameCollision = errors.New("could not find a free file name")

type GalleryService struct {
	storage storage.Storage
	now     func() time.Time
}

func NewGalleryService(storage storage.Storage, now func() time.Time) *GalleryService {
	if now == nil {
		now = time.Now
	}
	return &GalleryService{
		storage: storage,
		now:     now,
	}
}

// Upload stores an image under its category as {unixMillis}-{originalFilename}.
// If that name is taken (same millisecond, same original name) a short random
// suffix is inserted after the timestamp. Existing images are never overwritten.
// contentType is the sniffed type; the stored extension is made to match it.
// Note: File validation (type, size) should be done by the caller before calling Upload
func (s *GalleryService) Upload(ctx context.Context, category model.Category, originalName, contentType string, r io.ReadSeeker) (*model.StoredImage, error) {
	cleanName := model.WithImageExtension(validation.CleanFilename(originalName), contentType)
	millis := s.now().UnixMilli()

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		image := model.NewStoredImage(category, storedName(millis, cleanName, attempt))

		if attempt > 0 {
			_, err := r.Seek(0, io.SeekStart)
			if err != nil {
				return nil, fmt.Errorf("failed to rewind upload: %w", err)
			}
		}

		err := s.storage.Save(ctx, image.Key(), r)
		if err == nil {
			slog.Info("image stored", "category", category, "name", image.Name)
			return &image, nil
		}
		if !errors.Is(err, storage.ErrExists) {
			return nil, fmt.Errorf("failed to save image: %w", err)
		}

		slog.Debug("image name taken, retrying", "category", category, "name", image.Name)
	}

	return nil, ErrNameCollision
}

// Gallery lists every stored image of a category in upload order.
// A category nobody has uploaded to yet has an empty gallery.
func (s *GalleryService) Gallery(ctx context.Context, category model.Category) ([]model.StoredImage, error) {
	names, err := s.storage.List(ctx, string(category))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return []model.StoredImage{}, nil
		}
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	images := make([]model.StoredImage, 0, len(names))
	for _, name := range names {
		images = append(images, model.NewStoredImage(category, name))
	}

	return images, nil
}

func storedName(millis int64, cleanName string, attempt int) string {
	if attempt == 0 {
		return fmt.Sprintf("%d-%s", millis, cleanName)
	}
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%d-%s-%s", millis, suffix, cleanName)
}
