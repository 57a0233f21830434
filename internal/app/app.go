package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jewelcase/jewelcase/internal/config"
	"github.com/jewelcase/jewelcase/internal/service"
	"github.com/jewelcase/jewelcase/internal/storage"
)

type App struct {
	Cfg            *config.Config
	Storage        storage.Storage
	GalleryService *service.GalleryService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	imageStorage, err := storage.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return NewWithStorage(cfg, imageStorage, time.Now), nil
}

// NewWithStorage wires the services around an existing storage backend
func NewWithStorage(cfg *config.Config, imageStorage storage.Storage, now func() time.Time) *App {
	return &App{
		Cfg:            cfg,
		Storage:        imageStorage,
		GalleryService: service.NewGalleryService(imageStorage, now),
	}
}
