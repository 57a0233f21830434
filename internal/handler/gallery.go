package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jewelcase/jewelcase/internal/model"
	"github.com/jewelcase/jewelcase/internal/service"
	"github.com/jewelcase/jewelcase/internal/ui"
	"github.com/jewelcase/jewelcase/internal/ui/pages"
	"github.com/jewelcase/jewelcase/internal/validation"
)

const (
	// Room for multipart boundaries and headers on top of the file itself
	multipartOverhead = 1 << 20
	// Parts larger than this are spooled to temp files while parsing
	multipartMemory = 8 << 20
)

type errorResponse struct {
	Message string `json:"message"`
}

// GalleryHandler serves the upload and gallery pages of every category.
// Category handlers are built per category value instead of parsing the path.
type GalleryHandler struct {
	galleryService *service.GalleryService
	maxUploadSize  int64
}

func NewGalleryHandler(galleryService *service.GalleryService, maxUploadSize int64) *GalleryHandler {
	return &GalleryHandler{
		galleryService: galleryService,
		maxUploadSize:  maxUploadSize,
	}
}

func (h *GalleryHandler) HomePage(w http.ResponseWriter, r *http.Request) {
	ui.Render(w, r, pages.Home(model.Categories))
}

func (h *GalleryHandler) NotFoundPage(w http.ResponseWriter, r *http.Request) {
	ui.RenderStatus(w, r, http.StatusNotFound, pages.NotFound())
}

func (h *GalleryHandler) UploadPage(c model.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ui.Render(w, r, pages.UploadForm(c))
	}
}

// Upload accepts a multipart form with a single "image" file.
// Failures are answered with JSON {"message": ...}; success renders a confirmation page.
func (h *GalleryHandler) Upload(c model.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)

		err := r.ParseMultipartForm(multipartMemory)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeError(w, http.StatusRequestEntityTooLarge, validation.ErrFileTooLarge.Error())
				return
			}
			slog.Warn("invalid upload form", "error", err, "category", c)
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer func() {
			_ = r.MultipartForm.RemoveAll()
		}()

		file, header, err := r.FormFile("image")
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				writeError(w, http.StatusBadRequest, validation.ErrNoFile.Error())
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer func() {
			_ = file.Close()
		}()

		contentType, err := validation.ValidateFile(file, header, validation.ImageConstraints(h.maxUploadSize))
		if err != nil {
			writeError(w, validationStatus(err), err.Error())
			return
		}

		image, err := h.galleryService.Upload(r.Context(), c, header.Filename, contentType, file)
		if err != nil {
			slog.Error("failed to store upload", "error", err, "category", c, "filename", header.Filename)
			writeError(w, http.StatusInternalServerError, "failed to store image")
			return
		}

		ui.Render(w, r, pages.UploadSuccess(*image))
	}
}

// ViewGallery lists a category. A category without uploads shows an empty gallery;
// only real read failures produce the plain-text error.
func (h *GalleryHandler) ViewGallery(c model.Category) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		images, err := h.galleryService.Gallery(r.Context(), c)
		if err != nil {
			slog.Error("failed to list gallery", "error", err, "category", c)
			http.Error(w, "Error reading directory.", http.StatusInternalServerError)
			return
		}

		ui.Render(w, r, pages.Gallery(c, images))
	}
}

func validationStatus(err error) int {
	switch {
	case errors.Is(err, validation.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, validation.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, validation.ErrNoFile), errors.Is(err, validation.ErrEmptyFile):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(errorResponse{Message: message})
	if err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}
