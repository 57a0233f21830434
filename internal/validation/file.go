package validation

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
)

var (
	ErrNoFile          = errors.New("no image file provided")
	ErrEmptyFile       = errors.New("image file is empty")
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// FileConstraints defines validation rules for file uploads
type FileConstraints struct {
	AllowedMimeTypes map[string]bool
	MaxSize          int64
}

// ImageConstraints returns the rules for gallery uploads.
// Only the sniffed MIME type is checked; images are stored as received.
func ImageConstraints(maxSize int64) FileConstraints {
	return FileConstraints{
		AllowedMimeTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/gif":  true,
			"image/webp": true,
			"image/bmp":  true,
		},
		MaxSize: maxSize,
	}
}

// ValidateFile checks a multipart upload against the constraints and returns the detected MIME type.
func ValidateFile(file multipart.File, header *multipart.FileHeader, constraints FileConstraints) (string, error) {
	if file == nil || header == nil {
		return "", ErrNoFile
	}
	return ValidateContent(file, header.Size, constraints)
}

// ValidateContent checks size bytes of r against the constraints and returns the detected MIME type.
// The read offset is reset so the caller can store r from the start.
func ValidateContent(r io.ReadSeeker, size int64, constraints FileConstraints) (string, error) {
	if size == 0 {
		return "", ErrEmptyFile
	}

	// Check file size first (before reading content)
	if constraints.MaxSize > 0 && size > constraints.MaxSize {
		return "", fmt.Errorf("%w: maximum size is %d bytes", ErrFileTooLarge, constraints.MaxSize)
	}

	// http.DetectContentType reads max 512 bytes to determine MIME type
	buffer := make([]byte, 512)
	n, err := io.ReadFull(r, buffer)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	_, err = r.Seek(0, io.SeekStart)
	if err != nil {
		return "", fmt.Errorf("failed to reset file pointer: %w", err)
	}

	// Detect from magic numbers; the client's Content-Type header is not trusted
	detectedType := http.DetectContentType(buffer[:n])
	if !constraints.AllowedMimeTypes[detectedType] {
		return "", fmt.Errorf("%w (detected: %s)", ErrUnsupportedType, detectedType)
	}

	return detectedType, nil
}

// CleanFilename reduces a client-supplied filename to a safe base name.
// Directory components are dropped so a name can never leave its category.
func CleanFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	name = strings.TrimLeft(name, ".")
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)

	if name == "" || name == "/" {
		return "image"
	}
	return name
}
