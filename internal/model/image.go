package model

import (
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// UploadsURLPrefix is the public path under which stored images are served.
const UploadsURLPrefix = "/uploads/"

// imageExtensions lists the extensions a stored image of each accepted type may
// carry. The first one is used when a name has to be given an extension.
var imageExtensions = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
	"image/bmp":  {".bmp"},
}

// StoredImage is an uploaded file persisted under its category.
type StoredImage struct {
	Category Category
	Name     string // {unixMillis}-{originalFilename}, unique within the category
}

// NewStoredImage returns the stored image for name under category c.
func NewStoredImage(c Category, name string) StoredImage {
	return StoredImage{Category: c, Name: name}
}

// Key is the storage path relative to the uploads root: {category}/{name}.
func (i StoredImage) Key() string {
	return path.Join(string(i.Category), i.Name)
}

// URL is the public path of the image: /uploads/{category}/{name}.
// The name is path-escaped so names with spaces or '#' still resolve.
func (i StoredImage) URL() string {
	return UploadsURLPrefix + string(i.Category) + "/" + url.PathEscape(i.Name)
}

// UploadedAt reads the upload time back from the timestamp prefix of the name.
// Files placed in the uploads directory by hand may not have one.
func (i StoredImage) UploadedAt() (time.Time, bool) {
	prefix, _, ok := strings.Cut(i.Name, "-")
	if !ok {
		return time.Time{}, false
	}
	millis, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil || millis < 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(millis), true
}

// WithImageExtension makes name end in an extension of contentType, replacing
// whatever extension the client sent. Stored names are served by extension,
// so "evil.html" holding PNG data must become "evil.png".
func WithImageExtension(name, contentType string) string {
	exts, ok := imageExtensions[contentType]
	if !ok {
		return name
	}
	ext := path.Ext(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return name
		}
	}
	return strings.TrimSuffix(name, ext) + exts[0]
}

// ContentTypeOf returns the image type implied by the extension of a stored
// name, or "" when the extension is not one an upload can end up with.
func ContentTypeOf(name string) string {
	ext := strings.ToLower(path.Ext(name))
	for contentType, exts := range imageExtensions {
		for _, e := range exts {
			if ext == e {
				return contentType
			}
		}
	}
	return ""
}
