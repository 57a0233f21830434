package service

import (
	"context"
	"encoding/xml"
	"log/slog"
	"strings"
	"time"

	"github.com/jewelcase/jewelcase/internal/model"
)

type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

type SitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

type SitemapService struct {
	galleryService *GalleryService
	baseURL        string
}

// NewSitemapService creates a new sitemap service
func NewSitemapService(galleryService *GalleryService, baseURL string) *SitemapService {
	// Ensure baseURL doesn't have trailing slash
	baseURL = strings.TrimSuffix(baseURL, "/")

	return &SitemapService{
		galleryService: galleryService,
		baseURL:        baseURL,
	}
}

// GenerateSitemap lists the home page and the upload and gallery page of every category.
// Gallery pages carry the time of their newest upload as lastmod.
func (s *SitemapService) GenerateSitemap(ctx context.Context) ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  []SitemapURL{{Loc: s.baseURL + "/", ChangeFreq: "monthly", Priority: "1.0"}},
	}

	for _, c := range model.Categories {
		sitemap.URLs = append(sitemap.URLs, SitemapURL{
			Loc:        s.baseURL + "/" + c.String(),
			ChangeFreq: "monthly",
			Priority:   "0.5",
		})

		gallery := SitemapURL{
			Loc:        s.baseURL + "/view/" + c.String(),
			ChangeFreq: "daily",
			Priority:   "0.8",
		}
		images, err := s.galleryService.Gallery(ctx, c)
		if err != nil {
			// Still list the page, just without lastmod
			slog.Warn("failed to read gallery for sitemap", "category", c, "error", err)
		} else if newest, ok := latestUpload(images); ok {
			gallery.LastMod = newest.UTC().Format(time.DateOnly)
		}
		sitemap.URLs = append(sitemap.URLs, gallery)
	}

	output, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	// Add XML header
	result := xml.Header + string(output)
	return []byte(result), nil
}

func latestUpload(images []model.StoredImage) (time.Time, bool) {
	var newest time.Time
	found := false
	for _, img := range images {
		at, ok := img.UploadedAt()
		if ok && at.After(newest) {
			newest = at
			found = true
		}
	}
	return newest, found
}
