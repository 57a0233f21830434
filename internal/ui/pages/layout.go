package pages

//go:generate go run github.com/a-h/templ/cmd/templ@v0.3.960 generate

import (
	"context"

	"github.com/jewelcase/jewelcase/internal/ctxkeys"
	"github.com/jewelcase/jewelcase/internal/model"
)

const defaultAppName = "Jewelcase"

func appName(ctx context.Context) string {
	cfg := ctxkeys.Config(ctx)
	if cfg == nil || cfg.AppName == "" {
		return defaultAppName
	}
	return cfg.AppName
}

type link struct {
	href  string
	label string
}

var mainPage = link{href: "/", label: "Back to Main Page"}

func uploadPagePath(c model.Category) string {
	return "/" + string(c)
}

func uploadPath(c model.Category) string {
	return "/upload/" + string(c)
}

func galleryPath(c model.Category) string {
	return "/view/" + string(c)
}

func uploadLink(c model.Category, prefix string) link {
	return link{href: uploadPagePath(c), label: prefix + c.Label()}
}

func galleryLink(c model.Category) link {
	return link{href: galleryPath(c), label: "View Uploaded " + c.Label()}
}
