package pages

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jewelcase/jewelcase/internal/config"
	"github.com/jewelcase/jewelcase/internal/ctxkeys"
	"github.com/jewelcase/jewelcase/internal/model"
)

func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(ctx, &buf))
	return buf.String()
}

func TestHomeLinksEveryCategory(t *testing.T) {
	html := render(t, context.Background(), Home(model.Categories))

	assert.Contains(t, html, `<a href="/rings">Rings</a>`)
	assert.Contains(t, html, `<a href="/necklace">Necklace</a>`)
	assert.Contains(t, html, `<a href="/earrings">Earrings</a>`)
	assert.Contains(t, html, `<a href="/custom_designs">Custom Designs</a>`)
	assert.Contains(t, html, `<title>Upload an Image | Jewelcase</title>`)
}

func TestLayoutUsesConfiguredAppName(t *testing.T) {
	ctx := ctxkeys.WithConfig(context.Background(), &config.Config{AppName: "Atelier"})

	html := render(t, ctx, NotFound())

	assert.Contains(t, html, `<title>Not Found | Atelier</title>`)
}

func TestUploadFormPostsToCategory(t *testing.T) {
	html := render(t, context.Background(), UploadForm(model.CategoryNecklace))

	assert.Contains(t, html, `action="/upload/necklace"`)
	assert.Contains(t, html, `enctype="multipart/form-data"`)
	assert.Contains(t, html, `name="image" accept="image/*" required`)
	assert.Contains(t, html, `href="/view/necklace"`)
}

func TestUploadSuccessShowsURL(t *testing.T) {
	img := model.NewStoredImage(model.CategoryRings, "1700000000000-photo.png")

	html := render(t, context.Background(), UploadSuccess(img))

	assert.Contains(t, html, `<img class="preview" src="/uploads/rings/1700000000000-photo.png"`)
	assert.Contains(t, html, `<a href="/uploads/rings/1700000000000-photo.png">/uploads/rings/1700000000000-photo.png</a>`)
}

func TestGalleryEscapesNames(t *testing.T) {
	img := model.NewStoredImage(model.CategoryRings, `1-"><script>x</script>.png`)

	html := render(t, context.Background(), Gallery(model.CategoryRings, []model.StoredImage{img}))

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, `alt="1-&#34;&gt;&lt;script&gt;x&lt;/script&gt;.png"`)
}

func TestGalleryEmptyState(t *testing.T) {
	html := render(t, context.Background(), Gallery(model.CategoryEarrings, nil))

	assert.Contains(t, html, "No images uploaded yet.")
	assert.NotContains(t, html, "<img")
}

func TestNavLinksSanitizeUnsafeURLs(t *testing.T) {
	html := render(t, context.Background(), navLinks(
		link{href: "javascript:alert(1)", label: "bad"},
		mainPage,
	))

	assert.Contains(t, html, `<a href="about:invalid#TemplFailedSanitizationURL">bad</a>`)
	assert.Contains(t, html, ` | <a href="/">Back to Main Page</a>`)
	assert.NotContains(t, html, "javascript:")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("client went away") }

func TestRenderReportsWriteErrors(t *testing.T) {
	err := Home(model.Categories).Render(context.Background(), failingWriter{})
	assert.Error(t, err)
}
