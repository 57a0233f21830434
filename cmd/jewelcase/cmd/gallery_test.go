package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jewelcase/jewelcase/internal/service"
	"github.com/jewelcase/jewelcase/internal/storage"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{1}, 32)...)

func testLoader(t *testing.T) (EnvLoader, string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewLocalStorage(root)
	require.NoError(t, err)

	env := &Env{
		Gallery:       service.NewGalleryService(store, func() time.Time { return time.UnixMilli(42) }),
		MaxUploadSize: 1 << 20,
	}
	return func(context.Context) (*Env, error) { return env, nil }, root
}

func run(t *testing.T, load EnvLoader, args ...string) (string, string, error) {
	t.Helper()
	root := &cobra.Command{Use: "jewelcase", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(CategoriesCmd(), ListCmd(load), ImportCmd(load))

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCategoriesCmd(t *testing.T) {
	load, _ := testLoader(t)

	out, _, err := run(t, load, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "rings\tRings\n")
	assert.Contains(t, out, "custom_designs\tCustom Designs\n")
}

func TestImportThenList(t *testing.T) {
	load, root := testLoader(t)
	src := filepath.Join(t.TempDir(), "band.png")
	require.NoError(t, os.WriteFile(src, pngBytes, 0o644))

	out, _, err := run(t, load, "import", "rings", src)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/rings/42-band.png\n", out)

	data, err := os.ReadFile(filepath.Join(root, "rings", "42-band.png"))
	require.NoError(t, err)
	assert.Equal(t, pngBytes, data)

	out, _, err = run(t, load, "list", "rings")
	require.NoError(t, err)
	assert.Equal(t, "/uploads/rings/42-band.png\n", out)
}

func TestListEmptyCategory(t *testing.T) {
	load, _ := testLoader(t)

	out, errOut, err := run(t, load, "list", "necklace")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "no images uploaded yet")
}

func TestImportRejectsNonImage(t *testing.T) {
	load, root := testLoader(t)
	src := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello"), 0o644))

	_, _, err := run(t, load, "import", "earrings", src)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported file type"), err.Error())

	_, statErr := os.Stat(filepath.Join(root, "earrings"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestUnknownCategoryArgument(t *testing.T) {
	load, _ := testLoader(t)

	_, _, err := run(t, load, "list", "bracelets")
	assert.ErrorContains(t, err, "unknown category")
}
