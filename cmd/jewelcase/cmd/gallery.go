package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jewelcase/jewelcase/internal/model"
	"github.com/jewelcase/jewelcase/internal/service"
	"github.com/jewelcase/jewelcase/internal/validation"
)

// Env is what the commands need from the configured application
type Env struct {
	Gallery       *service.GalleryService
	MaxUploadSize int64
}

type EnvLoader func(ctx context.Context) (*Env, error)

func CategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Print the available categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, c := range model.Categories {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", c, c.Label())
			}
			return nil
		},
	}
}

func ListCmd(load EnvLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "list <category>",
		Short: "Print the URL of every image stored in a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := model.ParseCategory(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q", err, args[0])
			}

			env, err := load(cmd.Context())
			if err != nil {
				return err
			}

			images, err := env.Gallery.Gallery(cmd.Context(), category)
			if err != nil {
				return err
			}

			if len(images) == 0 {
				cmd.PrintErrln("no images uploaded yet")
				return nil
			}
			for _, img := range images {
				fmt.Fprintln(cmd.OutOrStdout(), img.URL())
			}
			return nil
		},
	}
}

func ImportCmd(load EnvLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "import <category> <file>...",
		Short: "Store local image files in a category, as if uploaded through the form",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := model.ParseCategory(args[0])
			if err != nil {
				return fmt.Errorf("%w: %q", err, args[0])
			}

			env, err := load(cmd.Context())
			if err != nil {
				return err
			}

			for _, path := range args[1:] {
				img, err := importFile(cmd.Context(), env, category, path)
				if err != nil {
					return fmt.Errorf("import %s: %w", path, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), img.URL())
			}
			return nil
		},
	}
}

func importFile(ctx context.Context, env *Env, category model.Category, path string) (*model.StoredImage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return nil, err
	}

	contentType, err := validation.ValidateContent(file, info.Size(), validation.ImageConstraints(env.MaxUploadSize))
	if err != nil {
		return nil, err
	}

	return env.Gallery.Upload(ctx, category, filepath.Base(path), contentType, file)
}
