package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/jewelcase/jewelcase/cmd/jewelcase/cmd"
	"github.com/jewelcase/jewelcase/internal/app"
	"github.com/jewelcase/jewelcase/internal/config"
	"github.com/jewelcase/jewelcase/internal/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "jewelcase",
		Short:        "Manage stored jewelry images from the command line",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.CategoriesCmd())
	rootCmd.AddCommand(cmd.ListCmd(loadEnv))
	rootCmd.AddCommand(cmd.ImportCmd(loadEnv))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadEnv uses the same configuration and storage as the web server
func loadEnv(ctx context.Context) (*cmd.Env, error) {
	cfg := config.Load()

	logger.Init(cfg.IsDevelopment(), cfg.SentryDSN)

	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return &cmd.Env{
		Gallery:       a.GalleryService,
		MaxUploadSize: cfg.MaxUploadSize,
	}, nil
}
