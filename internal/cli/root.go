package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"lovable-tutor/internal/app"
	"lovable-tutor/internal/config"
)

var flagEnvFile string

// Swapped in tests.
var (
	buildApp     = defaultBuildApp
	openProgress = defaultOpenProgress
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tutor",
		Short:         "Practice English with an AI tutor from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flagEnvFile, "env", ".env", "dotenv file to load before reading config")

	cmd.AddCommand(newChatCmd())
	cmd.AddCommand(newDashboardCmd())
	cmd.AddCommand(newVocabCmd())
	cmd.AddCommand(newLearnCmd())
	cmd.AddCommand(newProgressCmd())

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if flagEnvFile != "" {
		if err := godotenv.Load(flagEnvFile); err != nil {
			log.Printf("Warning: could not load %s: %v", flagEnvFile, err)
		}
	}
	return config.Parse()
}

func defaultBuildApp(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.Build(ctx, cfg)
}

func defaultOpenProgress(ctx context.Context) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return app.OpenProgress(ctx, cfg)
}
