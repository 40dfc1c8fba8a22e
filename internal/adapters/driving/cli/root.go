// Package cli implements the normativa command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/normativa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/normativa/internal/logger"
)

// defaultEnvFile is loaded when present; --env-file makes it mandatory.
const defaultEnvFile = ".env"

var version = "dev"

var (
	configPath string
	envFile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "normativa",
	Short: "Grounded answers over institutional regulations",
	Long: `normativa ingests a catalog of regulations into a chunk table and answers
questions with citations drawn from it.

Typical workflow:
  normativa ingest                       # build data/processed/chunks.db
  normativa ask "¿Cómo apelo una nota?"  # answer with references
  normativa serve --watch                # HTTP API on :8000`,
	SilenceUsage:      true,
	PersistentPreRunE: runRootPreRun,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", file.DefaultConfigFile, "path to the TOML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", defaultEnvFile, "dotenv file with provider API keys")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func runRootPreRun(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	// Variables already set in the environment win over the file.
	if err := godotenv.Load(envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("env-file") {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", envFile, err)
	}
	logger.Debug("Loaded environment from %s", envFile)
	return nil
}
