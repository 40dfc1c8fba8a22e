package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/normativa/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure paths, ingestion, retrieval and generation settings.

Settings live in the TOML file given by --config. API keys are read from the
environment (or the .env file) before the config file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current settings to the config file",
	Long: `Writes every setting, defaults included, to the config file so it can be
edited by hand. Existing values are kept.`,
	RunE: runSettingsInit,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the generation provider",
	Long:  `Interactively select the generation provider, its model and API key.`,
	RunE:  runSettingsLLM,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsInitCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func loadSettingsForCommand() (*domain.AppSettings, error) {
	if err := wireSettings(); err != nil {
		return nil, err
	}
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettingsForCommand()
	if err != nil {
		return err
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Paths]")
	cmd.Printf("  Catalog: %s\n", settings.Paths.Catalog)
	cmd.Printf("  Raw directory: %s\n", settings.Paths.RawDir)
	cmd.Printf("  Chunk table: %s\n", settings.Paths.ChunkTable)
	cmd.Printf("  Prompts: %s\n", settings.Paths.PromptsDir)
	cmd.Println()

	cmd.Println("[Ingest]")
	cmd.Printf("  Chunk size: %d\n", settings.Ingest.ChunkSize)
	cmd.Printf("  Overlap: %d\n", settings.Ingest.Overlap)
	cmd.Printf("  Min chars: %d\n", settings.Ingest.MinChars)
	cmd.Printf("  Workers: %d\n", settings.Ingest.Workers)
	cmd.Printf("  Raw glob: %s\n", settings.Ingest.RawGlob)
	cmd.Printf("  pdftotext: %s\n", settings.Ingest.PDFToText)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  K: %d\n", settings.Retrieval.K)
	cmd.Println()

	cmd.Println("[LLM]")
	cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
	model := settings.LLM.Model
	if model == "" {
		model = "(provider default)"
	}
	cmd.Printf("  Model: %s\n", model)
	if settings.LLM.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		if settings.LLM.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.LLM.APIKey))
		} else {
			cmd.Printf("  API Key: (not set, export %s)\n", settings.LLM.Provider.APIKeyEnv())
		}
	}
	cmd.Printf("  Temperature: %g\n", settings.LLM.Temperature)
	cmd.Printf("  Max tokens: %d\n", settings.LLM.MaxTokens)
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Println()

	cmd.Println("[Eval]")
	cmd.Printf("  Rate: %g/s\n", settings.Eval.RatePerSecond)
	cmd.Println()

	cmd.Println("[Assistant]")
	cmd.Printf("  Institution: %s\n", settings.Assistant.Institution)
	cmd.Println()

	if err := settingsService.Validate(settings); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Edit the config file or run 'normativa settings llm' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsInit(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettingsForCommand()
	if err != nil {
		return err
	}
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Printf("Settings written to %s\n", configPath)
	return nil
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettingsForCommand()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	cmd.Println("Select LLM Provider")
	providers := domain.AllAIProviders
	current := 1
	for i, p := range providers {
		if p == settings.LLM.Provider {
			current = i + 1
		}
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Printf("\nEnter choice [%d]: ", current)
	idx := parseChoice(readLine(reader), len(providers), current)
	selected := providers[idx-1]

	model := ""
	if selected == settings.LLM.Provider {
		model = settings.LLM.Model
	}
	cmd.Printf("Enter model name [%s]: ", displayModel(model))
	if input := readLine(reader); input != "" {
		model = input
	}

	if selected != settings.LLM.Provider {
		settings.LLM.BaseURL = ""
		settings.LLM.APIKey = ""
	}
	settings.LLM.Provider = selected
	settings.LLM.Model = model

	if selected.RequiresAPIKey() {
		if env := strings.TrimSpace(os.Getenv(selected.APIKeyEnv())); env != "" {
			// Save never persists a key that came from the environment.
			settings.LLM.APIKey = env
			cmd.Printf("Using API key from %s.\n", selected.APIKeyEnv())
		} else {
			cmd.Printf("Enter API key (or leave empty to use %s): ", selected.APIKeyEnv())
			if key := readPassword(cmd.InOrStdin(), reader); key != "" {
				settings.LLM.APIKey = key
			}
			cmd.Println()
		}
	}

	if err := settingsService.Validate(settings); err != nil {
		return fmt.Errorf("invalid LLM configuration: %w", err)
	}
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", selected.Description(), displayModel(model))
	return nil
}

func displayModel(model string) string {
	if model == "" {
		return "provider default"
	}
	return model
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is the terminal, otherwise a line.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
