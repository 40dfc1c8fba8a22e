package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/normativa/internal/adapters/driven/ai"
	"github.com/custodia-labs/normativa/internal/adapters/driven/catalog"
	"github.com/custodia-labs/normativa/internal/adapters/driven/config/file"
	"github.com/custodia-labs/normativa/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/normativa/internal/core/domain"
	"github.com/custodia-labs/normativa/internal/core/ports/driving"
	"github.com/custodia-labs/normativa/internal/core/services"
	"github.com/custodia-labs/normativa/internal/extractors"
	"github.com/custodia-labs/normativa/internal/postprocessors"
)

// Services used by the commands. They are built from the config file on
// first use; tests assign doubles and replace the wiring functions.
var (
	settingsService driving.SettingsService
	ingestService   driving.IngestService
	askService      driving.AskService
	evalService     driving.EvalService
	retriever       driving.Retriever
	appSettings     *domain.AppSettings
)

var (
	wireSettings = wireSettingsService
	wireServices = wireAll
)

// currentSettings returns the loaded settings, or the defaults before wiring.
func currentSettings() domain.AppSettings {
	if appSettings != nil {
		return *appSettings
	}
	return domain.DefaultAppSettings()
}

func wireSettingsService() error {
	if settingsService != nil {
		return nil
	}
	store, err := file.NewConfigStore(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	settingsService = services.NewSettingsService(store)
	return nil
}

// wireAll builds every service the query and ingestion commands use. The
// retriever starts without an index; commands load it when they need it.
func wireAll(_ context.Context) error {
	if err := wireSettings(); err != nil {
		return err
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}
	if err := settingsService.Validate(settings); err != nil {
		return fmt.Errorf("invalid settings in %s: %w", configPath, err)
	}
	appSettings = settings

	table := sqlite.NewChunkTable(settings.Paths.ChunkTable)

	if ingestService == nil {
		svc, err := buildIngestService(settings, table)
		if err != nil {
			return err
		}
		ingestService = svc
	}

	if retriever == nil {
		retriever = services.NewPendingRetriever(table)
	}

	if askService == nil {
		prompts, err := file.NewPromptStore(settings.Paths.PromptsDir)
		if err != nil {
			return fmt.Errorf("open prompts: %w", err)
		}
		askService = services.NewAskService(
			retriever,
			ai.NewFactory(settings.LLM, settingsService.APIKey),
			services.NewContextFormatter(prompts, settings.Assistant.Institution),
			ai.ChatOptions(settings.LLM),
		)
	}

	if evalService == nil {
		evalService = services.NewEvalService(askService, settings.Eval.RatePerSecond)
	}
	return nil
}

func buildIngestService(settings *domain.AppSettings, table *sqlite.ChunkTable) (*services.IngestService, error) {
	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := registry.BuildPipeline(postprocessors.DefaultOrder, map[string]map[string]any{
		"normaliser": {"min_chars": settings.Ingest.MinChars},
		"chunker": {
			"chunk_size": settings.Ingest.ChunkSize,
			"overlap":    settings.Ingest.Overlap,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	return services.NewIngestService(
		catalog.NewCSVLoader(settings.Paths.Catalog),
		extractors.NewDirSource(settings.Paths.RawDir, settings.Ingest.RawGlob),
		extractors.NewDefaultRegistry(settings.Ingest.PDFToText),
		pipeline,
		table,
		services.WithWorkers(settings.Ingest.Workers),
	), nil
}

// loadIndex builds the retrieval index from the chunk table.
func loadIndex(ctx context.Context) error {
	if retriever == nil {
		return errors.New("retriever not configured")
	}
	if err := retriever.Reload(ctx); err != nil {
		return fmt.Errorf("%w (run 'normativa ingest' first)", err)
	}
	return nil
}
