// Package cli provides the babelkb command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/babelkb/babelkb/internal/adapters/driven/ai"
	alertwebhook "github.com/babelkb/babelkb/internal/adapters/driven/alert/webhook"
	cachememory "github.com/babelkb/babelkb/internal/adapters/driven/cache/memory"
	"github.com/babelkb/babelkb/internal/adapters/driven/classifier/lingua"
	configfile "github.com/babelkb/babelkb/internal/adapters/driven/config/file"
	"github.com/babelkb/babelkb/internal/adapters/driven/content/dir"
	fuzzymemory "github.com/babelkb/babelkb/internal/adapters/driven/fuzzy/memory"
	"github.com/babelkb/babelkb/internal/adapters/driven/storage/sqlite"
	"github.com/babelkb/babelkb/internal/adapters/driven/translate/deepl"
	"github.com/babelkb/babelkb/internal/adapters/driven/vector/pinecone"
	"github.com/babelkb/babelkb/internal/core/domain"
	"github.com/babelkb/babelkb/internal/core/ports/driven"
	"github.com/babelkb/babelkb/internal/core/ports/driving"
	"github.com/babelkb/babelkb/internal/core/services"
	"github.com/babelkb/babelkb/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
)

// Wired services. Tests inject mocks here through setup helpers;
// production wiring happens once in initServices.
var (
	settings        driven.SettingsStore
	searchService   driving.Searcher
	detectService   driving.LanguageGuesser
	coordinator     *services.Reindex
	translation     *services.Translation
	usageProvider   driven.TranslationProvider
	contentPlatform *dir.Platform
	wired           bool
)

var rootCmd = &cobra.Command{
	Use:   "babelkb",
	Short: "Multilingual knowledge base indexing and search",
	Long: `babelkb keeps per-language search indexes consistent with a
canonical knowledge base: entries are translated, indexed into one
namespace per language, and served through hybrid semantic search with
a lexical fallback.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		logger.SetOutput(cmd.ErrOrStderr())
		return initServices()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.babelkb)")
}

// supportedLanguages is the language catalogue: the source language
// plus every translation target. Backend codes are the translation
// provider's dialect-qualified forms.
func supportedLanguages() []domain.LanguageProfile {
	return []domain.LanguageProfile{
		{Code: "en", DisplayName: "English", BackendCode: "EN", Translatable: false},
		{Code: "es", DisplayName: "Spanish", BackendCode: "ES", Translatable: true},
		{Code: "fr", DisplayName: "French", BackendCode: "FR", Translatable: true},
		{Code: "de", DisplayName: "German", BackendCode: "DE", Translatable: true},
		{Code: "it", DisplayName: "Italian", BackendCode: "IT", Translatable: true},
		{Code: "pt", DisplayName: "Portuguese", BackendCode: "PT-PT", Translatable: true},
		{Code: "ja", DisplayName: "Japanese", BackendCode: "JA", Translatable: true},
	}
}

// initServices wires the full adapter stack. Services whose provider
// credentials are missing stay nil; the commands that need them report
// what is unconfigured. Wiring runs once per process.
func initServices() error {
	if wired {
		return nil
	}

	settingsStore, err := configfile.NewSettingsStore(configDir)
	if err != nil {
		return err
	}
	settings = settingsStore

	catalog, err := sqlite.NewStore("")
	if err != nil {
		return err
	}

	profiles := supportedLanguages()
	retrier := services.NewRetrier()
	alerts := alertwebhook.NewSink(settings.GetString(driven.SettingAlertWebhook))
	cache := cachememory.NewCache()

	// Vector index and retrieval.
	if apiKey := settings.GetString(driven.SettingPineconeAPIKey); apiKey != "" {
		vector, err := pinecone.NewProvider(pinecone.Config{
			APIKey: apiKey,
			Host:   settings.GetString(driven.SettingPineconeHost),
		})
		if err != nil {
			return err
		}

		index, err := services.NewIndex(
			vector, fuzzymemory.NewIndex(), catalog, retrier,
			settings.GetString(driven.SettingEnvPrefix),
		)
		if err != nil {
			return err
		}

		searchService, err = services.NewRetrieval(index, catalog)
		if err != nil {
			return err
		}

		// Translation and the reindex coordinator.
		if authKey := settings.GetString(driven.SettingDeepLAuthKey); authKey != "" {
			provider, err := deepl.NewProvider(deepl.Config{AuthKey: authKey}, cache)
			if err != nil {
				return err
			}
			usageProvider = provider

			translation, err = services.NewTranslation(provider, settings, retrier, profiles)
			if err != nil {
				return err
			}

			coordinator, err = services.NewReindex(translation, index, catalog, settings, alerts, profiles)
			if err != nil {
				return err
			}
		} else {
			logger.Debug("DeepL auth key not configured, translation disabled")
		}
	} else {
		logger.Debug("Pinecone API key not configured, indexing and search disabled")
	}

	// Language detection.
	classifier, err := lingua.NewClassifier(profiles)
	if err != nil {
		return err
	}
	llm, err := ai.CreateAndValidateLLMService(settings)
	if err != nil {
		logger.Warn("Remote classification unavailable: %v", err)
	}
	detectService = services.NewDetector(classifier, llm, settings, profiles)

	// Content platform, optional.
	if contentDir := settings.GetString(driven.SettingContentDir); contentDir != "" {
		platform, err := dir.NewPlatform(contentDir)
		if err != nil {
			return err
		}
		contentPlatform = platform
		if coordinator != nil {
			coordinator.SetEntryLoader(platform.GetEntry)
		}
	}

	wired = true
	return nil
}
