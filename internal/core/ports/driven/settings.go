package driven

// Well-known settings keys.
const (
	// SettingEnvPrefix prefixes every namespace so test and production
	// deployments never share index state (e.g., "dev-").
	SettingEnvPrefix = "index.env_prefix"

	// SettingTranslationEnabled is the translation kill-switch.
	SettingTranslationEnabled = "translation.enabled"

	// SettingUnitCost is the per-character translation price.
	SettingUnitCost = "translation.unit_cost"

	// SettingConfirmReindex gates content edits behind a human
	// accept/skip decision.
	SettingConfirmReindex = "reindex.confirm"

	// SettingClassifierEnabled is the remote-classification kill-switch.
	SettingClassifierEnabled = "detect.llm_enabled"

	// SettingLLMBackend selects the completion backend for remote
	// classification: openai, anthropic or ollama.
	SettingLLMBackend = "detect.llm_backend"

	// SettingLLMModel overrides the backend's default model.
	SettingLLMModel = "detect.llm_model"

	// SettingLLMAPIKey authenticates the completion backend.
	SettingLLMAPIKey = "detect.llm_api_key"

	// SettingLLMBaseURL overrides the backend's default endpoint.
	SettingLLMBaseURL = "detect.llm_base_url"

	// SettingPineconeAPIKey authenticates the vector index.
	SettingPineconeAPIKey = "pinecone.api_key"

	// SettingPineconeHost is the vector index host URL.
	SettingPineconeHost = "pinecone.host"

	// SettingDeepLAuthKey authenticates the translation provider.
	SettingDeepLAuthKey = "deepl.auth_key"

	// SettingAlertWebhook receives operator failure reports.
	SettingAlertWebhook = "alert.webhook_url"

	// SettingContentDir is the directory holding canonical entry files.
	SettingContentDir = "content.dir"
)

// SettingsStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and type conversion.
type SettingsStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetBool retrieves a boolean configuration value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// GetFloat retrieves a float configuration value.
	// Returns 0 if key doesn't exist or isn't numeric.
	GetFloat(key string) float64

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
