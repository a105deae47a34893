package config

// Config holds the configuration of the application
// Use cmd.NewConfig to create a new instance
type Config struct {
	Embeddings EmbeddingsConfig `mapstructure:"embeddings"`
	Matching   MatchingConfig   `mapstructure:"matching"`
	Store      StoreConfig      `mapstructure:"store"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
}

// EmbeddingsConfig configures the embedding provider. Service is either
// "http" for a self-hosted embedding server or "openai".
type EmbeddingsConfig struct {
	Service        string `mapstructure:"service"`
	URL            string `mapstructure:"url"`
	Dimensions     int    `mapstructure:"dimensions"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	// OpenAIAPIKey is loaded from ENV not config file.
	OpenAIAPIKey string `mapstructure:"openai_api_key"`
}

// MatchingConfig configures the recommendation strategy. Strategy is either
// "advisory" (ranked top-K suggestions) or "assignment" (bind each student
// to a single mentor under MentorCapacity).
type MatchingConfig struct {
	Strategy       string `mapstructure:"strategy"`
	TopK           int    `mapstructure:"top_k"`
	MentorCapacity int    `mapstructure:"mentor_capacity"`
}

type StoreConfig struct {
	Type     string         `mapstructure:"type"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

type ServerConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}
