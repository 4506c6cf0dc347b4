package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Configuration provides type-safe access to pipeline settings.
type Configuration struct {
	viper *viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("chunk_length_seconds", 60)
	v.SetDefault("pre_padding_seconds", 10)
	v.SetDefault("post_padding_seconds", 10)
	v.SetDefault("retry_attempts", 3)
	v.SetDefault("retry_backoff_seconds", 2)
	v.SetDefault("poll_interval_seconds", 3)
	v.SetDefault("poll_timeout_seconds", 300)
	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com")
}

// New creates a Configuration with defaults and environment variable
// bindings. Settings map to GOALCUT_* variables; the API key stays on the
// conventional GEMINI_API_KEY.
func New() *Configuration {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("GOALCUT")
	v.AutomaticEnv()
	v.BindEnv("chunk_length_seconds", "GOALCUT_CHUNK_LENGTH_SECONDS")
	v.BindEnv("pre_padding_seconds", "GOALCUT_PRE_PADDING_SECONDS")
	v.BindEnv("post_padding_seconds", "GOALCUT_POST_PADDING_SECONDS")
	v.BindEnv("retry_attempts", "GOALCUT_RETRY_ATTEMPTS")
	v.BindEnv("retry_backoff_seconds", "GOALCUT_RETRY_BACKOFF_SECONDS")
	v.BindEnv("poll_interval_seconds", "GOALCUT_POLL_INTERVAL_SECONDS")
	v.BindEnv("poll_timeout_seconds", "GOALCUT_POLL_TIMEOUT_SECONDS")
	v.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("gemini.model", "GEMINI_MODEL")
	v.BindEnv("gemini.base_url", "GEMINI_BASE_URL")
	v.BindEnv("gemini.allowed_hosts", "GEMINI_ALLOWED_HOSTS")

	return &Configuration{viper: v}
}

// NewFromFile creates a Configuration from a config file on top of the same
// defaults and env bindings.
func NewFromFile(configFile string) (*Configuration, error) {
	c := New()
	c.viper.SetConfigFile(configFile)
	if err := c.viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}
	return c, nil
}

func (c *Configuration) GetChunkLengthSeconds() int  { return c.viper.GetInt("chunk_length_seconds") }
func (c *Configuration) GetPrePaddingSeconds() int   { return c.viper.GetInt("pre_padding_seconds") }
func (c *Configuration) GetPostPaddingSeconds() int  { return c.viper.GetInt("post_padding_seconds") }
func (c *Configuration) GetRetryAttempts() int       { return c.viper.GetInt("retry_attempts") }
func (c *Configuration) GetRetryBackoffSeconds() int { return c.viper.GetInt("retry_backoff_seconds") }
func (c *Configuration) GetPollIntervalSeconds() int { return c.viper.GetInt("poll_interval_seconds") }
func (c *Configuration) GetPollTimeoutSeconds() int  { return c.viper.GetInt("poll_timeout_seconds") }
func (c *Configuration) GetGeminiAPIKey() string     { return c.viper.GetString("gemini.api_key") }
func (c *Configuration) GetGeminiModel() string      { return c.viper.GetString("gemini.model") }
func (c *Configuration) GetGeminiBaseURL() string    { return c.viper.GetString("gemini.base_url") }

// GetGeminiAllowedHosts returns extra hosts allowed for the Gemini base URL.
func (c *Configuration) GetGeminiAllowedHosts() []string {
	return c.viper.GetStringSlice("gemini.allowed_hosts")
}
