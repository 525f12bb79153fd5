package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level driftwatch configuration.
type Config struct {
	DataDir string  `mapstructure:"data_dir"`
	Models  []Model `mapstructure:"models"`
	Drift   Drift   `mapstructure:"drift"`
	Output  Output  `mapstructure:"output"`
}

// Model describes one endpoint to probe. All fields except Name are
// optional: an empty BaseURL means the official OpenAI API, an empty
// ModelID falls back to Name.
type Model struct {
	Name      string `mapstructure:"name"`
	BaseURL   string `mapstructure:"base_url"`
	APIKeyEnv string `mapstructure:"api_key_env"`
	ModelID   string `mapstructure:"model_id"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// APIKey resolves the model's key from the configured environment variable.
func (m Model) APIKey() string {
	if m.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(m.APIKeyEnv)
}

// Drift defines the statistical parameters for drift detection.
type Drift struct {
	BaselineRuns int     `mapstructure:"baseline_runs"`
	CurrentRuns  int     `mapstructure:"current_runs"`
	Significance float64 `mapstructure:"significance"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	Width int  `mapstructure:"width"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Set defaults.
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("drift.baseline_runs", DefaultDrift.BaselineRuns)
	v.SetDefault("drift.current_runs", DefaultDrift.CurrentRuns)
	v.SetDefault("drift.significance", DefaultDrift.Significance)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		configDir := expandPath(DefaultConfigDir)
		v.AddConfigPath(configDir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Only return error for problems other than file not found.
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Apply the default model set if none configured.
	if len(cfg.Models) == 0 {
		cfg.Models = DefaultModels
	}

	// Expand paths.
	cfg.DataDir = expandPath(cfg.DataDir)

	return &cfg, nil
}

// DBPath returns the full path to the report history database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
