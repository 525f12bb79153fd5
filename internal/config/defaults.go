// Package config provides configuration loading and defaults for driftwatch.
package config

// DefaultConfigDir is the default location for driftwatch configuration.
const DefaultConfigDir = "~/.config/driftwatch"

// DefaultDataDir is the default location for stored runs.
const DefaultDataDir = "~/.config/driftwatch/data"

// DefaultDBName is the filename for the report history database.
const DefaultDBName = "driftwatch.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultDrift holds the default statistical parameters: a 7-run baseline
// compared against the last 3 runs at the 5% significance level.
var DefaultDrift = Drift{
	BaselineRuns: 7,
	CurrentRuns:  3,
	Significance: 0.05,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 80,
}

// DefaultModels covers the common OpenAI-compatible endpoints. Models whose
// key variable is unset are skipped at run time.
var DefaultModels = []Model{
	{
		Name:      "gpt4o",
		APIKeyEnv: "OPENAI_API_KEY",
		ModelID:   "gpt-4o",
		MaxTokens: 1000,
	},
	{
		Name:      "mistral-small",
		BaseURL:   "https://api.mistral.ai/v1",
		APIKeyEnv: "MISTRAL_API_KEY",
		ModelID:   "mistral-small-latest",
		MaxTokens: 1000,
	},
	{
		Name:      "llama-local",
		BaseURL:   "http://localhost:8000/v1",
		ModelID:   "llama-3.1-8b-instruct",
		MaxTokens: 1000,
	},
}
