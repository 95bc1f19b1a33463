/*
Package config manages TOML config for phrasemine's mining pipeline.

InitConfig handles automatic config file creation and loading with fallback to defaults.
LoadConfig and SaveConfig provide direct fs for runtime changes.
Validate implements the fatal-configuration-error taxonomy the CLI enforces
before any mining pass starts.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

// Config holds the entire config structure.
type Config struct {
	Mining MiningConfig `toml:"mining"`
	Corpus CorpusConfig `toml:"corpus"`
	CLI    CliConfig    `toml:"cli"`
}

// MiningConfig has phrase-extraction and collocation options.
type MiningConfig struct {
	MinFrequency       int `toml:"min_frequency"`
	MaxPhrases         int `toml:"max_phrases"`
	MaxPhraseLength    int `toml:"max_phrase_length"`
	WindowSize         int `toml:"window_size"`
	MinNonterminalSpan int `toml:"min_nonterminal_span"`
}

// CorpusConfig holds suffix-array construction options.
type CorpusConfig struct {
	MaxCmp int `toml:"max_cmp"`
}

// CliConfig holds cli interface options.
type CliConfig struct {
	DefaultMode string `toml:"default_mode"`
}

// MaxPhrasesCeiling is the upper bound on mining.max_phrases, the same
// bound pkg/phrase.Params.Validate enforces; pkg/phrase.RankMap stores
// each rank as a uint16.
const MaxPhrasesCeiling = 32767

// DefaultConfig returns a Config with the §6 defaults.
func DefaultConfig() *Config {
	return &Config{
		Mining: MiningConfig{
			MinFrequency:       0,
			MaxPhrases:         100,
			MaxPhraseLength:    10,
			WindowSize:         10,
			MinNonterminalSpan: 2,
		},
		Corpus: CorpusConfig{
			MaxCmp: 255,
		},
		CLI: CliConfig{
			DefaultMode: "text",
		},
	}
}

// InitConfig loads config from file or creates default if missing.
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, err
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			return nil, err
		}
		log.Debugf("created default config file at: ( %s )", configPath)
		return config, nil
	}
	config, err := LoadConfig(configPath)
	if err != nil {
		log.Warnf("failed to load config, using defaults: %v", err)
		return DefaultConfig(), nil
	}
	return config, nil
}

// LoadConfig loads from a TOML file.
func LoadConfig(configPath string) (*Config, error) {
	var config Config
	if _, err := toml.DecodeFile(configPath, &config); err != nil {
		log.Errorf("failed to decode config file: %v", err)
		return nil, err
	}
	return &config, nil
}

// SaveConfig saves into a TOML file.
func SaveConfig(config *Config, configPath string) error {
	file, err := os.Create(configPath)
	if err != nil {
		log.Errorf("failed to create config file: %v", err)
		return err
	}
	defer file.Close()
	encoder := toml.NewEncoder(file)
	return encoder.Encode(config)
}

// Validate rejects configuration errors before any mining pass starts.
// min_frequency of 0 is clamped to 1 rather than rejected; every other
// violation is fatal.
func (c *Config) Validate() error {
	if c.Mining.MinFrequency == 0 {
		c.Mining.MinFrequency = 1
	}
	if c.Mining.MinFrequency < 1 {
		return fmt.Errorf("config: mining.min_frequency must be >= 1, got %d", c.Mining.MinFrequency)
	}
	if c.Mining.MaxPhrases < 1 || c.Mining.MaxPhrases > MaxPhrasesCeiling {
		return fmt.Errorf("config: mining.max_phrases must be in [1, %d], got %d", MaxPhrasesCeiling, c.Mining.MaxPhrases)
	}
	if c.Mining.MaxPhraseLength < 1 {
		return fmt.Errorf("config: mining.max_phrase_length must be >= 1, got %d", c.Mining.MaxPhraseLength)
	}
	if c.Mining.MaxPhraseLength > c.Corpus.MaxCmp {
		return fmt.Errorf("config: mining.max_phrase_length (%d) must not exceed corpus.max_cmp (%d)", c.Mining.MaxPhraseLength, c.Corpus.MaxCmp)
	}
	if c.Mining.WindowSize < 1 {
		return fmt.Errorf("config: mining.window_size must be >= 1, got %d", c.Mining.WindowSize)
	}
	if c.Mining.MinNonterminalSpan < 1 {
		return fmt.Errorf("config: mining.min_nonterminal_span must be >= 1, got %d", c.Mining.MinNonterminalSpan)
	}
	if c.CLI.DefaultMode != "text" && c.CLI.DefaultMode != "binary" {
		return fmt.Errorf("config: cli.default_mode must be \"text\" or \"binary\", got %q", c.CLI.DefaultMode)
	}
	return nil
}
