package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader loads configuration from file and environment variables.
type Loader interface {
	// Load loads configuration with priority (highest to lowest):
	// environment variables (APPLYCRYPTO_*) -> config file -> defaults.
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a configuration loader rooted at the target project.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".applycrypto")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	v.SetEnvPrefix("APPLYCRYPTO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	raw := v.AllSettings()
	Migrate(raw)
	for k, val := range raw {
		v.Set(k, val)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.TargetProject == "" {
		cfg.TargetProject = l.rootDir
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("schema_version", d.SchemaVersion)
	v.SetDefault("source_file_types", d.SourceFileTypes)
	v.SetDefault("exclude_dirs", d.ExcludeDirs)
	v.SetDefault("exclude_files", d.ExcludeFiles)
	v.SetDefault("framework_type", string(d.FrameworkType))
	v.SetDefault("sql_wrapping_type", string(d.SqlWrappingType))
	v.SetDefault("modification_type", string(d.ModificationType))
	v.SetDefault("max_tokens_per_batch", d.MaxTokensPerBatch)
	v.SetDefault("context_file_token_cap", d.ContextFileTokenCap)
	v.SetDefault("llm_fallback_extraction", d.LLMFallbackExtraction)

	v.SetDefault("cache.parser_schema_version", d.Cache.ParserSchemaVersion)
	v.SetDefault("cache.max_age_days", d.Cache.MaxAgeDays)
	v.SetDefault("cache.max_size_mb", d.Cache.MaxSizeMB)
	v.SetDefault("cache.in_memory_entries", d.Cache.InMemoryEntries)

	v.SetDefault("graph.max_call_depth", d.Graph.MaxCallDepth)

	v.SetDefault("engine.worker_count", d.Engine.WorkerCount)
	v.SetDefault("engine.parse_timeout_secs", d.Engine.ParseTimeoutSecs)
	v.SetDefault("engine.parse_failure_abort_pct", d.Engine.ParseFailureAbortPct)
}

// LoadFromDir is a convenience function that creates a loader and loads config.
func LoadFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
