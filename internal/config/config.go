// Package config holds the typed configuration for an applycrypto run.
// It follows the teacher's layering: a plain struct with yaml/mapstructure
// tags, a Default() constructor, a viper-backed Loader, and a Validate
// pass that aggregates every violation instead of failing on the first.
package config

// SchemaVersion is bumped whenever a breaking change is made to the
// on-disk config shape. Migrate forward-converts older files instead of
// rejecting them.
const SchemaVersion = 2

// FrameworkType selects the endpoint-detection and layer-tagging strategy.
type FrameworkType string

const (
	FrameworkSpringMVC FrameworkType = "spring_mvc"
	FrameworkAnyframe  FrameworkType = "anyframe"
)

// SqlWrappingType selects how SQL is embedded in the target project.
type SqlWrappingType string

const (
	WrappingMyBatis      SqlWrappingType = "mybatis"
	WrappingJDBC         SqlWrappingType = "jdbc"
	WrappingJPA          SqlWrappingType = "jpa"
	WrappingMyBatisCCS   SqlWrappingType = "mybatis_ccs"
	WrappingMyBatisBatch SqlWrappingType = "mybatis_ccs_batch"
)

// ModificationType selects the context-batching grouping strategy.
type ModificationType string

const (
	ModControllerOrService ModificationType = "ControllerOrService"
	ModServiceImplOrBiz    ModificationType = "ServiceImplOrBiz"
	ModTypeHandler         ModificationType = "TypeHandler"
)

// Config is the complete applycrypto configuration.
type Config struct {
	SchemaVersion int `yaml:"schema_version" mapstructure:"schema_version"`

	TargetProject    string           `yaml:"target_project" mapstructure:"target_project"`
	SourceFileTypes  []string         `yaml:"source_file_types" mapstructure:"source_file_types"`
	ExcludeDirs      []string         `yaml:"exclude_dirs" mapstructure:"exclude_dirs"`
	ExcludeFiles     []string         `yaml:"exclude_files" mapstructure:"exclude_files"`
	FrameworkType    FrameworkType    `yaml:"framework_type" mapstructure:"framework_type"`
	SqlWrappingType  SqlWrappingType  `yaml:"sql_wrapping_type" mapstructure:"sql_wrapping_type"`
	ModificationType ModificationType `yaml:"modification_type" mapstructure:"modification_type"`
	AccessTables     []TargetTable    `yaml:"access_tables" mapstructure:"access_tables"`

	MaxTokensPerBatch   int `yaml:"max_tokens_per_batch" mapstructure:"max_tokens_per_batch"`
	ContextFileTokenCap int `yaml:"context_file_token_cap" mapstructure:"context_file_token_cap"`

	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
	Graph  GraphConfig  `yaml:"graph" mapstructure:"graph"`
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`

	// LLMFallbackExtraction enables the optional, last-resort LLM-backed
	// SQL extraction for files known to touch a target table but that
	// yield nothing under heuristic extraction. The LLM provider itself
	// is an external collaborator (spec §6) — this only toggles whether
	// SqlExtractor consults it.
	LLMFallbackExtraction bool `yaml:"llm_fallback_extraction" mapstructure:"llm_fallback_extraction"`
}

// TargetTable is one sensitive table the run is scoped to.
type TargetTable struct {
	TableName string         `yaml:"table_name" mapstructure:"table_name"`
	Columns   []TargetColumn `yaml:"columns" mapstructure:"columns"`
}

// TargetColumn is one configured sensitive column.
type TargetColumn struct {
	Name       string `yaml:"name" mapstructure:"name"`
	CryptoCode string `yaml:"crypto_code" mapstructure:"crypto_code"`
	NewColumn  bool   `yaml:"new_column" mapstructure:"new_column"`
}

// CacheConfig configures the content-hash cache store.
type CacheConfig struct {
	ParserSchemaVersion string  `yaml:"parser_schema_version" mapstructure:"parser_schema_version"`
	MaxAgeDays          int     `yaml:"max_age_days" mapstructure:"max_age_days"`
	MaxSizeMB           float64 `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	InMemoryEntries     int     `yaml:"in_memory_entries" mapstructure:"in_memory_entries"`
}

// GraphConfig configures call-tree materialization (spec §4.6).
type GraphConfig struct {
	MaxCallDepth int `yaml:"max_call_depth" mapstructure:"max_call_depth"`
}

// EngineConfig configures concurrency and timeouts (spec §5).
type EngineConfig struct {
	WorkerCount       int `yaml:"worker_count" mapstructure:"worker_count"`
	ParseTimeoutSecs  int `yaml:"parse_timeout_secs" mapstructure:"parse_timeout_secs"`
	ParseFailureAbortPct float64 `yaml:"parse_failure_abort_pct" mapstructure:"parse_failure_abort_pct"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		SchemaVersion: SchemaVersion,
		SourceFileTypes: []string{
			".java", ".xml",
		},
		ExcludeDirs: []string{
			".git", ".svn", ".hg",
			"target", "build", "out", "bin",
			".idea", ".vscode", ".settings",
			"node_modules",
			".gradle", ".mvn",
		},
		ExcludeFiles:        []string{},
		FrameworkType:       FrameworkSpringMVC,
		SqlWrappingType:     WrappingMyBatis,
		ModificationType:    ModControllerOrService,
		AccessTables:        nil,
		MaxTokensPerBatch:   20000,
		ContextFileTokenCap: 80000,
		Cache: CacheConfig{
			ParserSchemaVersion: "1",
			MaxAgeDays:          30,
			MaxSizeMB:           512,
			InMemoryEntries:     2048,
		},
		Graph: GraphConfig{
			MaxCallDepth: 40,
		},
		Engine: EngineConfig{
			WorkerCount:          0, // 0 => runtime.NumCPU()
			ParseTimeoutSecs:     30,
			ParseFailureAbortPct: 0,
		},
		LLMFallbackExtraction: false,
	}
}
