// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the entire application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Project  ProjectConfig  `mapstructure:"project" yaml:"project"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Baseline BaselineConfig `mapstructure:"baseline" yaml:"baseline"`
	History  HistoryConfig  `mapstructure:"history" yaml:"history"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// ServerConfig holds the connection details for the analysis platform whose
// issue search API the verifier queries.
type ServerConfig struct {
	URL               string        `mapstructure:"url" yaml:"url"`
	Token             string        `mapstructure:"token" yaml:"-"`
	PageSize          int           `mapstructure:"page_size" yaml:"page_size"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// ProjectConfig identifies the project under verification and the source
// layout handed to the batch analysis, which gets no build information.
type ProjectConfig struct {
	Key            string   `mapstructure:"key" yaml:"key"`
	Name           string   `mapstructure:"name" yaml:"name"`
	Location       string   `mapstructure:"location" yaml:"location"`
	SourceDirs     []string `mapstructure:"source_dirs" yaml:"source_dirs"`
	TestDirs       []string `mapstructure:"test_dirs" yaml:"test_dirs"`
	SourceVersion  string   `mapstructure:"source_version" yaml:"source_version"`
	SourceEncoding string   `mapstructure:"source_encoding" yaml:"source_encoding"`
}

// AnalysisConfig configures the two external analysis invocations and the
// dump files exchanged with the differential plugin.
type AnalysisConfig struct {
	// FullCommand runs the build-tool analysis with complete semantic
	// information (bytecode, dependencies). BatchCommand runs the plain
	// scanner in batch mode without any of it.
	FullCommand  string   `mapstructure:"full_command" yaml:"full_command"`
	FullArgs     []string `mapstructure:"full_args" yaml:"full_args"`
	BatchCommand string   `mapstructure:"batch_command" yaml:"batch_command"`
	BatchArgs    []string `mapstructure:"batch_args" yaml:"batch_args"`

	// DumpDir receives the issue dump of the full run; the batch run reads
	// it back as its reference. DifferencesDir receives the plugin's raw
	// difference counts, one file per run.
	DumpDir        string `mapstructure:"dump_dir" yaml:"dump_dir"`
	BatchDumpDir   string `mapstructure:"batch_dump_dir" yaml:"batch_dump_dir"`
	DifferencesDir string `mapstructure:"differences_dir" yaml:"differences_dir"`

	FailFast bool `mapstructure:"fail_fast" yaml:"fail_fast"`

	// Skip bypasses both invocations, for servers that were analyzed out of
	// band. Collection and assertions still run.
	Skip bool `mapstructure:"skip" yaml:"skip"`
}

// BaselineConfig points at the checked-in ground truth the scenario
// compares against.
type BaselineConfig struct {
	CountFile  string `mapstructure:"count_file" yaml:"count_file"`
	ReportFile string `mapstructure:"report_file" yaml:"report_file"`
}

// HistoryConfig enables the optional Postgres record of verification runs.
// An empty URL disables it.
type HistoryConfig struct {
	DatabaseURL string `mapstructure:"database_url" yaml:"-"`
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "autoscan-cli")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)

	// -- Server --
	v.SetDefault("server.url", "http://localhost:9000")
	v.SetDefault("server.page_size", 500)
	v.SetDefault("server.timeout", "60s")
	v.SetDefault("server.requests_per_second", 10.0)

	// -- Project --
	v.SetDefault("project.source_dirs", []string{"src/main/java"})
	v.SetDefault("project.test_dirs", []string{"src/test/java"})
	v.SetDefault("project.source_version", "17")
	v.SetDefault("project.source_encoding", "UTF-8")

	// -- Analysis --
	v.SetDefault("analysis.full_command", "mvn")
	v.SetDefault("analysis.batch_command", "analysis-scanner")
	v.SetDefault("analysis.dump_dir", "target/actual/full")
	v.SetDefault("analysis.batch_dump_dir", "target/actual/batch")
	v.SetDefault("analysis.differences_dir", "target")
	v.SetDefault("analysis.fail_fast", true)
	v.SetDefault("analysis.skip", false)

	// -- Baseline --
	v.SetDefault("baseline.count_file", "baselines/differences.txt")
	v.SetDefault("baseline.report_file", "baselines/diff-by-rules.txt")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Bind environment variables for sensitive data.
	v.BindEnv("server.token", "AUTOSCAN_SERVER_TOKEN")
	v.BindEnv("history.database_url", "AUTOSCAN_HISTORY_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Server.Token == "" {
		cfg.Server.Token = os.Getenv("AUTOSCAN_SERVER_TOKEN")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is a required configuration field")
	}
	if c.Server.PageSize <= 0 {
		return fmt.Errorf("server.page_size must be a positive integer")
	}
	if c.Server.RequestsPerSecond <= 0 {
		return fmt.Errorf("server.requests_per_second must be positive")
	}
	if c.Baseline.CountFile == "" || c.Baseline.ReportFile == "" {
		return fmt.Errorf("baseline.count_file and baseline.report_file are required")
	}
	return nil
}
