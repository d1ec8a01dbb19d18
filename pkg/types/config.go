package types

import "time"

// ScriptsConfig controls where the platform automation scripts come from.
type ScriptsConfig struct {
	// Dir, when set, holds convert.jxa and convert.ps1 to use instead of the
	// copies embedded in the binary.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty" mapstructure:"dir"`
}

// HistoryConfig holds settings for the conversion history ledger.
type HistoryConfig struct {
	// Enabled turns recording on (default true).
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file
	// (default <user cache dir>/conver/history.db).
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// ReportFormat selects how outcomes are printed.
type ReportFormat string

const (
	ReportText ReportFormat = "text"
	ReportJSON ReportFormat = "json"
	ReportYAML ReportFormat = "yaml"
)

// Config is the resolved configuration after flags, environment and the
// config file have been merged.
type Config struct {
	// KeepOpen leaves the office application running after each conversion.
	KeepOpen bool `json:"keep_open" yaml:"keep_open" mapstructure:"keep_open"`

	// Format is the default target format (default pdf).
	Format Format `json:"format" yaml:"format" mapstructure:"format"`

	// Timeout bounds each script invocation. Zero means no limit.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// LogLevel is a zap level name (default warn).
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`

	// Report selects the output format: text, json or yaml.
	Report ReportFormat `json:"report" yaml:"report" mapstructure:"report"`

	Scripts ScriptsConfig `json:"scripts" yaml:"scripts" mapstructure:"scripts"`
	History HistoryConfig `json:"history" yaml:"history" mapstructure:"history"`
}
