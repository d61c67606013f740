// =============================================================================
// Payroll to Batch Transfer Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration.
//
// CONFIGURATION SOURCES (later sources win):
//   1. Built-in defaults
//   2. Main config file (config.yaml), if present
//   3. Environment variables (a .env file is loaded by the CLI on startup)
//
// ENVIRONMENT OVERRIDES:
//   PAYROLL_SHEET, TEMPLATE_SHEET, OUTPUT_SHEET, TEMPLATE_FILE,
//   LOG_LEVEL, PORT
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// DEFAULTS
// =============================================================================

// Sheet names used by the payroll export and the Airwallex batch template.
const (
	DefaultPayrollSheet  = "Salary data July"
	DefaultTemplateSheet = "Airwallex batch transfer"
	DefaultOutputSheet   = "Airwallex batch transfer"
)

// DefaultDownloadFileName is the attachment name used by the web interface.
const DefaultDownloadFileName = "batch_transfer_output.xlsx"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS (used by the 'process' command)
	// =========================================================================

	// InputDir is scanned for payroll exports.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated batch transfer workbooks.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives payroll exports after successful conversion.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives a copy of every generated workbook.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// =========================================================================
	// WORKBOOK SETTINGS
	// =========================================================================

	// TemplateFile is the batch transfer template workbook whose header row
	// defines the output columns.
	// Default: "./templates/batch_transfer_template.xlsx"
	TemplateFile string `yaml:"template_file"`

	// PayrollSheet is the sheet read from payroll workbooks.
	PayrollSheet string `yaml:"payroll_sheet"`

	// TemplateSheet is the sheet whose header row is the output schema.
	TemplateSheet string `yaml:"template_sheet"`

	// OutputSheet is the name of the single sheet in generated workbooks.
	OutputSheet string `yaml:"output_sheet"`

	// OutputFileFormat names generated workbooks.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {original}  - Input file name without extension
	// Default: "batch_transfer_{original}_{timestamp}.xlsx"
	OutputFileFormat string `yaml:"output_file_format"`

	// FileMatchingPatterns are glob patterns selecting payroll files in InputDir.
	// Default: ["*.xlsx", "*.csv"]
	FileMatchingPatterns []string `yaml:"file_matching_patterns"`

	// CSVSettings applies to payroll exports in CSV form.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// TransformationRules are optional per-column rewrites applied to the
	// payroll table before grouping. None are applied by default.
	TransformationRules []TransformationRule `yaml:"transformation_rules"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files converted at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps processing other files when one fails.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// ArchiveOnSuccess moves converted inputs to InputArchiveDir.
	// Default: true
	ArchiveOnSuccess *bool `yaml:"archive_on_success"`

	// ArchiveByDate files archives under YYYY/MM/DD subdirectories.
	ArchiveByDate bool `yaml:"archive_by_date"`

	// =========================================================================
	// SERVER SETTINGS
	// =========================================================================

	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds settings for the 'serve' command.
type ServerConfig struct {
	// Port is the TCP port to listen on.
	// Default: "8080"
	Port string `yaml:"port"`

	// BasePath serves the interface under a URL prefix (e.g. "/payroll").
	BasePath string `yaml:"base_path"`

	// MaxUploadMB caps the size of a conversion request.
	// Default: 32
	MaxUploadMB int64 `yaml:"max_upload_mb"`

	// DownloadFileName is the attachment name of converted workbooks.
	DownloadFileName string `yaml:"download_file_name"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing CSV payroll exports.
type CSVSettings struct {
	// Delimiter separates fields. Common values: ",", ";", "|", "tab".
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// HeaderRow is the 1-based row holding the column headers. Rows above
	// it are skipped.
	// Default: 1
	HeaderRow int `yaml:"header_row"`

	// Comment marks lines to ignore when it is their first character.
	Comment string `yaml:"comment"`
}

// =============================================================================
// TRANSFORMATION RULE STRUCTURE
// =============================================================================

// TransformationRule defines transformations to apply to a payroll column.
type TransformationRule struct {
	// Field is the payroll column header, e.g. "Currency".
	Field string `yaml:"field"`

	// Actions are applied in order.
	Actions []TransformationAction `yaml:"actions"`
}

// TransformationAction defines a single transformation action.
type TransformationAction struct {
	// Type is one of: trim, trim_left, trim_right, uppercase, lowercase,
	// replace, regex_replace, prepend_string, append_string, lookup.
	Type string `yaml:"type"`

	// Value is the parameter of the action (replacement, prefix, suffix,
	// or cutset for trim_left / trim_right).
	Value string `yaml:"value"`

	// Find is the substring or pattern for replace / regex_replace.
	Find string `yaml:"find,omitempty"`

	// LookupTable maps input values to output values for "lookup".
	LookupTable map[string]string `yaml:"lookup_table,omitempty"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration with every default applied.
func Default() *MainConfig {
	cfg := &MainConfig{}
	applyMainConfigDefaults(cfg)
	return cfg
}

// LoadMainConfig loads the main configuration from a YAML file, then applies
// defaults and environment overrides.
//
// A missing file is not an error when allowMissing is true; the defaults are
// used instead. This lets the CLI run without any config.yaml.
func LoadMainConfig(configPath string, allowMissing bool) (*MainConfig, error) {
	var cfg MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist) && allowMissing:
		// Defaults only.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	applyMainConfigDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.TemplateFile == "" {
		config.TemplateFile = "./templates/batch_transfer_template.xlsx"
	}
	if config.PayrollSheet == "" {
		config.PayrollSheet = DefaultPayrollSheet
	}
	if config.TemplateSheet == "" {
		config.TemplateSheet = DefaultTemplateSheet
	}
	if config.OutputSheet == "" {
		config.OutputSheet = DefaultOutputSheet
	}
	if config.OutputFileFormat == "" {
		config.OutputFileFormat = "batch_transfer_{original}_{timestamp}.xlsx"
	}
	if len(config.FileMatchingPatterns) == 0 {
		config.FileMatchingPatterns = []string{"*.xlsx", "*.csv"}
	}
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ","
	}
	if config.CSVSettings.HeaderRow == 0 {
		config.CSVSettings.HeaderRow = 1
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.ContinueOnError == nil {
		config.ContinueOnError = boolPtr(true)
	}
	if config.ArchiveOnSuccess == nil {
		config.ArchiveOnSuccess = boolPtr(true)
	}
	if config.Server.Port == "" {
		config.Server.Port = "8080"
	}
	if config.Server.MaxUploadMB == 0 {
		config.Server.MaxUploadMB = 32
	}
	if config.Server.DownloadFileName == "" {
		config.Server.DownloadFileName = DefaultDownloadFileName
	}
	if config.Server.ShutdownTimeout == 0 {
		config.Server.ShutdownTimeout = 10 * time.Second
	}
}

// applyEnvOverrides lets environment variables override file settings.
func applyEnvOverrides(config *MainConfig) {
	config.PayrollSheet = getEnv("PAYROLL_SHEET", config.PayrollSheet)
	config.TemplateSheet = getEnv("TEMPLATE_SHEET", config.TemplateSheet)
	config.OutputSheet = getEnv("OUTPUT_SHEET", config.OutputSheet)
	config.TemplateFile = getEnv("TEMPLATE_FILE", config.TemplateFile)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)
	config.Server.Port = getEnv("PORT", config.Server.Port)
}

// Validate checks the configuration for values that cannot work.
func (c *MainConfig) Validate() error {
	var problems []string

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("invalid log_level %q", c.LogLevel))
	}
	if c.MaxConcurrency < 1 {
		problems = append(problems, fmt.Sprintf("invalid max_concurrency %d: must be at least 1", c.MaxConcurrency))
	}
	if c.Server.MaxUploadMB < 1 {
		problems = append(problems, fmt.Sprintf("invalid server.max_upload_mb %d: must be at least 1", c.Server.MaxUploadMB))
	}
	if !strings.HasSuffix(strings.ToLower(c.OutputFileFormat), ".xlsx") {
		problems = append(problems, fmt.Sprintf("invalid output_file_format %q: must end in .xlsx", c.OutputFileFormat))
	}
	for _, p := range c.FileMatchingPatterns {
		if _, err := filepath.Match(p, ""); err != nil {
			problems = append(problems, fmt.Sprintf("invalid file matching pattern %q: %v", p, err))
		}
	}
	if c.CSVSettings.HeaderRow < 1 {
		problems = append(problems, fmt.Sprintf("invalid csv_settings.header_row %d: must be at least 1", c.CSVSettings.HeaderRow))
	}
	for i, rule := range c.TransformationRules {
		if rule.Field == "" {
			problems = append(problems, fmt.Sprintf("transformation_rules[%d]: field is required", i))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// ShouldContinueOnError reports the effective continue_on_error setting.
func (c *MainConfig) ShouldContinueOnError() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// ShouldArchive reports the effective archive_on_success setting.
func (c *MainConfig) ShouldArchive() bool {
	return c.ArchiveOnSuccess == nil || *c.ArchiveOnSuccess
}

// MaxUploadBytes returns the server upload limit in bytes.
func (c *MainConfig) MaxUploadBytes() int64 {
	return c.Server.MaxUploadMB << 20
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func boolPtr(b bool) *bool {
	return &b
}
