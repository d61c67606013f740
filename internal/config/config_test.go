package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMainConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "nope.yaml"), true)
	if err != nil {
		t.Fatalf("LoadMainConfig: %v", err)
	}
	if cfg.PayrollSheet != DefaultPayrollSheet {
		t.Errorf("PayrollSheet = %q", cfg.PayrollSheet)
	}
	if cfg.TemplateSheet != DefaultTemplateSheet || cfg.OutputSheet != DefaultOutputSheet {
		t.Errorf("sheets = %q / %q", cfg.TemplateSheet, cfg.OutputSheet)
	}
	if cfg.MaxConcurrency != 4 || !cfg.ShouldContinueOnError() || !cfg.ShouldArchive() {
		t.Errorf("processing defaults = %d %v %v", cfg.MaxConcurrency, cfg.ShouldContinueOnError(), cfg.ShouldArchive())
	}
	if cfg.Server.Port != "8080" || cfg.Server.DownloadFileName != DefaultDownloadFileName {
		t.Errorf("server defaults = %+v", cfg.Server)
	}
	if cfg.MaxUploadBytes() != 32<<20 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes())
	}
}

func TestLoadMainConfigMissingFileIsErrorWhenRequired(t *testing.T) {
	if _, err := LoadMainConfig(filepath.Join(t.TempDir(), "nope.yaml"), false); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestLoadMainConfigFromYAML(t *testing.T) {
	path := writeConfig(t, `
payroll_sheet: "Salary data August"
max_concurrency: 2
continue_on_error: false
csv_settings:
  delimiter: ";"
server:
  port: "9090"
  shutdown_timeout: 3s
transformation_rules:
  - field: Currency
    actions:
      - type: uppercase
`)

	cfg, err := LoadMainConfig(path, false)
	if err != nil {
		t.Fatalf("LoadMainConfig: %v", err)
	}
	if cfg.PayrollSheet != "Salary data August" {
		t.Errorf("PayrollSheet = %q", cfg.PayrollSheet)
	}
	if cfg.MaxConcurrency != 2 || cfg.ShouldContinueOnError() {
		t.Errorf("MaxConcurrency = %d, continue = %v", cfg.MaxConcurrency, cfg.ShouldContinueOnError())
	}
	if cfg.CSVSettings.Delimiter != ";" || cfg.CSVSettings.HeaderRow != 1 {
		t.Errorf("CSVSettings = %+v", cfg.CSVSettings)
	}
	if cfg.Server.Port != "9090" || cfg.Server.ShutdownTimeout != 3*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if len(cfg.TransformationRules) != 1 || cfg.TransformationRules[0].Actions[0].Type != "uppercase" {
		t.Errorf("TransformationRules = %+v", cfg.TransformationRules)
	}
}

func TestLoadMainConfigEnvOverrides(t *testing.T) {
	t.Setenv("PAYROLL_SHEET", "Salary data September")
	t.Setenv("PORT", "7000")

	cfg, err := LoadMainConfig(filepath.Join(t.TempDir(), "nope.yaml"), true)
	if err != nil {
		t.Fatalf("LoadMainConfig: %v", err)
	}
	if cfg.PayrollSheet != "Salary data September" {
		t.Errorf("PayrollSheet = %q", cfg.PayrollSheet)
	}
	if cfg.Server.Port != "7000" {
		t.Errorf("Port = %q", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *MainConfig)
		want   string
	}{
		{"bad log level", func(c *MainConfig) { c.LogLevel = "loud" }, "log_level"},
		{"negative concurrency", func(c *MainConfig) { c.MaxConcurrency = -1 }, "max_concurrency"},
		{"non xlsx output", func(c *MainConfig) { c.OutputFileFormat = "{uuid}.csv" }, "output_file_format"},
		{"bad glob", func(c *MainConfig) { c.FileMatchingPatterns = []string{"[x"} }, "pattern"},
		{"rule without field", func(c *MainConfig) {
			c.TransformationRules = []TransformationRule{{Actions: []TransformationAction{{Type: "trim"}}}}
		}, "field is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadMainConfigInvalidYAML(t *testing.T) {
	path := writeConfig(t, "max_concurrency: [1, 2\n")
	if _, err := LoadMainConfig(path, false); err == nil {
		t.Fatal("expected parse error")
	}
}
