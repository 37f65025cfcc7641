package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.OriginColumn != "Nome da Origem" || cfg.AgeColumn != "Idade_na_Realização" {
		t.Errorf("column defaults = %q, %q", cfg.OriginColumn, cfg.AgeColumn)
	}
	if cfg.CSVSettings.Delimiter != ";" || cfg.CSVSettings.Places() != 2 {
		t.Errorf("csv defaults = %+v", cfg.CSVSettings)
	}
	if got := strings.Join(cfg.XMLSettings.Extensions, ","); got != ".xml,.xte" {
		t.Errorf("extensions = %s", got)
	}

	opts := cfg.XMLSettings.WriterOptions()
	if opts.SchemaVersion != "1.04.01" || opts.Prefix != "ans" || opts.Indent != "  " {
		t.Errorf("writer options = %+v", opts)
	}
}

func TestLoadMainConfig(t *testing.T) {
	path := writeConfig(t, `
input_dir: ./lotes
origin_column: Arquivo
csv_settings:
  delimiter: ","
  encoding: ISO-8859-1
  decimal_places: 0
xml_settings:
  extensions: [".xte"]
  accepted_sex_codes: ["1", "2", "3"]
zip_outputs: true
`)

	cfg, err := LoadMainConfig(path)
	if err != nil {
		t.Fatalf("LoadMainConfig() error = %v", err)
	}

	if cfg.InputDir != "./lotes" || cfg.OutputDir != "./output" {
		t.Errorf("dirs = %q, %q", cfg.InputDir, cfg.OutputDir)
	}
	if cfg.OriginColumn != "Arquivo" || cfg.AgeColumn != "Idade_na_Realização" {
		t.Errorf("columns = %q, %q", cfg.OriginColumn, cfg.AgeColumn)
	}
	if cfg.CSVSettings.Places() != 0 {
		t.Errorf("explicit zero decimal places replaced by %d", cfg.CSVSettings.Places())
	}
	if !cfg.ZipOutputs || len(cfg.XMLSettings.Extensions) != 1 {
		t.Errorf("output settings = %v, %v", cfg.ZipOutputs, cfg.XMLSettings.Extensions)
	}
	if !cfg.XMLSettings.WriterOptions().AcceptsSex("2") {
		t.Error("configured sex code not accepted")
	}
}

func TestLoadMainConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad yaml", "input_dir: [", "failed to parse"},
		{"bad level", "log_level: loud", "log_level"},
		{"bad encoding", "csv_settings:\n  encoding: EBCDIC", "unsupported csv encoding"},
		{"bad extension", "xml_settings:\n  extensions: [xml]", "must start with a dot"},
		{"same columns", "origin_column: X\nage_column: X", "must differ"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMainConfig(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("LoadMainConfig() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadMainConfigMissingFile(t *testing.T) {
	_, err := LoadMainConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("LoadMainConfig() error = %v, want fs.ErrNotExist", err)
	}
}
