// =============================================================================
// XTE Converter - Configuration Module
// =============================================================================
//
// This module loads the application configuration file (config.yaml).
//
// CONFIGURATION AREAS:
//   1. Directories: where documents are read from and tables are written to
//   2. Catalog: column names and an optional XLSX catalog template
//   3. CSV settings: delimiter, encoding and decimal places of CSV exports
//   4. XML settings: namespace, schema version and output extensions
//
// Every key is optional. A missing key takes its default, and running
// without any configuration file is the same as an empty one.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/catalog"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/xmlwriter"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for documents (decode) when no file is given.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the decoded tables and the generated documents.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// LogDir receives the per-run error and summary logs.
	// Default: "./logs"
	LogDir string `yaml:"log_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// TableNameFormat is the file name, without extension, of a decoded
	// table.
	// Placeholders:
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {uuid}      - A random UUID
	// Default: "monitoramento_{timestamp}"
	TableNameFormat string `yaml:"table_name_format"`

	// ZipOutputs packs the generated documents into one archive per
	// extension instead of writing loose files.
	// Default: false
	ZipOutputs bool `yaml:"zip_outputs"`

	// =========================================================================
	// CATALOG SETTINGS
	// =========================================================================

	// CatalogTemplate is an optional XLSX workbook that replaces the
	// built-in field catalog.
	CatalogTemplate string `yaml:"catalog_template"`

	// OriginColumn names the column holding the source document name.
	// Default: "Nome da Origem"
	OriginColumn string `yaml:"origin_column"`

	// AgeColumn names the derived age-at-realization column.
	// Default: "Idade_na_Realização"
	AgeColumn string `yaml:"age_column"`

	// =========================================================================
	// FORMAT SETTINGS
	// =========================================================================

	CSVSettings CSVSettings `yaml:"csv_settings"`

	XMLSettings XMLSettings `yaml:"xml_settings"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for reading and writing CSV tables.
type CSVSettings struct {
	// Delimiter is the field separator.
	// Common values: ";" (semicolon), "," (comma), "|" (pipe), "\t" (tab)
	// Default: ";"
	Delimiter string `yaml:"delimiter"`

	// Encoding is the character encoding of the file.
	// Valid values: "UTF-8", "ISO-8859-1", "Windows-1252"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`

	// DecimalPlaces is the number of decimals written for decimal columns.
	// Default: 2
	DecimalPlaces *int `yaml:"decimal_places"`
}

// Places returns the configured decimal places.
func (s CSVSettings) Places() int {
	if s.DecimalPlaces == nil {
		return 2
	}
	return *s.DecimalPlaces
}

// =============================================================================
// XML SETTINGS STRUCTURE
// =============================================================================

// XMLSettings contains settings for generated documents.
type XMLSettings struct {
	// Namespace is the TISS schema namespace.
	// Default: "http://www.ans.gov.br/padroes/tiss/schemas"
	Namespace string `yaml:"namespace"`

	// SchemaVersion fills versaoPadrao when the table leaves it blank.
	// Default: "1.04.01"
	SchemaVersion string `yaml:"schema_version"`

	// SchemaFile is the schema file named in xsi:schemaLocation.
	// Default: "tissMonitoramentoV1_04_01.xsd"
	SchemaFile string `yaml:"schema_file"`

	// Indent is the indentation of one nesting level.
	// Default: "  " (2 spaces)
	Indent string `yaml:"indent"`

	// Extensions are the mirrored output extensions. Each document is
	// written once per extension with identical bytes.
	// Default: [".xml", ".xte"]
	Extensions []string `yaml:"extensions"`

	// AcceptedSexCodes are the sexo values that are written.
	// Default: ["1", "3"]
	AcceptedSexCodes []string `yaml:"accepted_sex_codes"`
}

// WriterOptions converts the settings to document generation options.
func (s XMLSettings) WriterOptions() xmlwriter.Options {
	opts := xmlwriter.DefaultOptions()
	opts.Namespace = s.Namespace
	opts.SchemaVersion = s.SchemaVersion
	opts.SchemaFile = s.SchemaFile
	opts.Indent = s.Indent
	opts.AcceptedSexCodes = append([]string(nil), s.AcceptedSexCodes...)
	return opts
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated. A missing
//     file yields an error wrapping fs.ErrNotExist; callers that treat the
//     file as optional use Default instead.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	// Read the configuration file.
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse the YAML.
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Apply default values.
	applyMainConfigDefaults(&config)

	// Validate the configuration.
	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no file is present.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.LogDir == "" {
		config.LogDir = "./logs"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.TableNameFormat == "" {
		config.TableNameFormat = "monitoramento_{timestamp}"
	}
	if config.OriginColumn == "" {
		config.OriginColumn = catalog.DefaultOriginColumn
	}
	if config.AgeColumn == "" {
		config.AgeColumn = catalog.DefaultAgeColumn
	}

	// CSV settings defaults.
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ";"
	}
	if config.CSVSettings.Encoding == "" {
		config.CSVSettings.Encoding = "UTF-8"
	}

	// XML settings defaults.
	d := xmlwriter.DefaultOptions()
	if config.XMLSettings.Namespace == "" {
		config.XMLSettings.Namespace = d.Namespace
	}
	if config.XMLSettings.SchemaVersion == "" {
		config.XMLSettings.SchemaVersion = d.SchemaVersion
	}
	if config.XMLSettings.SchemaFile == "" {
		config.XMLSettings.SchemaFile = d.SchemaFile
	}
	if config.XMLSettings.Indent == "" {
		config.XMLSettings.Indent = d.Indent
	}
	if len(config.XMLSettings.Extensions) == 0 {
		config.XMLSettings.Extensions = []string{".xml", ".xte"}
	}
	if len(config.XMLSettings.AcceptedSexCodes) == 0 {
		config.XMLSettings.AcceptedSexCodes = d.AcceptedSexCodes
	}
}

// SupportedEncodings lists the accepted csv_settings.encoding values.
var SupportedEncodings = []string{"UTF-8", "ISO-8859-1", "Windows-1252"}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}

	if config.OriginColumn == config.AgeColumn {
		return fmt.Errorf("origin_column and age_column must differ, both are %q", config.OriginColumn)
	}

	if !isSupportedEncoding(config.CSVSettings.Encoding) {
		return fmt.Errorf("unsupported csv encoding %q, use one of %s",
			config.CSVSettings.Encoding, strings.Join(SupportedEncodings, ", "))
	}
	if config.CSVSettings.Places() < 0 {
		return fmt.Errorf("csv decimal_places must not be negative")
	}

	for _, ext := range config.XMLSettings.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("output extension %q must start with a dot", ext)
		}
	}

	return nil
}

func isSupportedEncoding(name string) bool {
	for _, e := range SupportedEncodings {
		if strings.EqualFold(e, name) {
			return true
		}
	}
	return false
}
