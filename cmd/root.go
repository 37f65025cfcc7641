// =============================================================================
// XTE Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (converter)
//   ├── decodeCmd   (converter decode)
//   ├── encodeCmd   (converter encode)
//   ├── validateCmd (converter validate)
//   ├── catalogCmd  (converter catalog)
//   └── versionCmd  (converter version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration file, when present
//   3. Setting up logging and the field catalog
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/catalog"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/config"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/csvparser"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/logging"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/types"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/xlsxparser"
	"github.com/ginjaninja78/XTE-Excel-conversion/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables debug logging, mirrored to stderr.
var verbose bool

// =============================================================================
// OUTPUT STYLES
// =============================================================================

var (
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	headerStyle = lipgloss.NewStyle().Bold(true)
)

func printOK(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "  %s %s\n", okStyle.Render("✓"), fmt.Sprintf(format, args...))
}

func printFail(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "  %s %s\n", failStyle.Render("✗"), fmt.Sprintf(format, args...))
}

func printWarn(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, "  %s %s\n", warnStyle.Render("!"), fmt.Sprintf(format, args...))
}

func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w, headerStyle.Render("=== "+title+" ==="))
}

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "converter",
	Short: "XTE Converter - Convert TISS monitoring documents to spreadsheets and back",
	Long: `XTE Converter turns TISS "monitoramento" documents (.xte/.xml) into a
single flat table, one row per procedure, and turns such a table back into
one document per origin file.

Key Features:
  - Field catalog with per-field types and merge policies
  - XLSX and CSV tables, with configurable delimiter and encoding
  - ISO-8859-1 documents with the integrity hash recomputed on every write
  - Mirrored .xml/.xte outputs, optionally packed into zip archives
  - Error and summary logs for every run

Example Usage:
  converter decode                       # Decode every document in the input directory
  converter decode lote.xte --format csv # Decode one document to CSV
  converter encode tabela.xlsx --zip     # Rebuild the documents from a table
  converter validate tabela.csv          # Report values the encoder would drop`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file (optional; defaults apply when absent)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// RUNTIME ENVIRONMENT
// =============================================================================

// runtimeEnv bundles what every command needs after flag parsing.
type runtimeEnv struct {
	cfg     *config.MainConfig
	logger  *logging.Logger
	catalog *catalog.Catalog
	files   *utils.FileManager
}

func (e *runtimeEnv) close() {
	e.logger.Close()
}

// loadRuntime loads the configuration, opens the run log and builds the
// field catalog.
//
// A missing configuration file is only an error when --config was given
// explicitly.
func loadRuntime(cmd *cobra.Command) (*runtimeEnv, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("config") {
			return nil, fmt.Errorf("failed to load main config: %w", err)
		}
		cfg = config.Default()
	}

	level := logging.ParseLevel(cfg.LogLevel)
	var console io.Writer
	if verbose {
		level = slog.LevelDebug
		console = cmd.ErrOrStderr()
	}
	logger, err := logging.NewFile(cfg.LogDir, level, console)
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		logger.Close()
		return nil, err
	}
	logger.Debug("Catalog loaded: %d fields", len(cat.Fields()))

	return &runtimeEnv{
		cfg:     cfg,
		logger:  logger,
		catalog: cat,
		files:   utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.LogDir),
	}, nil
}

// loadCatalog reads the configured catalog workbook, or falls back to the
// built-in field list.
func loadCatalog(cfg *config.MainConfig) (*catalog.Catalog, error) {
	if cfg.CatalogTemplate == "" {
		return catalog.NewDefault(cfg.OriginColumn, cfg.AgeColumn), nil
	}
	cat, err := xlsxparser.ParseCatalogTemplate(cfg.CatalogTemplate, cfg.OriginColumn, cfg.AgeColumn)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog template: %w", err)
	}
	return cat, nil
}

// readTable loads a table by its extension.
func readTable(env *runtimeEnv, path string) (*types.Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" && ext != ".csv" {
		return nil, fmt.Errorf("unsupported table format %q (want .xlsx or .csv)", filepath.Ext(path))
	}
	if !utils.FileExists(path) {
		return nil, fmt.Errorf("table %s not found", path)
	}
	if ext == ".csv" {
		return csvparser.ReadFile(path, env.cfg.CSVSettings)
	}
	return xlsxparser.ReadTable(path, env.catalog)
}
