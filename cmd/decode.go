// =============================================================================
// XTE Converter - Decode Command
// =============================================================================
//
// This file defines the 'decode' command, which flattens monitoring documents
// into one consolidated table.
//
// COMMAND USAGE:
//   converter decode [files...] [flags]
//
// FLAGS:
//   --format : Table format to write: xlsx, csv or both (default xlsx)
//   --name   : Output file name format, overriding table_name_format
//
// PROCESSING PIPELINE:
//   1. Load configuration and the field catalog
//   2. Collect the documents (arguments, or the input directory)
//   3. Decode every document; broken documents are skipped and logged
//   4. Write the consolidated table
//   5. Write the error log and the summary
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/converter"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/csvparser"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/types"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/xlsxparser"
	"github.com/ginjaninja78/XTE-Excel-conversion/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// decodeFormat selects the table format(s) written.
var decodeFormat string

// decodeName overrides the configured table name format.
var decodeName string

// =============================================================================
// DECODE COMMAND DEFINITION
// =============================================================================

var decodeCmd = &cobra.Command{
	Use:   "decode [files...]",
	Short: "Decode monitoring documents into a table",
	Long: `The decode command reads one or more monitoring documents and writes a
single table with one row per procedure. Without arguments it decodes every
document found in the input directory.

A document that cannot be parsed is skipped. The cause is printed, written
to the error log, and the remaining documents are still decoded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDecode(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	decodeCmd.Flags().StringVar(
		&decodeFormat,
		"format",
		"xlsx",
		"Table format to write: xlsx, csv or both",
	)

	decodeCmd.Flags().StringVar(
		&decodeName,
		"name",
		"",
		"Output file name format (placeholders: {timestamp}, {date}, {time}, {uuid})",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runDecode(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	formats, err := tableFormats(decodeFormat)
	if err != nil {
		return err
	}

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	printHeader(out, "XTE Converter - Decode")
	env, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	if err := env.files.EnsureDirectories(); err != nil {
		return err
	}

	summary := utils.NewProcessingSummary("decode")
	env.logger.Info("Decode run %s started", summary.RunID)

	// =========================================================================
	// STEP 2: COLLECT INPUT DOCUMENTS
	// =========================================================================

	paths := args
	if len(paths) == 0 {
		paths, err = env.files.DiscoverInputFiles(env.cfg.XMLSettings.Extensions...)
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}
	if len(paths) == 0 {
		fmt.Fprintln(out, "No documents found in the input directory.")
		return nil
	}
	fmt.Fprintf(out, "Found %d document(s) to decode\n", len(paths))
	summary.TotalFiles = len(paths)

	var logEntries []utils.ErrorLogEntry
	recordFailure := func(name, kind string, err error) {
		printFail(out, "%s: %v", name, err)
		summary.FailedFiles++
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    name,
			ErrorMessage: err.Error(),
			ErrorType:    kind,
		})
		logEntries = append(logEntries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     name,
			ErrorType:    kind,
			ErrorMessage: err.Error(),
		})
	}

	// The origin column holds the base name only, so two inputs sharing a
	// name end up as one origin in the table.
	seen := make(map[string]string, len(paths))
	inputs := make([]converter.Input, 0, len(paths))
	for _, path := range paths {
		name := filepath.Base(path)
		data, err := os.ReadFile(path)
		if err != nil {
			recordFailure(name, "read", err)
			continue
		}
		if prev, ok := seen[name]; ok {
			printWarn(out, "%s: same file name as %s; their rows share one origin", path, prev)
			env.logger.Warn("Input %s has the same file name as %s; rows will share origin %s", path, prev, name)
		} else {
			seen[name] = path
		}
		inputs = append(inputs, converter.Input{Name: name, Data: data})
	}

	// =========================================================================
	// STEP 3: DECODE
	// =========================================================================

	decoder := converter.NewDecoder(env.catalog, converter.WithLogger(env.logger))
	result := decoder.DecodeAll(inputs)

	failed := make(map[string]bool)
	for _, ferr := range result.Failures {
		var perr *types.ParseError
		if errors.As(ferr, &perr) {
			failed[perr.Origin] = true
			recordFailure(perr.Origin, "parse", perr.Err)
			continue
		}
		recordFailure("", "decode", ferr)
	}

	rowsByOrigin := make(map[string]int)
	for _, row := range result.Table.Rows {
		rowsByOrigin[row.Value(env.catalog.OriginColumn)]++
	}
	for _, in := range inputs {
		if failed[in.Name] {
			continue
		}
		printOK(out, "%s (%d rows)", in.Name, rowsByOrigin[in.Name])
		summary.SuccessfulFiles++
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile: in.Name,
			Rows:      rowsByOrigin[in.Name],
		})
	}
	summary.TotalRows = result.Stats.Rows

	// =========================================================================
	// STEP 4: WRITE THE TABLE
	// =========================================================================

	var written []string
	if result.Stats.FilesDecoded > 0 {
		nameFormat := env.cfg.TableNameFormat
		if decodeName != "" {
			nameFormat = decodeName
		}
		stem := utils.GenerateOutputFileName(nameFormat, "", nil)

		for _, format := range formats {
			path := env.files.OutputPath(stem + "." + format)
			if err := writeDecodedTable(env, format, path, result.Table); err != nil {
				recordFailure(filepath.Base(path), "write", err)
				continue
			}
			written = append(written, path)
			env.logger.Info("Wrote table %s", path)
		}
		for i := range summary.ProcessedFiles {
			summary.ProcessedFiles[i].OutputFile = joinNames(written)
		}
	}

	// =========================================================================
	// STEP 5: LOGS AND SUMMARY
	// =========================================================================

	summary.EndTime = time.Now()
	if path, err := utils.WriteErrorLog(logEntries, env.cfg.LogDir); err != nil {
		env.logger.Error("Failed to write error log: %v", err)
	} else if path != "" {
		fmt.Fprintf(out, "\nErrors have been logged to %s\n", path)
	}
	if _, err := utils.WriteSummaryLog(summary, env.cfg.LogDir); err != nil {
		env.logger.Error("Failed to write summary: %v", err)
	}

	fmt.Fprintln(out)
	printHeader(out, "Decode Complete")
	fmt.Fprintf(out, "Documents:       %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Decoded:         %d\n", result.Stats.FilesDecoded)
	fmt.Fprintf(out, "Failed:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Rows:            %d\n", summary.TotalRows)
	for _, path := range written {
		fmt.Fprintf(out, "Table:           %s\n", path)
	}
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	if result.Stats.FilesDecoded == 0 {
		return fmt.Errorf("no document could be decoded")
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// tableFormats expands the --format flag into file extensions without the dot.
func tableFormats(flag string) ([]string, error) {
	switch flag {
	case "xlsx", "csv":
		return []string{flag}, nil
	case "both":
		return []string{"xlsx", "csv"}, nil
	default:
		return nil, fmt.Errorf("invalid --format %q (want xlsx, csv or both)", flag)
	}
}

func writeDecodedTable(env *runtimeEnv, format, path string, table *types.Table) error {
	if format == "csv" {
		return csvparser.WriteFile(path, table, env.catalog, env.cfg.CSVSettings)
	}
	return xlsxparser.WriteTable(path, table, env.catalog)
}

func joinNames(paths []string) string {
	var s string
	for i, p := range paths {
		if i > 0 {
			s += ", "
		}
		s += filepath.Base(p)
	}
	return s
}
