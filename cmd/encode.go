// =============================================================================
// XTE Converter - Encode Command
// =============================================================================
//
// This file defines the 'encode' command, which rebuilds monitoring documents
// from a table.
//
// COMMAND USAGE:
//   converter encode <table.xlsx|table.csv> [flags]
//
// FLAGS:
//   --zip     : Pack the documents into one archive per extension
//   --dry-run : Build every document but write nothing
//
// PROCESSING PIPELINE:
//   1. Load configuration and the field catalog
//   2. Read the table
//   3. Group rows by origin, then by guide, and build one document per origin
//   4. Write every document under each configured extension
//   5. Write the error log and the summary
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/converter"
	"github.com/ginjaninja78/XTE-Excel-conversion/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// zipOutputs packs the outputs into archives; it overrides zip_outputs.
var zipOutputs bool

// dryRun builds the documents without writing them.
var dryRun bool

// =============================================================================
// ENCODE COMMAND DEFINITION
// =============================================================================

var encodeCmd = &cobra.Command{
	Use:   "encode <table>",
	Short: "Encode a table back into monitoring documents",
	Long: `The encode command reads an XLSX or CSV table and writes one monitoring
document per distinct origin value. Each document is written under every
configured extension (.xml and .xte by default) with identical content.

Rows with a blank origin are skipped. An origin whose document cannot be
built is reported and the other origins are still written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEncode(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().BoolVar(
		&zipOutputs,
		"zip",
		false,
		"Pack the documents into one zip archive per extension",
	)

	encodeCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Build the documents without writing output files",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runEncode(cmd *cobra.Command, tablePath string) error {
	out := cmd.OutOrStdout()

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	printHeader(out, "XTE Converter - Encode")
	env, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	summary := utils.NewProcessingSummary("encode")
	env.logger.Info("Encode run %s started for %s", summary.RunID, tablePath)

	// =========================================================================
	// STEP 2: READ THE TABLE
	// =========================================================================

	table, err := readTable(env, tablePath)
	if err != nil {
		return fmt.Errorf("failed to read table: %w", err)
	}
	fmt.Fprintf(out, "Read %d row(s) from %s\n", len(table.Rows), tablePath)
	summary.TotalRows = len(table.Rows)

	// =========================================================================
	// STEP 3: BUILD THE DOCUMENTS
	// =========================================================================

	encoder := converter.NewEncoder(env.catalog,
		converter.WithLogger(env.logger),
		converter.WithWriterOptions(env.cfg.XMLSettings.WriterOptions()),
		converter.WithExtensions(env.cfg.XMLSettings.Extensions...),
	)
	result, err := encoder.Encode(table)
	if err != nil {
		return err
	}

	summary.TotalFiles = result.Stats.Origins + len(result.Failures)
	summary.SuccessfulFiles = result.Stats.Origins
	summary.FailedFiles = len(result.Failures)
	summary.TotalGuides = result.Stats.Guides
	summary.TotalProcedures = result.Stats.Procedures
	summary.SkippedRows = result.Stats.SkippedRows

	var logEntries []utils.ErrorLogEntry
	for _, f := range result.Failures {
		printFail(out, "%s: %v", f.Origin, f.Err)
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    f.Origin,
			ErrorMessage: f.Err.Error(),
			ErrorType:    "generate",
		})
		logEntries = append(logEntries, utils.ErrorLogEntry{
			Timestamp:    time.Now(),
			FileName:     f.Origin,
			ErrorType:    "generate",
			ErrorMessage: f.Err.Error(),
		})
	}
	if result.Stats.SkippedRows > 0 {
		printWarn(out, "%d row(s) skipped: blank %s", result.Stats.SkippedRows, env.catalog.OriginColumn)
	}

	// =========================================================================
	// STEP 4: WRITE THE DOCUMENTS
	// =========================================================================

	zip := zipOutputs || env.cfg.ZipOutputs
	switch {
	case dryRun:
		for _, f := range result.Files {
			printOK(out, "%s (dry run, %d bytes)", f.Name, len(f.Data))
		}

	case zip:
		if err := env.files.EnsureDirectories(); err != nil {
			return err
		}
		for _, ext := range env.cfg.XMLSettings.Extensions {
			var entries []utils.ZipEntry
			for _, f := range result.Files {
				if strings.HasSuffix(f.Name, ext) {
					entries = append(entries, utils.ZipEntry{Name: f.Name, Data: f.Data})
				}
			}
			if len(entries) == 0 {
				continue
			}
			archive := utils.GenerateOutputFileName("monitoramento_"+strings.TrimPrefix(ext, ".")+"_{timestamp}", ".zip", nil)
			path, err := env.files.WriteZip(archive, entries)
			if err != nil {
				printFail(out, "%s: %v", archive, err)
				logEntries = append(logEntries, utils.ErrorLogEntry{
					Timestamp: time.Now(), FileName: archive, ErrorType: "write", ErrorMessage: err.Error(),
				})
				continue
			}
			printOK(out, "%s (%d documents)", path, len(entries))
		}

	default:
		if err := env.files.EnsureDirectories(); err != nil {
			return err
		}
		for _, f := range result.Files {
			path, err := env.files.WriteOutputFile(f.Name, f.Data)
			if err != nil {
				printFail(out, "%s: %v", f.Name, err)
				logEntries = append(logEntries, utils.ErrorLogEntry{
					Timestamp: time.Now(), FileName: f.Name, ErrorType: "write", ErrorMessage: err.Error(),
				})
				continue
			}
			printOK(out, "%s -> %s", f.Origin, path)
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:  f.Origin,
				OutputFile: path,
			})
		}
	}

	// =========================================================================
	// STEP 5: LOGS AND SUMMARY
	// =========================================================================

	summary.EndTime = time.Now()
	if !dryRun {
		if path, err := utils.WriteErrorLog(logEntries, env.cfg.LogDir); err != nil {
			env.logger.Error("Failed to write error log: %v", err)
		} else if path != "" {
			fmt.Fprintf(out, "\nErrors have been logged to %s\n", path)
		}
		if _, err := utils.WriteSummaryLog(summary, env.cfg.LogDir); err != nil {
			env.logger.Error("Failed to write summary: %v", err)
		}
	}

	fmt.Fprintln(out)
	printHeader(out, "Encode Complete")
	fmt.Fprintf(out, "Origins:         %d\n", result.Stats.Origins)
	fmt.Fprintf(out, "Failed:          %d\n", len(result.Failures))
	fmt.Fprintf(out, "Guides:          %d\n", result.Stats.Guides)
	fmt.Fprintf(out, "Procedures:      %d\n", result.Stats.Procedures)
	fmt.Fprintf(out, "Skipped rows:    %d\n", result.Stats.SkippedRows)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))
	return nil
}
