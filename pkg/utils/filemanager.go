// =============================================================================
// XTE Converter - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter, including:
//   - Directory management
//   - Input discovery by extension
//   - Output writing, loose or packed into zip archives
//   - File naming utilities
//   - Error and summary log generation
//
// Outputs are written to a temporary name and renamed into place, so a
// failed run never leaves a truncated document behind.
//
// =============================================================================

package utils

import (
	"archive/zip"
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the converter.
type FileManager struct {
	// InputDir is the directory scanned for input documents.
	InputDir string

	// OutputDir is the directory where tables and documents are written.
	OutputDir string

	// LogDir is the directory for error and summary logs.
	LogDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, logDir string) *FileManager {
	return &FileManager{
		InputDir:  inputDir,
		OutputDir: outputDir,
		LogDir:    logDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the files of the input directory whose extension
// is one of extensions, compared case-insensitively, sorted by name.
//
// PARAMETERS:
//   - extensions: Extensions including the dot, e.g. ".xte", ".xml".
//
// RETURNS:
//   - A slice of file paths.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles(extensions ...string) ([]string, error) {
	entries, err := os.ReadDir(fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	wanted := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = true
	}

	var result []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if wanted[strings.ToLower(filepath.Ext(entry.Name()))] {
			result = append(result, filepath.Join(fm.InputDir, entry.Name()))
		}
	}

	sort.Strings(result)
	return result, nil
}

// =============================================================================
// OUTPUT WRITING
// =============================================================================

// OutputPath returns the path of name inside the output directory.
func (fm *FileManager) OutputPath(name string) string {
	return filepath.Join(fm.OutputDir, name)
}

// WriteOutputFile writes data to name inside the output directory.
//
// RETURNS:
//   - The path of the written file.
//   - An error if writing fails; no partial file is left.
func (fm *FileManager) WriteOutputFile(name string, data []byte) (string, error) {
	path := fm.OutputPath(name)
	if err := writeAtomic(path, func(f *os.File) error {
		_, err := f.Write(data)
		return err
	}); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

// ZipEntry is one file stored in an archive.
type ZipEntry struct {
	Name string
	Data []byte
}

// WriteZip packs entries, in order, into an archive inside the output
// directory.
func (fm *FileManager) WriteZip(archiveName string, entries []ZipEntry) (string, error) {
	path := fm.OutputPath(archiveName)
	err := writeAtomic(path, func(f *os.File) error {
		zw := zip.NewWriter(f)
		for _, e := range entries {
			w, err := zw.CreateHeader(&zip.FileHeader{
				Name:     e.Name,
				Method:   zip.Deflate,
				Modified: time.Now(),
			})
			if err != nil {
				return err
			}
			if _, err := w.Write(e.Data); err != nil {
				return err
			}
		}
		return zw.Close()
	})
	if err != nil {
		return "", fmt.Errorf("failed to write archive %s: %w", archiveName, err)
	}
	return path, nil
}

// writeAtomic writes through a temporary file in the target directory and
// renames it over path.
func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName generates a file name from a format string.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {uuid}      - A random UUID
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Current date (YYYYMMDD)
//     {time}      - Current time (HHMMSS)
//   - extension: Appended when the name does not already end with it.
//   - params: Extra placeholder values, e.g. {"lote": "1001"} for {lote}.
//
// EXAMPLE:
//
//	format: "monitoramento_{timestamp}"
//	output: "monitoramento_20240402_093015.xlsx"
func GenerateOutputFileName(format, extension string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	// Each {uuid} gets its own value.
	for strings.Contains(result, "{uuid}") {
		result = strings.Replace(result, "{uuid}", uuid.New().String(), 1)
	}

	if extension != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(extension)) {
		result += extension
	}
	return result
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single error log entry.
type ErrorLogEntry struct {
	Timestamp    time.Time
	FileName     string
	ErrorType    string
	ErrorMessage string
	RowNumber    int
	FieldName    string
	FieldValue   string
}

// WriteErrorLog writes error entries to a log file.
//
// RETURNS:
//   - The path to the error log file, empty when there is nothing to log.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, logDir string) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	timestamp := time.Now().Format("20060102_150405")
	logPath := filepath.Join(logDir, fmt.Sprintf("error_log_%s.txt", timestamp))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "XTE Converter - Error Log\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		time.Now().Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:      %s\n"+
			"  File:           %s\n"+
			"  Error Type:     %s\n"+
			"  Message:        %s\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.FileName,
			entry.ErrorType,
			entry.ErrorMessage)

		if entry.RowNumber > 0 {
			fmt.Fprintf(writer, "  Row Number:     %d\n", entry.RowNumber)
		}
		if entry.FieldName != "" {
			fmt.Fprintf(writer, "  Field:          %s\n", entry.FieldName)
		}
		if entry.FieldValue != "" {
			fmt.Fprintf(writer, "  Value:          %s\n", entry.FieldValue)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}
	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	RunID              string
	Operation          string
	StartTime          time.Time
	EndTime            time.Time
	TotalFiles         int
	SuccessfulFiles    int
	FailedFiles        int
	TotalRows          int
	TotalGuides        int
	TotalProcedures    int
	SkippedRows        int
	ValidationWarnings int
	ProcessedFiles     []ProcessedFileInfo
	FailedFilesList    []FailedFileInfo
}

// NewProcessingSummary starts a summary with a fresh run id.
func NewProcessingSummary(operation string) ProcessingSummary {
	return ProcessingSummary{
		RunID:     uuid.New().String(),
		Operation: operation,
		StartTime: time.Now(),
	}
}

// ProcessedFileInfo contains information about a successfully processed file.
type ProcessedFileInfo struct {
	InputFile  string
	OutputFile string
	Rows       int
	Guides     int
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
	ErrorType    string
}

// WriteSummaryLog writes a processing summary to a log file.
func WriteSummaryLog(summary ProcessingSummary, logDir string) (string, error) {
	timestamp := time.Now().Format("20060102_150405")
	summaryPath := filepath.Join(logDir, fmt.Sprintf("%s_summary_%s.txt", summary.Operation, timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "XTE Converter - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Operation:      %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:         %d\n"+
		"  Successful:          %d\n"+
		"  Failed:              %d\n"+
		"  Total Rows:          %d\n"+
		"  Total Guides:        %d\n"+
		"  Total Procedures:    %d\n"+
		"  Skipped Rows:        %d\n"+
		"  Validation Warnings: %d\n\n",
		summary.RunID,
		summary.Operation,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalRows,
		summary.TotalGuides,
		summary.TotalProcedures,
		summary.SkippedRows,
		summary.ValidationWarnings)

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Successful Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(writer, "  Output:       %s\n", pf.OutputFile)
			fmt.Fprintf(writer, "  Rows:         %d\n", pf.Rows)
			fmt.Fprintf(writer, "  Guides:       %d\n\n", pf.Guides)
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
