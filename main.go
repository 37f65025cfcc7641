// =============================================================================
// XTE Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the XTE Converter CLI application. It
// delegates command execution to the cmd package.
//
// USAGE:
//   converter decode [files...]  - Decode monitoring documents into a table
//   converter encode <table>     - Rebuild monitoring documents from a table
//   converter validate <table>   - Report values the encoder would adjust
//   converter catalog            - Export the field catalog as an XLSX template
//   converter version            - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Catalog, parsers, writers and the two pipelines
//   - pkg/           : Shared file and log utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/XTE-Excel-conversion/cmd"
)

func main() {
	cmd.Execute()
}
