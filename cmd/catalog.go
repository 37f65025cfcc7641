// =============================================================================
// XTE Converter - Catalog Command
// =============================================================================
//
// This file defines the 'catalog' command, which exports the active field
// catalog as an XLSX template. The exported workbook can be edited and set
// as catalog_template in the configuration.
//
// COMMAND USAGE:
//   converter catalog --out catalogo.xlsx
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/xlsxparser"
)

// catalogOut is the path of the exported template.
var catalogOut string

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Export the active field catalog as an XLSX template",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadRuntime(cmd)
		if err != nil {
			return err
		}
		defer env.close()

		if err := xlsxparser.WriteCatalogTemplate(catalogOut, env.catalog); err != nil {
			return fmt.Errorf("failed to export catalog: %w", err)
		}
		printOK(cmd.OutOrStdout(), "%d fields written to %s", len(env.catalog.Fields()), catalogOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)

	catalogCmd.Flags().StringVar(
		&catalogOut,
		"out",
		"catalogo.xlsx",
		"Path of the exported catalog template",
	)
}
