// =============================================================================
// XTE Converter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks a table before it
// is encoded.
//
// COMMAND USAGE:
//   converter validate <table.xlsx|table.csv>
//
// Findings are warnings unless the table cannot be encoded at all; the
// command fails only in that case.
//
// =============================================================================

package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/validation"
)

var validateCmd = &cobra.Command{
	Use:   "validate <table>",
	Short: "Report table values that the encoder would drop or pass through",
	Long: `The validate command reads a table and reports, per row, the values that
would not survive encoding unchanged: unparsable dates and numbers, sex codes
that are omitted, blank origins and procedures that carry both a code and a
group. Nothing is written.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, tablePath string) error {
	out := cmd.OutOrStdout()

	printHeader(out, "XTE Converter - Validate")
	env, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer env.close()

	table, err := readTable(env, tablePath)
	if err != nil {
		return fmt.Errorf("failed to read table: %w", err)
	}

	validator := validation.NewValidator(env.catalog, env.cfg.XMLSettings.WriterOptions())
	result := validator.ValidateTable(table)

	for _, finding := range result.Errors {
		if finding.Severity == validation.SeverityError {
			printFail(out, "%s", finding.Error())
		} else {
			printWarn(out, "%s", finding.Error())
		}
		env.logger.Debug("%s", finding.Error())
	}

	fmt.Fprintln(out)
	printHeader(out, "Validation Complete")
	fmt.Fprintf(out, "Rows validated:  %d\n", result.RowsValidated)
	fmt.Fprintf(out, "Errors:          %d\n", result.ErrorCount)
	fmt.Fprintf(out, "Warnings:        %d\n", result.WarningCount)

	counts := result.ByRule()
	rules := make([]string, 0, len(counts))
	for rule := range counts {
		rules = append(rules, rule)
	}
	sort.Strings(rules)
	for _, rule := range rules {
		fmt.Fprintf(out, "  %-20s %d\n", rule, counts[rule])
	}

	if !result.IsValid {
		return fmt.Errorf("table %s cannot be encoded", tablePath)
	}
	printOK(out, "%s can be encoded", tablePath)
	return nil
}
