// =============================================================================
// XTE Converter - Validation Engine
// =============================================================================
//
// This module checks a guide table before it is encoded and reports what
// the encoder would reject, drop or rewrite.
//
// VALIDATION STRATEGY:
//   Validation is performed at two levels:
//   1. Table-level: The origin column must exist (fatal)
//   2. Field-level: Each value is checked against its catalog type and the
//      generation rules (warnings)
//
// RULES:
//   - origin_missing   (error)   The origin column is absent
//   - origin_blank     (warning) The row has no origin and is skipped
//   - date_format      (warning) A date value does not parse and is written as is
//   - decimal_format   (warning) A decimal value is not a number
//   - integer_format   (warning) An integer identifier has non-digit characters
//   - sex_code         (warning) The sexo code is not accepted and is omitted
//   - procedure_choice (warning) Both grupoProcedimento and codigoProcedimento
//                                are set; the code is omitted
//
// ERROR HANDLING:
//   - Errors are collected, not returned immediately
//   - Each error includes its origin, row number, field and value
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/catalog"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/transform"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/types"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/xmlwriter"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rule names.
const (
	RuleOriginMissing   = "origin_missing"
	RuleOriginBlank     = "origin_blank"
	RuleDateFormat      = "date_format"
	RuleDecimalFormat   = "decimal_format"
	RuleIntegerFormat   = "integer_format"
	RuleSexCode         = "sex_code"
	RuleProcedureChoice = "procedure_choice"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity is SeverityError (the table cannot be encoded) or
	// SeverityWarning (the row is encoded with the value adjusted).
	Severity string

	// Field is the column the finding is about.
	Field string

	// Value is the offending value.
	Value string

	// Rule is the violated rule name.
	Rule string

	// Message is a human-readable description.
	Message string

	// RowNumber is the 1-based data row number; 0 for table-level findings.
	RowNumber int

	// Origin is the row's origin value.
	Origin string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.RowNumber == 0 {
		return fmt.Sprintf("[%s] Field '%s': %s", strings.ToUpper(e.Severity), e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s row %d, Field '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.Origin,
		e.RowNumber,
		e.Field,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all findings, warnings included, in row order.
	Errors []*ValidationError

	// ErrorCount is the number of fatal errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// RowsValidated is the number of rows checked.
	RowsValidated int
}

func (r *ValidationResult) add(e *ValidationError) {
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
		r.IsValid = false
	} else {
		r.WarningCount++
	}
}

// ByRule counts findings per rule.
func (r *ValidationResult) ByRule() map[string]int {
	counts := make(map[string]int)
	for _, e := range r.Errors {
		counts[e.Rule]++
	}
	return counts
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks tables against a catalog and the generation options.
type Validator struct {
	catalog *catalog.Catalog
	writer  xmlwriter.Options
}

// NewValidator creates a validator. The writer options supply the accepted
// sex codes.
func NewValidator(cat *catalog.Catalog, writer xmlwriter.Options) *Validator {
	return &Validator{catalog: cat, writer: writer}
}

// ValidateTable validates every row of a table.
func (v *Validator) ValidateTable(table *types.Table) *ValidationResult {
	result := &ValidationResult{IsValid: true}

	origin := v.catalog.OriginColumn
	if !table.HasColumn(origin) {
		result.add(&ValidationError{
			Severity: SeverityError,
			Field:    origin,
			Rule:     RuleOriginMissing,
			Message:  "required column is missing, rows cannot be grouped into documents",
		})
		return result
	}

	for i, row := range table.Rows {
		result.RowsValidated++
		for _, e := range v.ValidateRow(table.Columns, row) {
			e.RowNumber = i + 1
			result.add(e)
		}
	}

	return result
}

// ValidateRow validates a single row. RowNumber is left for the caller.
func (v *Validator) ValidateRow(columns []string, row *types.Row) []*ValidationError {
	var errs []*ValidationError
	origin := strings.TrimSpace(row.Value(v.catalog.OriginColumn))

	warn := func(field, value, rule, msg string) {
		errs = append(errs, &ValidationError{
			Severity: SeverityWarning,
			Field:    field,
			Value:    value,
			Rule:     rule,
			Message:  msg,
			Origin:   origin,
		})
	}

	if origin == "" {
		warn(v.catalog.OriginColumn, "", RuleOriginBlank, "row has no origin and is skipped")
		return errs
	}

	for _, col := range columns {
		value := strings.TrimSpace(row.Value(col))
		if value == "" || col == v.catalog.OriginColumn || col == v.catalog.AgeColumn {
			continue
		}

		if msg := validateDataType(value, v.catalog.TypeOf(col)); msg != "" {
			warn(col, value, ruleFor(v.catalog.TypeOf(col)), msg)
		}
	}

	if sex := strings.TrimSpace(row.Value("sexo")); sex != "" && !v.writer.AcceptsSex(sex) {
		warn("sexo", sex, RuleSexCode, fmt.Sprintf("code is not one of %s and is omitted",
			strings.Join(v.writer.AcceptedSexCodes, ", ")))
	}

	if strings.TrimSpace(row.Value("grupoProcedimento")) != "" && strings.TrimSpace(row.Value("codigoProcedimento")) != "" {
		warn("codigoProcedimento", row.Value("codigoProcedimento"), RuleProcedureChoice,
			"grupoProcedimento is set, the procedure code is omitted")
	}

	return errs
}

// =============================================================================
// DATA TYPE VALIDATORS
// =============================================================================

// validateDataType validates a value against a catalog type.
//
// RETURNS:
//   - An error message if validation fails, empty string if valid.
func validateDataType(value string, dataType catalog.FieldType) string {
	switch dataType {
	case catalog.TypeDate:
		return validateDate(value)
	case catalog.TypeDecimal:
		return validateDecimal(value)
	case catalog.TypeInteger:
		return validateInteger(value)
	default:
		return ""
	}
}

func ruleFor(dataType catalog.FieldType) string {
	switch dataType {
	case catalog.TypeDate:
		return RuleDateFormat
	case catalog.TypeDecimal:
		return RuleDecimalFormat
	default:
		return RuleIntegerFormat
	}
}

// validateDate accepts what the encoder can turn into YYYY-MM-DD.
func validateDate(value string) string {
	if _, ok := transform.ToISO(value); !ok {
		return "date is not DD/MM/YYYY, YYYY-MM-DD or a spreadsheet serial and is written unchanged"
	}
	return ""
}

// validateDecimal validates that a value is a decimal number with a dot
// separator.
func validateDecimal(value string) string {
	if _, ok := transform.ParseDecimal(value); !ok {
		return "value is not a decimal number"
	}
	return ""
}

// validateInteger validates that an identifier holds only digits.
func validateInteger(value string) string {
	if !transform.IsDigits(value) {
		return "identifier contains non-digit characters"
	}
	return ""
}
