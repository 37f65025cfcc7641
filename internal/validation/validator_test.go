package validation

import (
	"strings"
	"testing"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/catalog"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/types"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/xmlwriter"
)

func newRow(kv ...string) *types.Row {
	r := types.NewRow()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], kv[i+1])
	}
	return r
}

func tableOf(rows ...*types.Row) *types.Table {
	cat := catalog.Default()
	var seen []string
	for _, r := range rows {
		seen = append(seen, r.Keys()...)
	}
	seen = append(seen, cat.OriginColumn)
	return &types.Table{Columns: cat.OrderColumns(seen), Rows: rows}
}

func TestValidateTableMissingOrigin(t *testing.T) {
	v := NewValidator(catalog.Default(), xmlwriter.DefaultOptions())
	result := v.ValidateTable(&types.Table{Columns: []string{"CNES"}})

	if result.IsValid || result.ErrorCount != 1 {
		t.Fatalf("result = %+v, want one fatal error", result)
	}
	if result.Errors[0].Rule != RuleOriginMissing {
		t.Errorf("rule = %s", result.Errors[0].Rule)
	}
	if !strings.Contains(result.Errors[0].Error(), "[ERROR]") {
		t.Errorf("Error() = %s", result.Errors[0].Error())
	}
}

func TestValidateTableRules(t *testing.T) {
	cat := catalog.Default()
	o := cat.OriginColumn
	table := tableOf(
		newRow(o, "a.xte", "dataRealizacao", "05/03/2024", "valorInformado", "10.50", "numeroGuia_prestador", "42", "sexo", "1"),
		newRow(o, "a.xte", "dataRealizacao", "ontem"),
		newRow(o, "a.xte", "valorInformado", "10,50"),
		newRow(o, "a.xte", "numeroGuia_prestador", "42A"),
		newRow(o, "a.xte", "sexo", "2"),
		newRow(o, "a.xte", "grupoProcedimento", "110", "codigoProcedimento", "10101012"),
		newRow(o, " ", "dataRealizacao", "ontem"),
		newRow(o, "a.xte", "dataNascimento", "45000", cat.AgeColumn, "x"),
	)

	result := NewValidator(cat, xmlwriter.DefaultOptions()).ValidateTable(table)
	if !result.IsValid || result.ErrorCount != 0 {
		t.Fatalf("result has fatal errors: %+v", result.Errors)
	}
	if result.RowsValidated != 8 {
		t.Errorf("RowsValidated = %d, want 8", result.RowsValidated)
	}

	wantRows := map[string]int{
		RuleDateFormat:      2,
		RuleDecimalFormat:   3,
		RuleIntegerFormat:   4,
		RuleSexCode:         5,
		RuleProcedureChoice: 6,
		RuleOriginBlank:     7,
	}
	if len(result.Errors) != len(wantRows) {
		for _, e := range result.Errors {
			t.Log(e)
		}
		t.Fatalf("got %d findings, want %d", len(result.Errors), len(wantRows))
	}
	for _, e := range result.Errors {
		if want, ok := wantRows[e.Rule]; !ok || e.RowNumber != want {
			t.Errorf("finding %s at row %d, want row %d", e.Rule, e.RowNumber, wantRows[e.Rule])
		}
		if e.Severity != SeverityWarning {
			t.Errorf("%s severity = %s, want warning", e.Rule, e.Severity)
		}
	}

	counts := result.ByRule()
	if counts[RuleSexCode] != 1 || result.WarningCount != 6 {
		t.Errorf("ByRule() = %v, WarningCount = %d", counts, result.WarningCount)
	}
}

func TestValidateRowCustomSexCodes(t *testing.T) {
	cat := catalog.Default()
	opts := xmlwriter.DefaultOptions()
	opts.AcceptedSexCodes = []string{"1", "2", "3"}

	row := newRow(cat.OriginColumn, "a.xte", "sexo", "2")
	errs := NewValidator(cat, opts).ValidateRow([]string{cat.OriginColumn, "sexo"}, row)
	if len(errs) != 0 {
		t.Errorf("ValidateRow() = %v, want no findings", errs)
	}
}
