package xlsxparser

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/catalog"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/types"
)

func writeWorkbook(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		r := row
		if err := f.SetSheetRow("Sheet1", cell, &r); err != nil {
			t.Fatalf("SetSheetRow() error = %v", err)
		}
	}

	path := filepath.Join(t.TempDir(), "book.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs() error = %v", err)
	}
	return path
}

func TestParseCatalogTemplate(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Field Name", "Data Type", "Merge Policy", "Max Occurs"},
		{"CNES", "texto", "", ""},
		{},
		{"dataRealizacao", "Date", "", ""},
		{"valorInformado", "money", "", ""},
		{"diagnosticoCID", "string", "indexed", 4},
		{"numeroGuia_prestador", "int", "first", ""},
	})

	cat, err := ParseCatalogTemplate(path, "Arquivo", "")
	if err != nil {
		t.Fatalf("ParseCatalogTemplate() error = %v", err)
	}

	fields := cat.Fields()
	if len(fields) != 6 || fields[0].Name != "Arquivo" {
		t.Fatalf("fields = %+v, want origin first then 5 template fields", fields)
	}
	if cat.AgeColumn != catalog.DefaultAgeColumn {
		t.Errorf("age column = %q", cat.AgeColumn)
	}

	tests := []struct {
		name  string
		typ   catalog.FieldType
		merge catalog.MergePolicy
	}{
		{"CNES", catalog.TypeString, catalog.MergeLast},
		{"dataRealizacao", catalog.TypeDate, catalog.MergeLast},
		{"valorInformado", catalog.TypeDecimal, catalog.MergeLast},
		{"diagnosticoCID", catalog.TypeString, catalog.MergeIndexed},
		{"numeroGuia_prestador", catalog.TypeInteger, catalog.MergeFirst},
	}
	for _, tt := range tests {
		f, ok := cat.Lookup(tt.name)
		if !ok {
			t.Errorf("%s missing from catalog", tt.name)
			continue
		}
		if f.Type != tt.typ || f.Merge != tt.merge {
			t.Errorf("%s = %s/%s, want %s/%s", tt.name, f.Type, f.Merge, tt.typ, tt.merge)
		}
	}
	if got := cat.MaxOccursOf("diagnosticoCID"); got != 4 {
		t.Errorf("MaxOccursOf(diagnosticoCID) = %d, want 4", got)
	}
}

func TestParseCatalogTemplateErrors(t *testing.T) {
	empty := writeWorkbook(t, [][]interface{}{{"Field Name", "Data Type"}})
	if _, err := ParseCatalogTemplate(empty, "", ""); err == nil {
		t.Error("template without fields accepted")
	}

	bad := writeWorkbook(t, [][]interface{}{
		{"Field Name", "Data Type", "Merge Policy", "Max Occurs"},
		{"diagnosticoCID", "string", "indexed", "muitos"},
	})
	if _, err := ParseCatalogTemplate(bad, "", ""); err == nil {
		t.Error("non-numeric max occurs accepted")
	}

	if _, err := ParseCatalogTemplate(filepath.Join(t.TempDir(), "absent.xlsx"), "", ""); err == nil {
		t.Error("missing file accepted")
	}
}

func TestCatalogTemplateExport(t *testing.T) {
	def := catalog.Default()
	path := filepath.Join(t.TempDir(), "catalogo.xlsx")
	if err := WriteCatalogTemplate(path, def); err != nil {
		t.Fatalf("WriteCatalogTemplate() error = %v", err)
	}

	loaded, err := ParseCatalogTemplate(path, def.OriginColumn, def.AgeColumn)
	if err != nil {
		t.Fatalf("ParseCatalogTemplate() error = %v", err)
	}

	want, got := def.Fields(), loaded.Fields()
	if len(got) != len(want) {
		t.Fatalf("got %d fields, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestTableRoundTrip(t *testing.T) {
	cat := catalog.Default()
	row := types.NewRow()
	row.Set(cat.OriginColumn, "lote.xte")
	row.Set("numeroGuia_prestador", "00042A")
	row.Set("valorInformado", "150")
	row.Set("valorPagoProc", "n/d")
	row.Set("dataRealizacao", "05/03/2024")
	sparse := types.NewRow()
	sparse.Set(cat.OriginColumn, "lote.xte")

	table := &types.Table{
		Columns: []string{cat.OriginColumn, "numeroGuia_prestador", "valorInformado", "valorPagoProc", "dataRealizacao"},
		Rows:    []*types.Row{row, sparse},
	}

	var buf bytes.Buffer
	if err := WriteTableTo(&buf, table, cat); err != nil {
		t.Fatalf("WriteTableTo() error = %v", err)
	}

	got, err := ReadTableFrom(&buf, cat)
	if err != nil {
		t.Fatalf("ReadTableFrom() error = %v", err)
	}
	if len(got.Columns) != len(table.Columns) || len(got.Rows) != 2 {
		t.Fatalf("got %d columns and %d rows", len(got.Columns), len(got.Rows))
	}

	checks := map[string]string{
		"numeroGuia_prestador": "00042A",
		"valorInformado":       "150.00",
		"valorPagoProc":        "n/d",
		"dataRealizacao":       "05/03/2024",
	}
	for col, want := range checks {
		if v := got.Rows[0].Value(col); v != want {
			t.Errorf("%s = %q, want %q", col, v, want)
		}
	}
	if got.Rows[1].Has("valorInformado") {
		t.Error("absent value read back as present")
	}
}

func TestReadTableSerialDates(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{
		{"Nome da Origem", "dataNascimento"},
		{"lote.xte", 45000},
	})

	table, err := ReadTable(path, catalog.Default())
	if err != nil {
		t.Fatalf("ReadTable() error = %v", err)
	}
	if v := table.Rows[0].Value("dataNascimento"); v != "45000" {
		t.Errorf("dataNascimento = %q, want raw serial 45000", v)
	}
}

func TestReadTableDuplicateColumns(t *testing.T) {
	path := writeWorkbook(t, [][]interface{}{{"a", "a"}, {"1", "2"}})
	if _, err := ReadTable(path, catalog.Default()); err == nil {
		t.Error("duplicate column accepted")
	}
}
