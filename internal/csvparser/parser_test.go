package csvparser

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/catalog"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/config"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/types"
)

func defaultSettings() config.CSVSettings {
	return config.Default().CSVSettings
}

func TestRead(t *testing.T) {
	input := "\xEF\xBB\xBFNome da Origem; CNES ;;valorInformado\n" +
		"lote.xte;123;;10.5\n" +
		";;;\n" +
		"lote.xte;;x\n"

	table, err := Read(strings.NewReader(input), defaultSettings())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	wantCols := []string{"Nome da Origem", "CNES", "Column_3", "valorInformado"}
	if strings.Join(table.Columns, "|") != strings.Join(wantCols, "|") {
		t.Errorf("columns = %q, want %q", table.Columns, wantCols)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("got %d rows, want 2 (blank line skipped)", len(table.Rows))
	}
	if got := table.Rows[0].Value("valorInformado"); got != "10.5" {
		t.Errorf("valorInformado = %q", got)
	}
	if table.Rows[1].Has("CNES") {
		t.Error("empty cell read as a present value")
	}
	if table.Rows[1].Has("valorInformado") {
		t.Error("short record filled missing cells")
	}
}

func TestReadLatin1(t *testing.T) {
	raw, _ := charmap.ISO8859_1.NewEncoder().String("municipio;observação\n1;São Paulo\n")
	settings := defaultSettings()
	settings.Encoding = "ISO-8859-1"

	table, err := Read(strings.NewReader(raw), settings)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if table.Columns[1] != "observação" || table.Rows[0].Value("observação") != "São Paulo" {
		t.Errorf("latin-1 text not decoded: %q %q", table.Columns, table.Rows[0].Value("observação"))
	}
}

func TestReadErrors(t *testing.T) {
	if _, err := Read(strings.NewReader(""), defaultSettings()); err == nil {
		t.Error("empty input accepted")
	}
	if _, err := Read(strings.NewReader("a;a\n1;2\n"), defaultSettings()); err == nil {
		t.Error("duplicate column accepted")
	}
	settings := defaultSettings()
	settings.Encoding = "EBCDIC"
	if _, err := Read(strings.NewReader("a\n"), settings); err == nil {
		t.Error("unsupported encoding accepted")
	}
}

func TestWriteFormatsDecimals(t *testing.T) {
	cat := catalog.Default()
	row := types.NewRow()
	row.Set("CNES", "0012")
	row.Set("valorInformado", "10.5")
	row.Set("valorPagoProc", "n/d")
	table := &types.Table{Columns: []string{"CNES", "valorInformado", "valorPagoProc", "extra"}, Rows: []*types.Row{row}}

	var buf bytes.Buffer
	if err := Write(&buf, table, cat, defaultSettings()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	want := "CNES;valorInformado;valorPagoProc;extra\n0012;10.50;n/d;\n"
	if buf.String() != want {
		t.Errorf("Write() =\n%q\nwant\n%q", buf.String(), want)
	}
}

func TestWriteReadFile(t *testing.T) {
	cat := catalog.Default()
	settings := defaultSettings()
	settings.Encoding = "Windows-1252"
	settings.Delimiter = ","

	row := types.NewRow()
	row.Set(cat.OriginColumn, "lote março.xte")
	row.Set("observacao", "texto, com vírgula")
	table := &types.Table{Columns: []string{cat.OriginColumn, "observacao"}, Rows: []*types.Row{row}}

	path := filepath.Join(t.TempDir(), "tabela.csv")
	if err := WriteFile(path, table, cat, settings); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := ReadFile(path, settings)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if v := got.Rows[0].Value("observacao"); v != "texto, com vírgula" {
		t.Errorf("observacao = %q", v)
	}
	if v := got.Rows[0].Value(cat.OriginColumn); v != "lote março.xte" {
		t.Errorf("origin = %q", v)
	}
}

func TestWriteRejectsUnencodable(t *testing.T) {
	row := types.NewRow()
	row.Set("a", "€")
	settings := defaultSettings()
	settings.Encoding = "ISO-8859-1"

	var buf bytes.Buffer
	err := Write(&buf, &types.Table{Columns: []string{"a"}, Rows: []*types.Row{row}}, catalog.Default(), settings)
	if err == nil {
		t.Error("Write() error = nil for a character outside ISO-8859-1")
	}
}
