package xteparser

import (
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/catalog"
)

const sampleDocument = `<?xml version="1.0" encoding="utf-8"?>
<ans:mensagemEnvioANS xmlns:ans="http://www.ans.gov.br/padroes/tiss/schemas">
  <ans:cabecalho>
    <ans:identificacaoTransacao>
      <ans:tipoTransacao>MONITORAMENTO</ans:tipoTransacao>
      <ans:numeroLote>77</ans:numeroLote>
      <ans:competenciaLote>202403</ans:competenciaLote>
      <ans:dataRegistroTransacao>2024-04-02</ans:dataRegistroTransacao>
      <ans:horaRegistroTransacao>10:11:12</ans:horaRegistroTransacao>
    </ans:identificacaoTransacao>
    <ans:registroANS>123456</ans:registroANS>
    <ans:versaoPadrao>1.04.01</ans:versaoPadrao>
  </ans:cabecalho>
  <ans:Mensagem>
    <ans:operadoraParaANS>
      <ans:guiaMonitoramento>
        <ans:tipoRegistro>1</ans:tipoRegistro>
        <ans:dadosContratadoExecutante>
          <ans:CNES>9999999</ans:CNES>
          <ans:identificadorExecutante>1</ans:identificadorExecutante>
          <ans:codigoCNPJ_CPF>12345678000199</ans:codigoCNPJ_CPF>
          <ans:municipioExecutante>355030</ans:municipioExecutante>
        </ans:dadosContratadoExecutante>
        <ans:dadosBeneficiario>
          <ans:identBeneficiario>
            <ans:numeroCartaoNacionalSaude>700000000000001</ans:numeroCartaoNacionalSaude>
            <ans:sexo>1</ans:sexo>
            <ans:dataNascimento>2000-01-01</ans:dataNascimento>
            <ans:municipioResidencia>355030</ans:municipioResidencia>
          </ans:identBeneficiario>
          <ans:numeroRegistroPlano>480000001</ans:numeroRegistroPlano>
        </ans:dadosBeneficiario>
        <ans:numeroGuia_prestador>0042</ans:numeroGuia_prestador>
        <ans:numeroGuia_operadora>0042</ans:numeroGuia_operadora>
        <ans:identificacaoReembolso>00000000000000000000</ans:identificacaoReembolso>
        <ans:dataRealizacao>2024-03-05</ans:dataRealizacao>
        <ans:diagnosticosCID10>
          <ans:diagnosticoCID>J189</ans:diagnosticoCID>
          <ans:diagnosticoCID>I10</ans:diagnosticoCID>
        </ans:diagnosticosCID10>
        <ans:campoNovo>extra</ans:campoNovo>
        <ans:valoresGuia>
          <ans:valorTotalInformado>150.00</ans:valorTotalInformado>
        </ans:valoresGuia>
        <ans:procedimentos>
          <ans:identProcedimento>
            <ans:codigoTabela>22</ans:codigoTabela>
            <ans:Procedimento>
              <ans:codigoProcedimento>10101012</ans:codigoProcedimento>
            </ans:Procedimento>
          </ans:identProcedimento>
          <ans:quantidadeInformada>1</ans:quantidadeInformada>
          <ans:valorInformado>100.00</ans:valorInformado>
          <ans:campoNovo>from-procedure</ans:campoNovo>
        </ans:procedimentos>
        <ans:procedimentos>
          <ans:identProcedimento>
            <ans:codigoTabela>98</ans:codigoTabela>
            <ans:Procedimento>
              <ans:grupoProcedimento>110</ans:grupoProcedimento>
            </ans:Procedimento>
          </ans:identProcedimento>
          <ans:denteRegiao>
            <ans:codDente>11</ans:codDente>
          </ans:denteRegiao>
          <ans:valorInformado>50.00</ans:valorInformado>
        </ans:procedimentos>
      </ans:guiaMonitoramento>
      <ans:guiaMonitoramento>
        <ans:tipoRegistro>2</ans:tipoRegistro>
        <ans:numeroGuia_prestador>7</ans:numeroGuia_prestador>
      </ans:guiaMonitoramento>
    </ans:operadoraParaANS>
  </ans:Mensagem>
  <ans:epilogo>
    <ans:hash>00000000000000000000000000000000</ans:hash>
  </ans:epilogo>
</ans:mensagemEnvioANS>
`

func mustParse(t *testing.T, doc string) *Node {
	t.Helper()
	root, err := ParseBytes([]byte(doc))
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	return root
}

func TestExtractHeader(t *testing.T) {
	header := ExtractHeader(mustParse(t, sampleDocument))

	want := map[string]string{
		"tipoTransacao":         "MONITORAMENTO",
		"numeroLote":            "77",
		"competenciaLote":       "202403",
		"dataRegistroTransacao": "2024-04-02",
		"horaRegistroTransacao": "10:11:12",
		"registroANS":           "123456",
		"versaoPadrao":          "1.04.01",
	}
	for k, v := range want {
		if got := header.Value(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}

func TestExtractHeaderMissingBlock(t *testing.T) {
	doc := `<mensagemEnvioANS><Mensagem/></mensagemEnvioANS>`
	header := ExtractHeader(mustParse(t, doc))

	if header.Len() != len(HeaderFields) {
		t.Fatalf("header has %d keys, want %d", header.Len(), len(HeaderFields))
	}
	for _, name := range HeaderFields {
		if v, ok := header.Get(name); !ok || v != "" {
			t.Errorf("%s = %q, %v; want empty and present", name, v, ok)
		}
	}
}

func TestFlattenRowsPerProcedure(t *testing.T) {
	rows := NewFlattener(catalog.Default()).Flatten(mustParse(t, sampleDocument))

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3 (two procedures plus one bare guide)", len(rows))
	}

	first, second, bare := rows[0], rows[1], rows[2]

	checks := []struct {
		name string
		row  string
		got  string
		want string
	}{
		{"header copied", "first", first.Value("numeroLote"), "77"},
		{"explicit executor", "first", first.Value("CNES"), "9999999"},
		{"birth date converted", "first", first.Value("dataNascimento"), "01/01/2000"},
		{"guide date converted", "first", first.Value("dataRealizacao"), "05/03/2024"},
		{"raw guide number kept", "first", first.Value("numeroGuia_prestador"), "0042"},
		{"procedure code", "first", first.Value("codigoProcedimento"), "10101012"},
		{"procedure group empty", "first", first.Value("grupoProcedimento"), ""},
		{"procedure wins collision", "first", first.Value("campoNovo"), "from-procedure"},
		{"container values flattened", "first", first.Value("valorTotalInformado"), "150.00"},
		{"group", "second", second.Value("grupoProcedimento"), "110"},
		{"dental region leaf", "second", second.Value("codDente"), "11"},
		{"guide value inherited", "second", second.Value("campoNovo"), "extra"},
		{"procedure value", "second", second.Value("valorInformado"), "50.00"},
		{"bare guide", "bare", bare.Value("numeroGuia_prestador"), "7"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s (%s row) = %q, want %q", c.name, c.row, c.got, c.want)
		}
	}

	if first.Has("quantidadePaga") == false {
		t.Error("explicit procedure fields must always be present")
	}
	if bare.Has("CNES") || bare.Has("codigoTabela") {
		t.Error("bare guide picked up fields it does not have")
	}
	if first.Has("procedimentos") || first.Has("valoresGuia") {
		t.Error("container tags emitted as columns")
	}
	if first.Has("hash") {
		t.Error("epilogue leaked into guide rows")
	}
}

func TestFlattenIndexedDiagnoses(t *testing.T) {
	rows := NewFlattener(catalog.Default()).Flatten(mustParse(t, sampleDocument))

	if got := rows[0].Value("diagnosticoCID"); got != "J189" {
		t.Errorf("diagnosticoCID = %q", got)
	}
	if got := rows[0].Value("diagnosticoCID_2"); got != "I10" {
		t.Errorf("diagnosticoCID_2 = %q", got)
	}
}

func TestFlattenLastWinsForRepeatedTags(t *testing.T) {
	doc := `<mensagemEnvioANS><guiaMonitoramento>
		<outro>a</outro><bloco><outro>b</outro></bloco>
	</guiaMonitoramento></mensagemEnvioANS>`
	rows := NewFlattener(catalog.Default()).Flatten(mustParse(t, doc))

	if len(rows) != 1 || rows[0].Value("outro") != "b" {
		t.Fatalf("rows = %d, outro = %q", len(rows), rows[0].Value("outro"))
	}
}

func TestFlattenFirstWinsPolicy(t *testing.T) {
	cat := catalog.New("", "", []catalog.Field{{Name: "outro", Merge: catalog.MergeFirst}})
	doc := `<mensagemEnvioANS><guiaMonitoramento><outro>a</outro><outro>b</outro></guiaMonitoramento></mensagemEnvioANS>`

	rows := NewFlattener(cat).Flatten(mustParse(t, doc))
	if got := rows[0].Value("outro"); got != "a" {
		t.Errorf("outro = %q, want a", got)
	}
}

func TestFlattenLeafRules(t *testing.T) {
	doc := `<mensagemEnvioANS><guiaMonitoramento>
		<dataPagamento>sem data</dataPagamento>
		<vazio/>
		<espaco> </espaco>
	</guiaMonitoramento></mensagemEnvioANS>`
	row := NewFlattener(catalog.Default()).Flatten(mustParse(t, doc))[0]

	if got := row.Value("dataPagamento"); got != "sem data" {
		t.Errorf("unparsable date = %q, want raw text", got)
	}
	if row.Has("vazio") {
		t.Error("element without text produced a column")
	}
	if v, ok := row.Get("espaco"); !ok || v != "" {
		t.Errorf("whitespace-only leaf = %q, %v; want present and empty", v, ok)
	}
}

func TestFlattenKeepsUnparsableBirthDate(t *testing.T) {
	for raw, want := range map[string]string{
		"2000-01-01": "01/01/2000",
		"01/01/2000": "01/01/2000",
		"ignorada":   "ignorada",
	} {
		doc := strings.Replace(sampleDocument, "<ans:dataNascimento>2000-01-01<", "<ans:dataNascimento>"+raw+"<", 1)
		rows := NewFlattener(catalog.Default()).Flatten(mustParse(t, doc))
		if got := rows[0].Value("dataNascimento"); got != want {
			t.Errorf("dataNascimento %q = %q, want %q", raw, got, want)
		}
	}
}

func TestParseLatin1Document(t *testing.T) {
	doc := `<?xml version="1.0" encoding="iso-8859-1"?>` +
		`<ans:mensagemEnvioANS xmlns:ans="http://www.ans.gov.br/padroes/tiss/schemas">` +
		`<ans:guiaMonitoramento><ans:observacao>São Paulo</ans:observacao></ans:guiaMonitoramento>` +
		`</ans:mensagemEnvioANS>`
	encoded, err := charmap.ISO8859_1.NewEncoder().String(doc)
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}

	root, err := ParseBytes([]byte(encoded))
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	rows := NewFlattener(catalog.Default()).Flatten(root)
	if got := rows[0].Value("observacao"); got != "São Paulo" {
		t.Errorf("observacao = %q", got)
	}
}

func TestParseUndeclaredLatin1Document(t *testing.T) {
	body := `<ans:mensagemEnvioANS xmlns:ans="http://www.ans.gov.br/padroes/tiss/schemas">` +
		`<ans:guiaMonitoramento><ans:observacao>Observação</ans:observacao></ans:guiaMonitoramento>` +
		`</ans:mensagemEnvioANS>`
	tests := map[string]string{
		"no declaration":     body,
		"declared utf-8":     `<?xml version="1.0" encoding="UTF-8"?>` + body,
		"no encoding in xml": `<?xml version="1.0"?>` + body,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			encoded, err := charmap.ISO8859_1.NewEncoder().String(doc)
			if err != nil {
				t.Fatalf("encode fixture: %v", err)
			}
			root, err := Parse(strings.NewReader(encoded))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			rows := NewFlattener(catalog.Default()).Flatten(root)
			if got := rows[0].Value("observacao"); got != "Observação" {
				t.Errorf("observacao = %q", got)
			}
		})
	}
}

func TestParseUTF8DocumentUnchanged(t *testing.T) {
	doc := `<ans:mensagemEnvioANS xmlns:ans="http://www.ans.gov.br/padroes/tiss/schemas">` +
		`<ans:guiaMonitoramento><ans:observacao>Observação</ans:observacao></ans:guiaMonitoramento>` +
		`</ans:mensagemEnvioANS>`
	root, err := ParseBytes([]byte(doc))
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	rows := NewFlattener(catalog.Default()).Flatten(root)
	if got := rows[0].Value("observacao"); got != "Observação" {
		t.Errorf("observacao = %q", got)
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"malformed":  `<mensagemEnvioANS><guiaMonitoramento></mensagemEnvioANS>`,
		"empty":      ``,
		"wrong root": `<outraMensagem/>`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(doc)); err == nil {
				t.Error("Parse() error = nil")
			}
		})
	}
}
