package xmlwriter

import (
	"strings"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/catalog"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/transform"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/types"
)

// Guide value totals, in schema order.
var guideValueTags = []string{
	"valorTotalInformado",
	"valorProcessado",
	"valorTotalPagoProcedimentos",
	"valorTotalDiarias",
	"valorTotalTaxas",
	"valorTotalMateriais",
	"valorTotalOPME",
	"valorTotalMedicamentos",
	"valorGlosaGuia",
	"valorPagoGuia",
	"valorPagoFornecedores",
	"valorTotalTabelaPropria",
	"valorTotalCoParticipacao",
}

// Repeated column limits, matching the schema maxOccurs.
const (
	maxDiagnoses    = 4
	maxDeclarations = 8
)

// =============================================================================
// ELEMENT HELPERS
// =============================================================================

type builder struct {
	opts Options
}

// el creates an empty element in the document namespace.
func (b *builder) el(local string) *Element {
	return &Element{Name: b.opts.Prefix + ":" + local}
}

// text appends a leaf when value is not blank.
func (b *builder) text(parent *Element, local, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	leaf := b.el(local)
	leaf.Value = value
	parent.Add(leaf)
}

// field appends a leaf named after the column, when the row has a value.
func (b *builder) field(parent *Element, row *types.Row, column string) {
	b.text(parent, column, row.Value(column))
}

// date appends a date leaf normalized to YYYY-MM-DD.
func (b *builder) date(parent *Element, row *types.Row, column string) {
	value, _ := transform.ToISO(row.Value(column))
	b.text(parent, column, value)
}

// repeated appends one leaf per indexed column: name, name_2, ...
func (b *builder) repeated(parent *Element, row *types.Row, column string, limit int) {
	for n := 1; n <= limit; n++ {
		b.fieldAs(parent, row, catalog.IndexedName(column, n), column)
	}
}

// fieldAs appends a leaf named local holding the value of column.
func (b *builder) fieldAs(parent *Element, row *types.Row, column, local string) {
	b.text(parent, local, row.Value(column))
}

func hasAny(row *types.Row, columns ...string) bool {
	for _, c := range columns {
		if strings.TrimSpace(row.Value(c)) != "" {
			return true
		}
	}
	return false
}

// =============================================================================
// GUIDE ELEMENT
// =============================================================================

// buildGuide emits one guiaMonitoramento. Guide level values come from the
// group's first row; each row becomes one procedure.
func (b *builder) buildGuide(g types.GuideGroup) *Element {
	guide := b.el("guiaMonitoramento")
	row := g.Rows[0]

	b.field(guide, row, "tipoRegistro")
	b.field(guide, row, "versaoTISSPrestador")
	b.field(guide, row, "formaEnvio")

	executor := guide.Add(b.el("dadosContratadoExecutante"))
	b.field(executor, row, "CNES")
	b.field(executor, row, "identificadorExecutante")
	b.field(executor, row, "codigoCNPJ_CPF")
	b.field(executor, row, "municipioExecutante")

	b.field(guide, row, "registroANSOperadoraIntermediaria")
	b.field(guide, row, "tipoAtendimentoOperadoraIntermediaria")

	beneficiary := guide.Add(b.el("dadosBeneficiario"))
	ident := beneficiary.Add(b.el("identBeneficiario"))
	b.field(ident, row, "numeroCartaoNacionalSaude")
	b.field(ident, row, "cpfBeneficiario")
	if sex := strings.TrimSpace(row.Value("sexo")); b.opts.AcceptsSex(sex) {
		b.text(ident, "sexo", sex)
	}
	b.date(ident, row, "dataNascimento")
	b.field(ident, row, "municipioResidencia")
	b.field(beneficiary, row, "numeroRegistroPlano")

	b.field(guide, row, "tipoEventoAtencao")
	b.field(guide, row, "origemEventoAtencao")
	b.field(guide, row, types.ColumnProviderGuide)
	b.field(guide, row, types.ColumnOperatorGuide)
	b.field(guide, row, types.ColumnReimbursement)
	b.field(guide, row, "identificacaoValorPreestabelecido")

	if hasAny(row, "formaRemuneracao", "valorRemuneracao") {
		pay := guide.Add(b.el("formasRemuneracao"))
		b.field(pay, row, "formaRemuneracao")
		b.field(pay, row, "valorRemuneracao")
	}

	b.field(guide, row, "guiaSolicitacaoInternacao")
	b.date(guide, row, "dataSolicitacao")
	b.field(guide, row, "numeroGuiaSPSADTPrincipal")
	b.date(guide, row, "dataAutorizacao")
	b.date(guide, row, "dataRealizacao")
	b.date(guide, row, "dataInicialFaturamento")
	b.date(guide, row, "dataFimPeriodo")
	b.date(guide, row, "dataProtocoloCobranca")
	b.date(guide, row, "dataPagamento")
	b.date(guide, row, "dataProcessamentoGuia")

	b.field(guide, row, "tipoConsulta")
	b.field(guide, row, "cboExecutante")
	b.field(guide, row, "indicacaoRecemNato")
	b.field(guide, row, "indicacaoAcidente")
	b.field(guide, row, "caraterAtendimento")
	b.field(guide, row, "tipoInternacao")
	b.field(guide, row, "regimeInternacao")

	if hasAny(row, indexedColumns("diagnosticoCID", maxDiagnoses)...) {
		diagnoses := guide.Add(b.el("diagnosticosCID10"))
		b.repeated(diagnoses, row, "diagnosticoCID", maxDiagnoses)
	}

	b.field(guide, row, "tipoAtendimento")
	b.field(guide, row, "regimeAtendimento")
	b.field(guide, row, "saudeOcupacional")
	b.field(guide, row, "tipoFaturamento")
	b.field(guide, row, "diariasAcompanhante")
	b.field(guide, row, "diariasUTI")
	b.field(guide, row, "motivoSaida")

	values := guide.Add(b.el("valoresGuia"))
	for _, tag := range guideValueTags {
		b.field(values, row, tag)
	}

	b.repeated(guide, row, "declaracaoNascido", maxDeclarations)
	b.repeated(guide, row, "declaracaoObito", maxDeclarations)

	for _, procRow := range g.Rows {
		guide.Add(b.buildProcedure(procRow))
	}
	return guide
}

func indexedColumns(base string, limit int) []string {
	cols := make([]string, limit)
	for n := 1; n <= limit; n++ {
		cols[n-1] = catalog.IndexedName(base, n)
	}
	return cols
}

// =============================================================================
// PROCEDURE ELEMENT
// =============================================================================

func (b *builder) buildProcedure(row *types.Row) *Element {
	proc := b.el("procedimentos")

	ident := proc.Add(b.el("identProcedimento"))
	b.field(ident, row, "codigoTabela")
	code := ident.Add(b.el("Procedimento"))
	if hasAny(row, "grupoProcedimento") {
		b.field(code, row, "grupoProcedimento")
	} else {
		b.field(code, row, "codigoProcedimento")
	}

	if hasAny(row, "codDente", "codRegiao") {
		region := proc.Add(b.el("denteRegiao"))
		if hasAny(row, "codDente") {
			b.field(region, row, "codDente")
		} else {
			b.field(region, row, "codRegiao")
		}
	}
	b.field(proc, row, "denteFace")

	b.field(proc, row, "quantidadeInformada")
	b.field(proc, row, "valorInformado")
	b.field(proc, row, "quantidadePaga")
	b.field(proc, row, "unidadeMedida")
	b.field(proc, row, "valorPagoProc")
	b.field(proc, row, "valorPagoFornecedor")
	b.field(proc, row, "CNPJFornecedor")
	b.field(proc, row, "valorCoParticipacao")

	// Procedure-level intermediary values live only in the "_proc" columns;
	// the plain columns belong to the guide.
	b.fieldAs(proc, row, "registroANSOperadoraIntermediaria_proc", "registroANSOperadoraIntermediaria")
	b.fieldAs(proc, row, "tipoAtendimentoOperadoraIntermediaria_proc", "tipoAtendimentoOperadoraIntermediaria")

	return proc
}

