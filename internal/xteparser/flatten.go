package xteparser

import (
	"strings"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/catalog"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/transform"
	"github.com/ginjaninja78/XTE-Excel-conversion/internal/types"
)

// =============================================================================
// HEADER EXTRACTION
// =============================================================================

// HeaderFields are the transaction metadata columns copied onto every row,
// in output order.
var HeaderFields = []string{
	"tipoTransacao",
	"numeroLote",
	"competenciaLote",
	"dataRegistroTransacao",
	"horaRegistroTransacao",
	"registroANS",
	"versaoPadrao",
}

// ExtractHeader reads the transaction header. Every header column is
// present in the result; missing elements yield "".
func ExtractHeader(root *Node) *types.Row {
	header := types.NewRow()

	cab := root.FirstDescendant("cabecalho")
	ident := cab.Child("identificacaoTransacao")

	for _, name := range HeaderFields[:5] {
		header.Set(name, ident.TextAt(name))
	}
	header.Set("registroANS", cab.TextAt("registroANS"))
	header.Set("versaoPadrao", cab.TextAt("versaoPadrao"))

	return header
}

// =============================================================================
// FLATTENING RULES
// =============================================================================

// guideContainers are never emitted as columns; their children are.
var guideContainers = map[string]bool{
	"guiaMonitoramento":         true,
	"procedimentos":             true,
	"dadosContratadoExecutante": true,
	"dadosBeneficiario":         true,
	"identBeneficiario":         true,
	"formasRemuneracao":         true,
	"diagnosticosCID10":         true,
	"valoresGuia":               true,
}

var procedureContainers = map[string]bool{
	"procedimentos":     true,
	"identProcedimento": true,
	"Procedimento":      true,
	"denteRegiao":       true,
	"detalhePacote":     true,
}

// explicitField maps a column to the element path it is read from, relative
// to its enclosing block.
type explicitField struct {
	column string
	path   []string
}

var executorFields = []explicitField{
	{"CNES", []string{"CNES"}},
	{"identificadorExecutante", []string{"identificadorExecutante"}},
	{"codigoCNPJ_CPF", []string{"codigoCNPJ_CPF"}},
	{"municipioExecutante", []string{"municipioExecutante"}},
}

var beneficiaryFields = []explicitField{
	{"numeroCartaoNacionalSaude", []string{"numeroCartaoNacionalSaude"}},
	{"cpfBeneficiario", []string{"cpfBeneficiario"}},
	{"sexo", []string{"sexo"}},
	{"dataNascimento", []string{"dataNascimento"}},
	{"municipioResidencia", []string{"municipioResidencia"}},
}

var procedureFields = []explicitField{
	{"codigoTabela", []string{"identProcedimento", "codigoTabela"}},
	{"grupoProcedimento", []string{"identProcedimento", "Procedimento", "grupoProcedimento"}},
	{"codigoProcedimento", []string{"identProcedimento", "Procedimento", "codigoProcedimento"}},
	{"quantidadeInformada", []string{"quantidadeInformada"}},
	{"valorInformado", []string{"valorInformado"}},
	{"quantidadePaga", []string{"quantidadePaga"}},
	{"unidadeMedida", []string{"unidadeMedida"}},
	{"valorPagoProc", []string{"valorPagoProc"}},
	{"valorPagoFornecedor", []string{"valorPagoFornecedor"}},
	{"CNPJFornecedor", []string{"CNPJFornecedor"}},
	{"valorCoParticipacao", []string{"valorCoParticipacao"}},
	{"registroANSOperadoraIntermediaria_proc", []string{"registroANSOperadoraIntermediaria"}},
	{"tipoAtendimentoOperadoraIntermediaria_proc", []string{"tipoAtendimentoOperadoraIntermediaria"}},
}

// procedureExplicitTags holds the leaf tag names read explicitly, which the
// generic procedure walk skips.
var procedureExplicitTags = func() map[string]bool {
	tags := make(map[string]bool, len(procedureFields))
	for _, f := range procedureFields {
		tags[f.path[len(f.path)-1]] = true
	}
	return tags
}()

// leafValue returns the trimmed text of a leaf, converting ISO dates to
// DD/MM/YYYY when the tag name mentions "data".
func leafValue(n *Node) string {
	text := strings.TrimSpace(n.Text)
	if strings.Contains(strings.ToLower(n.Local()), "data") {
		if br, ok := transform.ISOToBR(text); ok {
			return br
		}
	}
	return text
}

// =============================================================================
// LAYER ACCUMULATOR
// =============================================================================

// layer collects the leaves of one level (guide or procedure) and applies
// the catalog merge policy to repeated tags.
type layer struct {
	catalog *catalog.Catalog
	row     *types.Row
	counts  map[string]int
}

func newLayer(cat *catalog.Catalog, row *types.Row) *layer {
	return &layer{catalog: cat, row: row, counts: make(map[string]int)}
}

func (l *layer) put(tag, value string) {
	l.counts[tag]++
	n := l.counts[tag]

	switch l.catalog.MergePolicyOf(tag) {
	case catalog.MergeFirst:
		if n == 1 {
			l.row.Set(tag, value)
		}
	case catalog.MergeIndexed:
		if limit := l.catalog.MaxOccursOf(tag); limit > 0 && n > limit {
			return
		}
		l.row.Set(catalog.IndexedName(tag, n), value)
	default:
		l.row.Set(tag, value)
	}
}

// collect walks the descendants of n in document order. Containers are
// entered but never emitted; skip reports subtrees or tags to ignore.
func (l *layer) collect(n *Node, containers map[string]bool, skip func(*Node) bool) {
	for _, c := range n.Children {
		if skip(c) {
			continue
		}
		tag := c.Local()
		if containers[tag] || !c.IsLeaf() {
			l.collect(c, containers, skip)
			continue
		}
		if c.HasText {
			l.put(tag, leafValue(c))
		}
	}
}

// =============================================================================
// FLATTENER
// =============================================================================

// Flattener turns monitoring guides into rows, one per procedure.
type Flattener struct {
	catalog *catalog.Catalog
}

// NewFlattener creates a flattener that resolves repeated tags with the
// catalog's merge policies.
func NewFlattener(cat *catalog.Catalog) *Flattener {
	return &Flattener{catalog: cat}
}

// Flatten extracts the header and every guide of a document.
//
// RETURNS:
//   - One row per procedure, or one row per guide that has no procedures.
//     Every row starts with the header columns.
func (f *Flattener) Flatten(root *Node) []*types.Row {
	header := ExtractHeader(root)

	var rows []*types.Row
	for _, guide := range root.Descendants("guiaMonitoramento") {
		rows = append(rows, f.FlattenGuide(guide, header)...)
	}
	return rows
}

// FlattenGuide flattens one guide.
//
// The guide layer holds the header plus every guide-level leaf outside the
// procedure blocks; the executor and beneficiary blocks are then re-read
// explicitly. Each procedure row is the guide layer overlaid by the
// procedure's generic leaves and then by its explicit fields.
func (f *Flattener) FlattenGuide(guide *Node, header *types.Row) []*types.Row {
	guideRow := header.Clone()
	newLayer(f.catalog, guideRow).collect(guide, guideContainers, func(n *Node) bool {
		return n.Local() == "procedimentos"
	})
	f.readExecutor(guide, guideRow)
	f.readBeneficiary(guide, guideRow)

	procedures := guide.Descendants("procedimentos")
	if len(procedures) == 0 {
		return []*types.Row{guideRow}
	}

	rows := make([]*types.Row, 0, len(procedures))
	for _, proc := range procedures {
		generic := types.NewRow()
		newLayer(f.catalog, generic).collect(proc, procedureContainers, func(n *Node) bool {
			return n.IsLeaf() && procedureExplicitTags[n.Local()]
		})

		explicit := types.NewRow()
		for _, field := range procedureFields {
			explicit.Set(field.column, proc.TextAt(field.path...))
		}

		row := guideRow.Clone()
		row.Merge(generic)
		row.Merge(explicit)
		rows = append(rows, row)
	}
	return rows
}

func (f *Flattener) readExecutor(guide *Node, row *types.Row) {
	block := guide.FirstDescendant("dadosContratadoExecutante")
	if block == nil {
		return
	}
	for _, field := range executorFields {
		row.Set(field.column, block.TextAt(field.path...))
	}
}

func (f *Flattener) readBeneficiary(guide *Node, row *types.Row) {
	block := guide.FirstDescendant("dadosBeneficiario")
	if block == nil {
		return
	}
	if ident := block.FirstDescendant("identBeneficiario"); ident != nil {
		for _, field := range beneficiaryFields {
			value := ident.TextAt(field.path...)
			if field.column == "dataNascimento" {
				if br, ok := transform.ISOToBR(value); ok {
					value = br
				}
			}
			row.Set(field.column, value)
		}
	}
	row.Set("numeroRegistroPlano", block.TextAt("numeroRegistroPlano"))
}
