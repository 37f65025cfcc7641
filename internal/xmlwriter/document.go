// =============================================================================
// XTE Converter - XML Writer Module
// =============================================================================
//
// This module generates TISS monitoring documents from grouped table rows.
//
// XML STRUCTURE:
//
//	<?xml version="1.0" encoding="iso-8859-1"?>
//	<ans:mensagemEnvioANS xmlns:xsi=... xmlns:xsd=... xsi:schemaLocation=... xmlns:ans=...>
//	  <ans:cabecalho>
//	    <ans:identificacaoTransacao>...</ans:identificacaoTransacao>
//	    <ans:registroANS>...</ans:registroANS>
//	    <ans:versaoPadrao>...</ans:versaoPadrao>
//	  </ans:cabecalho>
//	  <ans:Mensagem>
//	    <ans:operadoraParaANS>
//	      <ans:guiaMonitoramento>...</ans:guiaMonitoramento>
//	    </ans:operadoraParaANS>
//	  </ans:Mensagem>
//	  <ans:epilogo>
//	    <ans:hash>...</ans:hash>
//	  </ans:epilogo>
//	</ans:mensagemEnvioANS>
//
// GENERATION STEPS:
//  1. Build the element tree (Build)
//  2. Hash the header and message content and append the epilogue (Finalize)
//  3. Pretty-print in ISO-8859-1 (Render)
//
// =============================================================================

package xmlwriter

import (
	"strings"
	"time"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/types"
)

// =============================================================================
// XML ELEMENT STRUCTURE
// =============================================================================

// Attr is one attribute, written in declaration order.
type Attr struct {
	Name  string
	Value string
}

// Element is one element of a generated document.
type Element struct {
	// Name is the qualified element name, e.g. "ans:cabecalho".
	Name string

	// Attributes are written in order.
	Attributes []Attr

	// Value is the text content of a leaf element.
	Value string

	// Children are the child elements.
	Children []*Element
}

// Add appends child and returns it.
func (e *Element) Add(child *Element) *Element {
	e.Children = append(e.Children, child)
	return child
}

// Find returns the first direct child with the given qualified name.
func (e *Element) Find(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// =============================================================================
// GENERATION OPTIONS
// =============================================================================

// Options configures document generation.
type Options struct {
	// Prefix is the namespace prefix of every element.
	// Default: "ans"
	Prefix string

	// Namespace is the TISS schema namespace.
	Namespace string

	// SchemaFile is the schema file named in xsi:schemaLocation.
	// Default: "tissMonitoramentoV1_04_01.xsd"
	SchemaFile string

	// SchemaVersion fills versaoPadrao when the table leaves it blank.
	// Default: "1.04.01"
	SchemaVersion string

	// TransactionType is the fixed tipoTransacao literal.
	// Default: "MONITORAMENTO"
	TransactionType string

	// Indent is the string used for one indentation level.
	// Default: "  " (2 spaces)
	Indent string

	// AcceptedSexCodes are the sexo values that are written. Any other
	// non-empty value is omitted.
	// Default: "1", "3"
	AcceptedSexCodes []string
}

// DefaultOptions returns the monitoring schema 1.04.01 settings.
func DefaultOptions() Options {
	return Options{
		Prefix:           "ans",
		Namespace:        "http://www.ans.gov.br/padroes/tiss/schemas",
		SchemaFile:       "tissMonitoramentoV1_04_01.xsd",
		SchemaVersion:    "1.04.01",
		TransactionType:  "MONITORAMENTO",
		Indent:           "  ",
		AcceptedSexCodes: []string{"1", "3"},
	}
}

// AcceptsSex reports whether a sexo code is written to the document.
func (o Options) AcceptsSex(code string) bool {
	code = strings.TrimSpace(code)
	for _, c := range o.AcceptedSexCodes {
		if c == code {
			return true
		}
	}
	return false
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Prefix == "" {
		o.Prefix = d.Prefix
	}
	if o.Namespace == "" {
		o.Namespace = d.Namespace
	}
	if o.SchemaFile == "" {
		o.SchemaFile = d.SchemaFile
	}
	if o.SchemaVersion == "" {
		o.SchemaVersion = d.SchemaVersion
	}
	if o.TransactionType == "" {
		o.TransactionType = d.TransactionType
	}
	if o.AcceptedSexCodes == nil {
		o.AcceptedSexCodes = d.AcceptedSexCodes
	}
	return o
}

// =============================================================================
// DOCUMENT STRUCTURE
// =============================================================================

// Document is a generated document before serialization.
type Document struct {
	// Root is the mensagemEnvioANS envelope.
	Root *Element

	// Header is the cabecalho block.
	Header *Element

	// Message is the Mensagem block holding the guides.
	Message *Element

	prefix string
}

// Build constructs the document for one origin.
//
// PARAMETERS:
//   - guides: The origin's guides, in output order. The first row of the
//     first guide supplies the header values.
//   - now: Generation time, written as the transaction timestamp pair.
//   - opts: Generation options.
//
// RETURNS:
//   - The document without its epilogue.
func Build(guides []types.GuideGroup, now time.Time, opts Options) *Document {
	opts = opts.withDefaults()
	b := &builder{opts: opts}

	root := b.el("mensagemEnvioANS")
	root.Attributes = []Attr{
		{Name: "xmlns:xsi", Value: "http://www.w3.org/2001/XMLSchema-instance"},
		{Name: "xmlns:xsd", Value: "http://www.w3.org/2001/XMLSchema"},
		{Name: "xsi:schemaLocation", Value: opts.Namespace + " " + opts.Namespace + "/" + opts.SchemaFile},
		{Name: "xmlns:" + opts.Prefix, Value: opts.Namespace},
	}

	first := types.NewRow()
	if len(guides) > 0 && len(guides[0].Rows) > 0 {
		first = guides[0].Rows[0]
	}

	header := root.Add(b.buildHeader(first, now))
	message := root.Add(b.el("Mensagem"))
	operator := message.Add(b.el("operadoraParaANS"))
	for _, g := range guides {
		operator.Add(b.buildGuide(g))
	}

	return &Document{Root: root, Header: header, Message: message, prefix: opts.Prefix}
}

func (b *builder) buildHeader(row *types.Row, now time.Time) *Element {
	cab := b.el("cabecalho")

	ident := cab.Add(b.el("identificacaoTransacao"))
	b.text(ident, "tipoTransacao", b.opts.TransactionType)
	b.field(ident, row, "numeroLote")
	b.field(ident, row, "competenciaLote")
	b.text(ident, "dataRegistroTransacao", now.Format("2006-01-02"))
	b.text(ident, "horaRegistroTransacao", now.Format("15:04:05"))

	b.field(cab, row, "registroANS")
	version := strings.TrimSpace(row.Value("versaoPadrao"))
	if version == "" {
		version = b.opts.SchemaVersion
	}
	b.text(cab, "versaoPadrao", version)

	return cab
}
