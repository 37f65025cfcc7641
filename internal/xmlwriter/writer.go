package xmlwriter

import (
	"bytes"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/XTE-Excel-conversion/internal/types"
)

// =============================================================================
// XML GENERATION
// =============================================================================

// Generate builds, hashes and serializes the document for one origin.
//
// PARAMETERS:
//   - guides: The origin's guides in output order.
//   - now: Generation time for the header timestamps.
//   - opts: Generation options.
//
// RETURNS:
//   - The ISO-8859-1 encoded document.
//   - An error if any part cannot be produced; no partial document is
//     returned.
func Generate(guides []types.GuideGroup, now time.Time, opts Options) ([]byte, error) {
	doc := Build(guides, now, opts)

	if _, err := Finalize(doc); err != nil {
		return nil, fmt.Errorf("failed to compute hash: %w", err)
	}

	out, err := Render(doc.Root, opts.withDefaults().Indent)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize document: %w", err)
	}
	return out, nil
}

// =============================================================================
// PRETTY PRINTER
// =============================================================================

// Render serializes an element tree: XML declaration, one element per line
// indented by indent per level, leaf text inline, empty elements
// self-closed, encoded as ISO-8859-1.
func Render(root *Element, indent string) ([]byte, error) {
	var buffer bytes.Buffer
	buffer.WriteString(`<?xml version="1.0" encoding="iso-8859-1"?>` + "\n")
	writeElement(&buffer, root, indent, 0)

	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes(buffer.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to encode as ISO-8859-1: %w", err)
	}
	return encoded, nil
}

// writeElement writes a single element and its children recursively.
func writeElement(buffer *bytes.Buffer, element *Element, indent string, level int) {
	// Write indentation.
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	// Write opening tag.
	buffer.WriteString("<")
	buffer.WriteString(element.Name)

	// Write attributes.
	for _, attr := range element.Attributes {
		buffer.WriteString(fmt.Sprintf(" %s=\"%s\"", attr.Name, escapeXML(attr.Value)))
	}

	// Check if element has children or value.
	if len(element.Children) == 0 && element.Value == "" {
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	if len(element.Children) == 0 {
		buffer.WriteString(escapeXML(element.Value))
	} else {
		buffer.WriteString("\n")

		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}

		// Write indentation for closing tag.
		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	// Write closing tag.
	buffer.WriteString("</")
	buffer.WriteString(element.Name)
	buffer.WriteString(">\n")
}

// escapeXML escapes the characters that are markup in text and attributes.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}

// =============================================================================
// OUTPUT NAMING
// =============================================================================

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// OutputStem derives the output file stem from an origin name: the
// extension is removed and every character outside [A-Za-z0-9_-] becomes
// an underscore.
//
// EXAMPLE:
//
//	"Lote Março.xte" -> "Lote_Mar_o"
func OutputStem(origin string) string {
	base := strings.TrimSpace(origin)
	if ext := filepath.Ext(base); ext != "" && ext != filepath.Base(base) {
		base = strings.TrimSuffix(base, ext)
	}
	stem := unsafeFileChars.ReplaceAllString(base, "_")
	if stem == "" {
		return "documento"
	}
	return stem
}
