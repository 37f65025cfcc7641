// =============================================================================
// XTE Converter - Monitoring Document Parser
// =============================================================================
//
// This module reads TISS monitoring documents (.xte / .xml) into a light
// element tree and flattens every guide into table rows.
//
// INPUT FORMAT:
//   - Namespaced XML (prefix "ans")
//   - Root element mensagemEnvioANS
//   - Usually ISO-8859-1 encoded; any charset named by the XML declaration
//     is accepted. A document that declares no charset, or declares UTF-8,
//     but is not valid UTF-8 is read as ISO-8859-1.
//
// Tags are matched by local name, so documents that bind the TISS namespace
// to a prefix other than "ans" read the same way.
//
// =============================================================================

package xteparser

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/charmap"
)

// Document constants.
const (
	Namespace   = "http://www.ans.gov.br/padroes/tiss/schemas"
	RootElement = "mensagemEnvioANS"
)

// =============================================================================
// ELEMENT TREE
// =============================================================================

// Node is one element of a parsed document.
type Node struct {
	// Name is the element name as read (namespace URI and local part).
	Name xml.Name

	// Text is the character data directly inside the element.
	Text string

	// HasText is true when the element carried any character data at all,
	// even whitespace. <a/> and <a></a> have none.
	HasText bool

	// Children are the child elements in document order.
	Children []*Node
}

// Local returns the element's local name.
func (n *Node) Local() string {
	if n == nil {
		return ""
	}
	return n.Name.Local
}

// IsLeaf reports whether the element has no element children.
func (n *Node) IsLeaf() bool {
	return n != nil && len(n.Children) == 0
}

// Child returns the first direct child with the given local name.
func (n *Node) Child(local string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name.Local == local {
			return c
		}
	}
	return nil
}

// Path follows a chain of direct children by local name.
func (n *Node) Path(locals ...string) *Node {
	cur := n
	for _, l := range locals {
		cur = cur.Child(l)
		if cur == nil {
			return nil
		}
	}
	return cur
}

// TextAt returns the trimmed text of the element at path, or "" when the
// element is missing.
func (n *Node) TextAt(locals ...string) string {
	target := n.Path(locals...)
	if target == nil {
		return ""
	}
	return strings.TrimSpace(target.Text)
}

// Descendants returns every descendant (not n itself) with the given local
// name, in document order.
func (n *Node) Descendants(local string) []*Node {
	var out []*Node
	n.walk(func(d *Node) {
		if d.Name.Local == local {
			out = append(out, d)
		}
	})
	return out
}

// FirstDescendant returns the first descendant with the given local name.
func (n *Node) FirstDescendant(local string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name.Local == local {
			return c
		}
		if d := c.FirstDescendant(local); d != nil {
			return d
		}
	}
	return nil
}

func (n *Node) walk(fn func(*Node)) {
	if n == nil {
		return
	}
	for _, c := range n.Children {
		fn(c)
		c.walk(fn)
	}
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// declaredEncoding matches the encoding pseudo-attribute of an XML
// declaration at the start of a document.
var declaredEncoding = regexp.MustCompile(`^\s*<\?xml[^>]*?\bencoding\s*=\s*["']([^"']*)["']`)

// Parse reads a whole document and returns its root element.
//
// PARAMETERS:
//   - r: The document bytes. The charset comes from the XML declaration;
//     undeclared or mislabeled UTF-8 falls back to ISO-8859-1.
//
// RETURNS:
//   - The root element.
//   - An error if the document is not well-formed or is not a monitoring
//     message.
func Parse(r io.Reader) (*Node, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return ParseBytes(data)
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(data []byte) (*Node, error) {
	data, err := normalizeLatin1(data)
	if err != nil {
		return nil, err
	}
	return parseTree(bytes.NewReader(data))
}

// normalizeLatin1 transcodes ISO-8859-1 bytes to UTF-8 when the document
// names no charset, or names UTF-8, and is not valid UTF-8. Documents that
// declare another charset are left to the decoder's CharsetReader.
func normalizeLatin1(data []byte) ([]byte, error) {
	if m := declaredEncoding.FindSubmatch(data); m != nil {
		label := strings.ToLower(strings.TrimSpace(string(m[1])))
		if label != "utf-8" && label != "utf8" {
			return data, nil
		}
	}
	if utf8.Valid(data) {
		return data, nil
	}
	utf, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ISO-8859-1 document: %w", err)
	}
	return utf, nil
}

func parseTree(r io.Reader) (*Node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{Name: t.Name}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			} else if root == nil {
				root = node
			}
			stack = append(stack, node)

		case xml.EndElement:
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.Text += string(t)
				top.HasText = true
			}
		}
	}

	if root == nil {
		return nil, errors.New("document has no root element")
	}
	if root.Name.Local != RootElement {
		return nil, fmt.Errorf("unexpected root element %q, want %q", root.Name.Local, RootElement)
	}
	return root, nil
}
