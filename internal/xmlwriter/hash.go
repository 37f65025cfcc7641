package xmlwriter

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// =============================================================================
// INTEGRITY HASH
// =============================================================================

// ContentHash computes the epilogue digest of a document: the MD5, in
// lowercase hex, of the ISO-8859-1 bytes of the trimmed text of cabecalho
// followed by Mensagem, depth first. Formatting whitespace never takes part.
//
// RETURNS:
//   - The hex digest.
//   - An error if the content has characters ISO-8859-1 cannot represent.
func ContentHash(header, message *Element) (string, error) {
	var sb strings.Builder
	collectText(&sb, header)
	collectText(&sb, message)

	encoded, err := charmap.ISO8859_1.NewEncoder().String(sb.String())
	if err != nil {
		return "", fmt.Errorf("content is not representable in ISO-8859-1: %w", err)
	}

	sum := md5.Sum([]byte(encoded))
	return hex.EncodeToString(sum[:]), nil
}

func collectText(sb *strings.Builder, e *Element) {
	if e == nil {
		return
	}
	sb.WriteString(strings.TrimSpace(e.Value))
	for _, c := range e.Children {
		collectText(sb, c)
	}
}

// Finalize hashes the document and appends the epilogo/hash block.
// Calling it twice is an error.
func Finalize(doc *Document) (string, error) {
	epilogue := doc.prefix + ":epilogo"
	if doc.Root.Find(epilogue) != nil {
		return "", fmt.Errorf("document already has an epilogue")
	}

	digest, err := ContentHash(doc.Header, doc.Message)
	if err != nil {
		return "", err
	}

	block := &Element{Name: epilogue}
	block.Add(&Element{Name: doc.prefix + ":hash", Value: digest})
	doc.Root.Add(block)
	return digest, nil
}
