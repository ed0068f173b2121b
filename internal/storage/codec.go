package storage

import (
	"encoding/json"
	"fmt"

	"github.com/rezkam/gtf/internal/domain"
)

// Encode renders doc as indented JSON, the on-disk and on-wire format.
func Encode(doc *domain.Document) ([]byte, error) {
	if doc == nil {
		doc = domain.NewDocument()
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a document. Only a syntax error or a payload whose shape is
// not a document yields ErrMalformedDocument; record-level problems such as
// missing or repeated ids are left for the caller to repair.
func Decode(data []byte) (*domain.Document, error) {
	var doc domain.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
	}
	return &doc, nil
}
