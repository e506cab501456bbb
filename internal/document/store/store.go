package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

// Document types known to the pipeline.
const (
	DocumentTypeQuote    = "quote"
	DocumentTypeContract = "contract"
	DocumentTypeInvoice  = "invoice"
)

// Store persists generated binaries under deterministic paths. Save must
// overwrite existing content without error so a re-send can regenerate.
type Store interface {
	Save(ctx context.Context, path string, data []byte) error
}

var (
	ErrStorage     = errors.New("storage_failed")
	ErrInvalidPath = errors.New("invalid_storage_path")
)

var filenamePrefixes = map[string]string{
	DocumentTypeQuote:    "Quote",
	DocumentTypeContract: "Contract",
	DocumentTypeInvoice:  "Invoice",
}

// Operators script against stored filenames, so hyphens survive and every
// other non-alphanumeric becomes an underscore.
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9-]`)

// DocumentPath derives the canonical storage path for an entity document,
// e.g. quote Q-123456 maps to quotes/Quote_Q-123456.pdf.
func DocumentPath(documentType, number string) (string, error) {
	prefix, ok := filenamePrefixes[documentType]
	if !ok {
		return "", fmt.Errorf("%w: unknown document type %q", ErrInvalidPath, documentType)
	}
	sanitized := unsafeChars.ReplaceAllString(number, "_")
	if sanitized == "" {
		return "", fmt.Errorf("%w: empty document number", ErrInvalidPath)
	}
	return fmt.Sprintf("%ss/%s_%s.pdf", documentType, prefix, sanitized), nil
}
