// Package pdftext turns PDF bytes into plain text. Parsing is deterministic,
// so failures are terminal: retrying a malformed file cannot help.
package pdftext

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
	"go.uber.org/zap"
)

// ErrNoText is returned when the input is not a parseable PDF or contains
// no extractable text runs. Callers treat both the same way.
var ErrNoText = errors.New("no text could be extracted from PDF")

// Extractor extracts plain text from PDF documents
type Extractor struct {
	logger *zap.Logger
}

// NewExtractor creates a new PDF text extractor
func NewExtractor(logger *zap.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Extract concatenates all text runs of the document in page order and trims
// the result. A result that trims to the empty string is ErrNoText.
func (e *Extractor) Extract(data []byte) (string, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		e.logger.Warn("Failed to open document", zap.Error(err), zap.Int("size_bytes", len(data)))
		return "", fmt.Errorf("%w: %v", ErrNoText, err)
	}
	defer doc.Close()

	var sb strings.Builder
	pageCount := doc.NumPage()
	for pageNum := 0; pageNum < pageCount; pageNum++ {
		pageText, err := doc.Text(pageNum)
		if err != nil {
			e.logger.Warn("Failed to extract page text",
				zap.Int("page", pageNum),
				zap.Error(err))
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString(" ")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrNoText
	}

	e.logger.Debug("Extracted text from PDF",
		zap.Int("pages", pageCount),
		zap.Int("chars", len(text)))
	return text, nil
}
