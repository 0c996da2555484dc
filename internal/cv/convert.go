package cv

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
)

// DocconvConverter reads PDF and DOCX text layers with docconv. PDFs fall back to
// the pure-Go ledongthuc reader when pdftotext is unavailable or returns nothing.
type DocconvConverter struct{}

func (DocconvConverter) PDFText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, convErr := convertFile(path, docconv.ConvertPDF)
	if convErr == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	fallback, err := pdfReaderText(path)
	if err != nil {
		if convErr != nil {
			return "", fmt.Errorf("docconv: %v; pdf reader: %w", convErr, err)
		}
		return "", err
	}
	return fallback, nil
}

func (DocconvConverter) DocxText(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return convertFile(path, docconv.ConvertDocx)
}

func convertFile(path string, convert func(io.Reader) (string, map[string]string, error)) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	text, _, err := convert(f)
	if err != nil {
		return "", err
	}
	return text, nil
}

// pdfReaderText extracts the plain text of every page. The reader panics on some
// malformed files, which is reported as an error.
func pdfReaderText(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	rs, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(rs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
