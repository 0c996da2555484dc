package cv

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"smarthire/internal/logger"
)

// DefaultOCRDPI is the rasterization resolution for scanned PDFs.
const DefaultOCRDPI = 300

type format string

const (
	formatPlain   format = "plain"
	formatWord    format = "word"
	formatPDF     format = "pdf"
	formatImage   format = "image"
	formatUnknown format = "unknown"
)

var imageSuffixes = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".tiff": true, ".tif": true,
	".bmp": true, ".gif": true, ".webp": true,
}

// DocumentConverter pulls the text layer out of office documents.
type DocumentConverter interface {
	PDFText(ctx context.Context, path string) (string, error)
	DocxText(ctx context.Context, path string) (string, error)
}

// OCR turns page images into text. Rasterize returns one image path per page and
// a cleanup func that removes them.
type OCR interface {
	Rasterize(ctx context.Context, pdfPath string, dpi int) ([]string, func(), error)
	Recognize(ctx context.Context, imagePath string) (string, error)
}

// ExtractionError wraps a format-specific extraction failure for one attachment.
type ExtractionError struct {
	Filename string
	Format   string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s text from %q: %v", e.Format, e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// TextExtractor picks an extraction strategy from the file suffix and content type.
type TextExtractor struct {
	docs DocumentConverter
	ocr  OCR
	dpi  int
	log  zerolog.Logger
}

func NewTextExtractor(docs DocumentConverter, ocr OCR, dpi int) *TextExtractor {
	if dpi <= 0 {
		dpi = DefaultOCRDPI
	}
	return &TextExtractor{docs: docs, ocr: ocr, dpi: dpi, log: logger.Component("text_extractor")}
}

// Extract returns the raw text of the file at path. Failures come back as *ExtractionError.
func (x *TextExtractor) Extract(ctx context.Context, path, contentType string) (string, error) {
	f := detectFormat(path, contentType)

	var (
		text string
		err  error
	)
	switch f {
	case formatPlain:
		text, err = readPlain(path)
	case formatWord:
		text, err = x.docs.DocxText(ctx, path)
	case formatPDF:
		text, err = x.extractPDF(ctx, path)
	case formatImage:
		text, err = x.ocr.Recognize(ctx, path)
	default:
		// Unlabelled office documents are more common than unlabelled plain text.
		text, err = x.docs.DocxText(ctx, path)
		if err != nil {
			x.log.Debug().Err(err).Str("file", filepath.Base(path)).Msg("word extraction failed for unknown format, reading as plain text")
			text, err = readPlain(path)
		}
	}
	if err != nil {
		return "", &ExtractionError{Filename: filepath.Base(path), Format: string(f), Err: err}
	}
	return text, nil
}

// extractPDF accepts the text layer only when it reads as prose; otherwise the
// pages are rasterized and recognised.
func (x *TextExtractor) extractPDF(ctx context.Context, path string) (string, error) {
	text, err := x.docs.PDFText(ctx, path)
	switch {
	case err != nil:
		x.log.Warn().Err(err).Str("file", filepath.Base(path)).Msg("structured PDF extraction failed, falling back to OCR")
	case !IsMeaningful(text):
		x.log.Info().Str("file", filepath.Base(path)).Msg("PDF text layer too sparse, falling back to OCR")
	case IsMetadataNoise(text):
		x.log.Info().Str("file", filepath.Base(path)).Msg("PDF text layer is object syntax, falling back to OCR")
	default:
		return text, nil
	}
	return x.ocrPDF(ctx, path)
}

func (x *TextExtractor) ocrPDF(ctx context.Context, path string) (string, error) {
	pages, cleanup, err := x.ocr.Rasterize(ctx, path, x.dpi)
	if err != nil {
		return "", fmt.Errorf("rasterize: %w", err)
	}
	defer cleanup()

	chunks := make([]string, 0, len(pages))
	for i, page := range pages {
		text, err := x.ocr.Recognize(ctx, page)
		if err != nil {
			return "", fmt.Errorf("ocr page %d: %w", i+1, err)
		}
		chunks = append(chunks, text)
	}
	return strings.Join(chunks, "\n"), nil
}

func detectFormat(path, contentType string) format {
	ext := strings.ToLower(filepath.Ext(path))
	ct := strings.ToLower(contentType)

	switch {
	case ext == ".txt" || ext == ".md" || ext == ".csv":
		return formatPlain
	case ext == ".docx":
		return formatWord
	case ext == ".pdf":
		return formatPDF
	case imageSuffixes[ext] || strings.Contains(ct, "image"):
		return formatImage
	}

	if ext == "" {
		switch {
		case strings.Contains(ct, "pdf"):
			return formatPDF
		case strings.Contains(ct, "wordprocessingml"):
			return formatWord
		case strings.HasPrefix(ct, "text/"):
			return formatPlain
		}
	}
	return formatUnknown
}

// readPlain decodes a file as UTF-8, dropping invalid byte sequences.
func readPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
