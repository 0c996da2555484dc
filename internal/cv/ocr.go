package cv

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"code.sajari.com/docconv"
)

// PopplerOCR rasterizes PDFs with poppler's pdftoppm and recognises images with
// docconv, which runs tesseract when the binary is built with -tags ocr.
type PopplerOCR struct {
	Binary string
}

func NewPopplerOCR() *PopplerOCR {
	return &PopplerOCR{Binary: "pdftoppm"}
}

func (o *PopplerOCR) Rasterize(ctx context.Context, pdfPath string, dpi int) ([]string, func(), error) {
	dir, err := os.MkdirTemp("", "smarthire-pages-*")
	if err != nil {
		return nil, func() {}, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	cmd := exec.CommandContext(ctx, o.Binary, "-r", strconv.Itoa(dpi), "-png", pdfPath, filepath.Join(dir, "page"))
	if out, err := cmd.CombinedOutput(); err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("%s: %w: %s", o.Binary, err, bytes.TrimSpace(out))
	}

	pages, err := filepath.Glob(filepath.Join(dir, "page-*.png"))
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	// pdftoppm zero-pads page numbers to a common width.
	sort.Strings(pages)
	return pages, cleanup, nil
}

func (o *PopplerOCR) Recognize(ctx context.Context, imagePath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return convertFile(imagePath, docconv.ConvertImage)
}
