package storage

import "context"

// SheetHeader is the fixed column layout of the tabular backend.
var SheetHeader = []string{
	"Timestamp",
	"Full Name",
	"Email",
	"Phone",
	"Location",
	"Skills",
	"Education",
	"Experience",
	"Last Job Title",
	"Source",
	"Confidence",
	"Candidate ID",
	"Status",
}

// Worksheet is the positional spreadsheet surface the tabular store needs.
// Row and column numbers are 1-based; row 1 is the header.
type Worksheet interface {
	// Rows returns every populated row, header included. Rows may be shorter than the header.
	Rows(ctx context.Context) ([][]string, error)
	AppendRow(ctx context.Context, values []string) error
	UpdateCell(ctx context.Context, row, col int, value string) error
	DeleteRow(ctx context.Context, row int) error
	SetHeader(ctx context.Context, header []string) error
}

func headerMatches(row []string) bool {
	if len(row) < len(SheetHeader) {
		return false
	}
	for i, h := range SheetHeader {
		if row[i] != h {
			return false
		}
	}
	return true
}
