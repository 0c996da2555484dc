package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// XLSXSheet is a Worksheet backed by the first sheet of a local .xlsx workbook.
// The workbook is opened and saved on every call.
type XLSXSheet struct {
	path string
}

// NewXLSXSheet creates an empty workbook at path when none exists.
func NewXLSXSheet(path string) (*XLSXSheet, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create workbook dir: %w", err)
		}
		f := excelize.NewFile()
		defer f.Close()
		if err := f.SaveAs(path); err != nil {
			return nil, fmt.Errorf("failed to create workbook: %w", err)
		}
	} else if err != nil {
		return nil, err
	}
	return &XLSXSheet{path: path}, nil
}

func (x *XLSXSheet) Rows(ctx context.Context) ([][]string, error) {
	var rows [][]string
	err := x.with(ctx, false, func(f *excelize.File, sheet string) error {
		var err error
		rows, err = f.GetRows(sheet)
		return err
	})
	return rows, err
}

func (x *XLSXSheet) AppendRow(ctx context.Context, values []string) error {
	return x.with(ctx, true, func(f *excelize.File, sheet string) error {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return err
		}
		return writeRow(f, sheet, len(rows)+1, values)
	})
}

func (x *XLSXSheet) UpdateCell(ctx context.Context, row, col int, value string) error {
	return x.with(ctx, true, func(f *excelize.File, sheet string) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return f.SetCellStr(sheet, cell, value)
	})
}

func (x *XLSXSheet) DeleteRow(ctx context.Context, row int) error {
	return x.with(ctx, true, func(f *excelize.File, sheet string) error {
		return f.RemoveRow(sheet, row)
	})
}

func (x *XLSXSheet) SetHeader(ctx context.Context, header []string) error {
	return x.with(ctx, true, func(f *excelize.File, sheet string) error {
		return writeRow(f, sheet, 1, header)
	})
}

func (x *XLSXSheet) with(ctx context.Context, save bool, fn func(f *excelize.File, sheet string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f, err := excelize.OpenFile(x.path)
	if err != nil {
		return fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return fmt.Errorf("workbook %s has no sheets", x.path)
	}
	if err := fn(f, sheets[0]); err != nil {
		return err
	}
	if save {
		return f.Save()
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := toInterfaces(values)
	return f.SetSheetRow(sheet, cell, &cells)
}
