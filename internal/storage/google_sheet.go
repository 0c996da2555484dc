package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GoogleSheet is a Worksheet backed by the first tab of a Google spreadsheet.
type GoogleSheet struct {
	svc           *sheets.Service
	spreadsheetID string
	title         string
	sheetID       int64
}

// NewGoogleSheet authorises with a service account key and resolves the first tab.
func NewGoogleSheet(ctx context.Context, credentialsJSON []byte, spreadsheetID string) (*GoogleSheet, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	ss, err := svc.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to open spreadsheet %s: %w", spreadsheetID, err)
	}
	if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
		return nil, fmt.Errorf("spreadsheet %s has no sheets", spreadsheetID)
	}
	props := ss.Sheets[0].Properties

	return &GoogleSheet{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		title:         props.Title,
		sheetID:       props.SheetId,
	}, nil
}

func (g *GoogleSheet) Rows(ctx context.Context) ([][]string, error) {
	resp, err := g.svc.Spreadsheets.Values.Get(g.spreadsheetID, g.a1("")).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	rows := make([][]string, len(resp.Values))
	for i, raw := range resp.Values {
		row := make([]string, len(raw))
		for j, v := range raw {
			row[j] = fmt.Sprint(v)
		}
		rows[i] = row
	}
	return rows, nil
}

func (g *GoogleSheet) AppendRow(ctx context.Context, values []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(values)}}
	_, err := g.svc.Spreadsheets.Values.Append(g.spreadsheetID, g.a1("A1"), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (g *GoogleSheet) UpdateCell(ctx context.Context, row, col int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err = g.svc.Spreadsheets.Values.Update(g.spreadsheetID, g.a1(cell), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

func (g *GoogleSheet) DeleteRow(ctx context.Context, row int) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    g.sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}},
	}
	_, err := g.svc.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do()
	return err
}

func (g *GoogleSheet) SetHeader(ctx context.Context, header []string) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{toInterfaces(header)}}
	_, err := g.svc.Spreadsheets.Values.Update(g.spreadsheetID, g.a1("A1"), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}

// a1 builds an A1 range on this tab; an empty cell selects the whole tab.
func (g *GoogleSheet) a1(cell string) string {
	name := "'" + strings.ReplaceAll(g.title, "'", "''") + "'"
	if cell == "" {
		return name
	}
	return name + "!" + cell
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
