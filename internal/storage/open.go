package storage

import (
	"context"
	"fmt"

	"smarthire/internal/config"
	"smarthire/internal/logger"
)

// Open picks the candidate backend once at startup: the Google spreadsheet when
// credentials and a sheet id are configured, then an .xlsx workbook when
// WorksheetPath is set, otherwise the local JSON file. A spreadsheet that cannot
// be reached falls back to the next option.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	log := logger.Component("storage")

	if cfg.GoogleConfigured() {
		st, err := openGoogle(ctx, cfg)
		if err == nil {
			log.Info().Str("backend", "google_sheets").Str("sheet_id", cfg.GoogleSheetsID).Msg("candidate store ready")
			return st, nil
		}
		log.Warn().Err(err).Msg("google sheet unavailable; falling back to local storage")
	}

	if cfg.WorksheetPath != "" {
		ws, err := NewXLSXSheet(cfg.WorksheetPath)
		if err != nil {
			return nil, err
		}
		st, err := NewSheetStore(ctx, ws)
		if err != nil {
			return nil, err
		}
		log.Info().Str("backend", "xlsx").Str("path", cfg.WorksheetPath).Msg("candidate store ready")
		return st, nil
	}

	st, err := NewFileStore(cfg.LocalStorePath)
	if err != nil {
		return nil, err
	}
	log.Info().Str("backend", "local_file").Str("path", cfg.LocalStorePath).Msg("candidate store ready")
	return st, nil
}

func openGoogle(ctx context.Context, cfg *config.Config) (Store, error) {
	creds, err := cfg.ServiceAccountJSON()
	if err != nil {
		return nil, fmt.Errorf("load google credentials: %w", err)
	}
	ws, err := NewGoogleSheet(ctx, creds, cfg.GoogleSheetsID)
	if err != nil {
		return nil, err
	}
	return NewSheetStore(ctx, ws)
}
