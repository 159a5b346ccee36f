package store

import (
	"context"
	"fmt"
	"path/filepath"

	"nutri-go/internal/config"
	"nutri-go/internal/nutri"
)

// NewRecordsFromConfig creates the RecordStore backend named by cfg.Type.
func NewRecordsFromConfig(ctx context.Context, cfg config.StoreConfig, clock nutri.Clock) (RecordStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryRecords(), nil
	case "file":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("file store requires data_dir to be set")
		}
		return NewFileRecords(cfg.DataDir)
	case "sqlite", "":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("sqlite store requires data_dir to be set")
		}
		return NewSQLiteRecords(filepath.Join(cfg.DataDir, SQLiteFileName), clock)
	case "s3":
		return NewS3Records(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.Type)
	}
}

// NewStoreFromConfig creates the Store for cfg. When opener is non-nil
// records are sealed with enc.
func NewStoreFromConfig(ctx context.Context, cfg config.StoreConfig, enc nutri.Encryptor, opener nutri.RecordOpener, clock nutri.Clock, logger nutri.Logger) (*Store, error) {
	records, err := NewRecordsFromConfig(ctx, cfg, clock)
	if err != nil {
		return nil, err
	}
	if opener != nil {
		sealed, err := NewSealedRecords(records, enc, opener)
		if err != nil {
			records.Close()
			return nil, err
		}
		return New(sealed, logger), nil
	}
	return New(records, logger), nil
}
