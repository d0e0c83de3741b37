package storage

import (
	"fmt"

	"github.com/andrefranchin/treine-me-api/internal/config"
)

// New creates a storage driver from configuration.
func New(cfg *config.StorageConfig) (Driver, error) {
	switch cfg.Driver {
	case "local", "":
		uploadsPath := cfg.UploadsPath
		if uploadsPath == "" {
			uploadsPath = "./uploads"
		}
		return NewLocal(uploadsPath), nil

	case "s3":
		return NewS3(cfg)

	case "r2":
		return NewR2(cfg)

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
