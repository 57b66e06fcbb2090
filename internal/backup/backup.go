// Package backup writes point-in-time copies of the ledger to a directory or
// an S3-compatible bucket.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

const (
	formatVersion = 1
	contentType   = "application/json"
)

// Uploader stores one backup object and reports where it went.
type Uploader interface {
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// Document is the on-disk backup layout.
type Document struct {
	Version   int              `json:"version"`
	CreatedAt time.Time        `json:"created_at"`
	Data      *entity.Snapshot `json:"data"`
}

type Service struct {
	uploader Uploader
	now      func() time.Time
}

func NewService(uploader Uploader) *Service {
	return &Service{
		uploader: uploader,
		now:      time.Now,
	}
}

// Backup serializes snap and uploads it under a timestamped key.
func (s *Service) Backup(ctx context.Context, snap *entity.Snapshot) (string, error) {
	if snap == nil {
		return "", errors.New("nothing to back up")
	}

	created := s.now().UTC()

	body, err := json.MarshalIndent(Document{Version: formatVersion, CreatedAt: created, Data: snap}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding backup: %w", err)
	}

	key := fmt.Sprintf("backups/daftar-%s.json", created.Format("20060102-150405"))

	location, err := s.uploader.Upload(ctx, key, body, contentType)
	if err != nil {
		return "", fmt.Errorf("uploading backup: %w", err)
	}

	return location, nil
}

// Read decodes a backup written by Backup.
func Read(r io.Reader) (*entity.Snapshot, error) {
	var doc Document

	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding backup: %w", err)
	}

	if doc.Version != formatVersion {
		return nil, fmt.Errorf("unsupported backup version %d", doc.Version)
	}

	if doc.Data == nil {
		return &entity.Snapshot{}, nil
	}

	return doc.Data, nil
}

// ReadBytes is Read over an in-memory document.
func ReadBytes(b []byte) (*entity.Snapshot, error) {
	return Read(bytes.NewReader(b))
}
