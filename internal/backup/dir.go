package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirUploader writes backups below a local directory.
type DirUploader struct {
	Dir string
}

func (u DirUploader) Upload(ctx context.Context, key string, body []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := filepath.Join(u.Dir, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	if err := os.WriteFile(path, body, 0o600); err != nil {
		return "", fmt.Errorf("writing backup file: %w", err)
	}

	return path, nil
}
