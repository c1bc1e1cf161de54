// Package attachments stores files uploaded with complaints. Objects are
// named by content hash, so the same upload is stored once.
package attachments

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/campus-buddy/backend/pkg/logger"
	"github.com/campus-buddy/backend/pkg/utils"
)

var (
	ErrEmpty           = errors.New("attachment is empty")
	ErrTooLarge        = errors.New("attachment exceeds size limit")
	ErrUnsupportedType = errors.New("attachment type not allowed")
)

// AllowedExtensions are the upload types accepted from students.
var AllowedExtensions = []string{".png", ".jpg", ".jpeg", ".pdf"}

type Store interface {
	// Save stores data and returns the location recorded on the complaint.
	Save(ctx context.Context, filename string, data []byte) (string, error)
}

// Validate checks name and size before anything is written. maxBytes <= 0
// disables the size check.
func Validate(filename string, data []byte, maxBytes int) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if maxBytes > 0 && len(data) > maxBytes {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedExtensions {
		if ext == allowed {
			return ext, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
}

func objectName(ext string, data []byte) string {
	return utils.HashBytes(data) + ext
}

type LocalStore struct {
	dir      string
	maxBytes int
}

func NewLocalStore(dir string, maxBytes int) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	logger.Info("Local attachment store initialized", zap.String("dir", dir))

	return &LocalStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *LocalStore) Save(_ context.Context, filename string, data []byte) (string, error) {
	ext, err := Validate(filename, data, s.maxBytes)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, objectName(ext, data))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}

	logger.Debug("Attachment saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

func contentType(data []byte) string {
	return http.DetectContentType(data)
}
