// Package storage provides the blob store behind invoice files: an
// account-prefixed local directory with URL download support for files
// referenced by webhooks.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Store is the blob storage surface the pipeline depends on.
type Store interface {
	// Upload writes a file under the account's prefix and returns its reference.
	Upload(ctx context.Context, userID, filename string, data []byte) (string, error)
	// Download fetches a file by local reference or http(s) URL.
	Download(ctx context.Context, pathOrURL string) ([]byte, error)
}

// LocalStore implements Store on the local filesystem, with HTTP fallback
// for absolute URLs.
type LocalStore struct {
	baseDir       string
	publicBaseURL string
	client        *http.Client
	logger        *zap.Logger
}

// NewLocalStore creates a new local blob store. downloadTimeout bounds every
// remote fetch so a stalled origin cannot hold a pipeline run open.
func NewLocalStore(baseDir, publicBaseURL string, downloadTimeout time.Duration, logger *zap.Logger) *LocalStore {
	return &LocalStore{
		baseDir:       baseDir,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		client:        &http.Client{Timeout: downloadTimeout},
		logger:        logger,
	}
}

// Upload stores data under <baseDir>/<userID>/<filename>.
func (s *LocalStore) Upload(ctx context.Context, userID, filename string, data []byte) (string, error) {
	rel := filepath.Join(userID, filepath.Base(filename))
	fullPath := filepath.Join(s.baseDir, rel)

	if err := s.validatePath(fullPath); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		s.logger.Error("Failed to create storage directory", zap.String("path", fullPath), zap.Error(err))
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		s.logger.Error("Failed to write file", zap.String("path", fullPath), zap.Error(err))
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("File stored",
		zap.String("path", fullPath),
		zap.Int("size_bytes", len(data)))

	if s.publicBaseURL != "" {
		return s.publicBaseURL + "/" + filepath.ToSlash(rel), nil
	}
	return rel, nil
}

// Download resolves a reference produced by Upload or an absolute URL.
func (s *LocalStore) Download(ctx context.Context, pathOrURL string) ([]byte, error) {
	if strings.HasPrefix(pathOrURL, "http://") || strings.HasPrefix(pathOrURL, "https://") {
		if s.publicBaseURL != "" && strings.HasPrefix(pathOrURL, s.publicBaseURL+"/") {
			return s.readLocal(strings.TrimPrefix(pathOrURL, s.publicBaseURL+"/"))
		}
		return s.fetch(ctx, pathOrURL)
	}
	return s.readLocal(pathOrURL)
}

func (s *LocalStore) readLocal(rel string) ([]byte, error) {
	fullPath := filepath.Join(s.baseDir, rel)
	if err := s.validatePath(fullPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		s.logger.Warn("Failed to read stored file", zap.String("path", fullPath), zap.Error(err))
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}
	return data, nil
}

func (s *LocalStore) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid file url: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("Failed to download file", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read download body: %w", err)
	}
	return data, nil
}

// validatePath guards against path traversal out of the base directory.
func (s *LocalStore) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes storage directory: %s", fullPath)
	}
	return nil
}
