package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LocalStore keeps artifacts on the local filesystem and serves them
// through the API's upload/download handlers. Cloud backends implement
// the same Store interface.
type LocalStore struct {
	baseURL   string
	uploadDir string

	mu     sync.Mutex
	grants map[string]uploadGrant
}

// uploadGrant binds an issued upload token to its key. Tokens are
// single-use and expire.
type uploadGrant struct {
	key       string
	expiresAt time.Time
}

func NewLocalStore(baseURL, uploadDir string) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{
		baseURL:   baseURL,
		uploadDir: uploadDir,
		grants:    make(map[string]uploadGrant),
	}, nil
}

func (s *LocalStore) UploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error) {
	if _, err := s.fullPath(key); err != nil {
		return "", err
	}

	token := uuid.New().String()
	s.mu.Lock()
	s.grants[token] = uploadGrant{key: key, expiresAt: time.Now().Add(expiresIn)}
	s.mu.Unlock()

	return fmt.Sprintf("%s/api/v1/artifacts/upload/%s?key=%s", s.baseURL, token, key), nil
}

// ClaimUpload redeems an issued upload token. Valid at most once, and
// only for the key the token was minted for.
func (s *LocalStore) ClaimUpload(token, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	grant, ok := s.grants[token]
	if !ok {
		return false
	}
	delete(s.grants, token)
	return grant.key == key && time.Now().Before(grant.expiresAt)
}

func (s *LocalStore) DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	if _, err := s.fullPath(key); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/api/v1/artifacts/download/%s?key=%s", s.baseURL, hashKey(key), key), nil
}

func (s *LocalStore) Exists(ctx context.Context, key string) (bool, int64, error) {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return false, 0, err
	}
	info, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	return true, info.Size(), nil
}

func (s *LocalStore) Delete(ctx context.Context, key string) error {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}

func (s *LocalStore) Save(key string, r io.Reader) error {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	f, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

func (s *LocalStore) Open(key string) (io.ReadCloser, error) {
	fullPath, err := s.fullPath(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	return f, nil
}

// fullPath resolves a key inside the upload directory. Keys come from
// client-controlled URLs, so anything escaping the directory is
// rejected.
func (s *LocalStore) fullPath(key string) (string, error) {
	full := filepath.Join(s.uploadDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(s.uploadDir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return full, nil
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16])
}
