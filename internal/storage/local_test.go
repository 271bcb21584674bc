package storage_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"equiprent-backend/internal/storage"
)

func newStore(t *testing.T) (*storage.LocalStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := storage.NewLocalStore("http://localhost:8080", dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s, dir
}

func uploadToken(t *testing.T, url string) string {
	t.Helper()
	i := strings.Index(url, "/upload/")
	j := strings.Index(url, "?")
	if i < 0 || j < 0 {
		t.Fatalf("unexpected upload url: %s", url)
	}
	return url[i+len("/upload/") : j]
}

func TestLocalStore_SaveAndOpen(t *testing.T) {
	s, _ := newStore(t)
	key := "proofs/RNTTEST001/photo-abc.jpg"

	assert.NoError(t, s.Save(key, strings.NewReader("jpeg bytes")))

	ok, size, err := s.Exists(context.Background(), key)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(10), size)

	f, err := s.Open(key)
	assert.NoError(t, err)
	data, err := io.ReadAll(f)
	f.Close()
	assert.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
}

func TestLocalStore_RejectsEscapingKeys(t *testing.T) {
	s, dir := newStore(t)
	ctx := context.Background()

	for _, key := range []string{"../escaped.txt", "..", "proofs/../../escaped.txt"} {
		err := s.Save(key, strings.NewReader("x"))
		assert.ErrorIs(t, err, storage.ErrInvalidKey, key)

		_, err = s.Open(key)
		assert.ErrorIs(t, err, storage.ErrInvalidKey, key)

		_, _, err = s.Exists(ctx, key)
		assert.ErrorIs(t, err, storage.ErrInvalidKey, key)

		assert.ErrorIs(t, s.Delete(ctx, key), storage.ErrInvalidKey, key)

		_, err = s.UploadURL(ctx, key, "image/jpeg", time.Minute)
		assert.ErrorIs(t, err, storage.ErrInvalidKey, key)
	}

	// Nothing may land next to the upload directory.
	_, err := os.Stat(filepath.Join(filepath.Dir(dir), "escaped.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStore_UploadTokens(t *testing.T) {
	s, _ := newStore(t)
	ctx := context.Background()
	key := "proofs/RNTTEST001/photo-abc.jpg"

	t.Run("Unknown Token Refused", func(t *testing.T) {
		assert.False(t, s.ClaimUpload("bogus", key))
	})

	t.Run("Valid Token Claims Exactly Once", func(t *testing.T) {
		url, err := s.UploadURL(ctx, key, "image/jpeg", time.Minute)
		assert.NoError(t, err)

		token := uploadToken(t, url)
		assert.True(t, s.ClaimUpload(token, key))
		assert.False(t, s.ClaimUpload(token, key))
	})

	t.Run("Token Is Bound To Its Key", func(t *testing.T) {
		url, err := s.UploadURL(ctx, key, "image/jpeg", time.Minute)
		assert.NoError(t, err)

		assert.False(t, s.ClaimUpload(uploadToken(t, url), "proofs/RNTTEST001/other.jpg"))
	})

	t.Run("Expired Token Refused", func(t *testing.T) {
		url, err := s.UploadURL(ctx, key, "image/jpeg", -time.Second)
		assert.NoError(t, err)

		assert.False(t, s.ClaimUpload(uploadToken(t, url), key))
	})
}
