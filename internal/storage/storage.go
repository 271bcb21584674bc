package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidKey rejects storage keys that resolve outside the store's
// namespace (path traversal).
var ErrInvalidKey = errors.New("invalid artifact key")

// Store holds proof artifacts (delivery and return photos, cash payment
// receipts). Keys are opaque to callers; URLs are short-lived.
type Store interface {
	// UploadURL returns a URL a client can PUT the artifact to.
	UploadURL(ctx context.Context, key, contentType string, expiresIn time.Duration) (string, error)
	// DownloadURL returns a URL the artifact can be fetched from.
	DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)
	// Exists reports whether the artifact was actually uploaded, and its
	// size. Transitions that require proof verify the key this way.
	Exists(ctx context.Context, key string) (bool, int64, error)
	Delete(ctx context.Context, key string) error

	// Save, Open and ClaimUpload back the local implementation's HTTP
	// handlers. ClaimUpload redeems the single-use token minted by
	// UploadURL; a write without a matching grant is refused.
	Save(key string, r io.Reader) error
	Open(key string) (io.ReadCloser, error)
	ClaimUpload(token, key string) bool
}

// ProofKey builds a storage key for a transition proof artifact,
// namespaced by rental reference.
func ProofKey(rentalReference, kind, ext string) string {
	return path.Join("proofs", rentalReference, fmt.Sprintf("%s-%s%s", kind, uuid.New().String()[:8], ext))
}

// ReceiptKey builds a storage key for a cash payment receipt.
func ReceiptKey(rentalReference string, paymentID int32, ext string) string {
	return path.Join("receipts", rentalReference, fmt.Sprintf("payment-%d%s", paymentID, ext))
}
