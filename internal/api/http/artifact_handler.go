package http

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"

	"equiprent-backend/internal/storage"
)

// ArtifactHandler serves proof and receipt uploads for the local
// artifact store. Cloud backends hand out their own presigned URLs and
// never hit these endpoints.
type ArtifactHandler struct {
	store storage.Store
}

func NewArtifactHandler(store storage.Store) *ArtifactHandler {
	return &ArtifactHandler{store: store}
}

type uploadURLRequest struct {
	RentalReference string `json:"rental_reference"`
	Kind            string `json:"kind"`
	ContentType     string `json:"content_type"`
}

type uploadURLResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

// IssueUploadURL hands a client a storage key and upload URL for a
// transition proof. The key is then referenced in the transition
// request's proofs.
func (h *ArtifactHandler) IssueUploadURL(w http.ResponseWriter, r *http.Request) {
	if _, ok := actorFrom(r); !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated", Code: "unauthenticated"})
		return
	}

	var req uploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.RentalReference == "" || req.Kind == "" {
		writeBadRequest(w, "rental_reference and kind are required")
		return
	}

	ext := ".jpg"
	switch req.ContentType {
	case "image/png":
		ext = ".png"
	case "application/pdf":
		ext = ".pdf"
	}

	key := storage.ProofKey(req.RentalReference, req.Kind, ext)
	url, err := h.store.UploadURL(r.Context(), key, req.ContentType, 15*time.Minute)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadURLResponse{Key: key, UploadURL: url})
}

// Upload receives the artifact bytes at a previously issued URL. The
// URL's token was minted by IssueUploadURL for exactly this key; an
// unknown, spent or mismatched token is refused.
func (h *ArtifactHandler) Upload(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeBadRequest(w, "missing key parameter")
		return
	}
	if !h.store.ClaimUpload(mux.Vars(r)["token"], key) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "invalid or expired upload token", Code: "unauthorized_actor"})
		return
	}

	switch r.Header.Get("Content-Type") {
	case "image/jpeg", "image/png", "application/pdf":
	default:
		writeBadRequest(w, "unsupported content type")
		return
	}

	if err := h.store.Save(key, r.Body); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to save artifact", Code: "internal"})
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Download streams a stored artifact.
func (h *ArtifactHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		writeBadRequest(w, "missing key parameter")
		return
	}

	f, err := h.store.Open(key)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "artifact not found", Code: "not_found"})
		return
	}
	defer f.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".pdf":
		contentType = "application/pdf"
	}
	w.Header().Set("Content-Type", contentType)
	io.Copy(w, f)
}
