// Package contentstore talks to the external content-addressed store that
// holds NFT images and metadata blobs.
package contentstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"solana-wallet-hub/internal/observability"
)

// Metadata is the off-chain metadata blob referenced by an on-chain asset.
type Metadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Store uploads content and resolves previously uploaded metadata.
// Uploads return a stable URI; the ledger is never asked to mint against a
// metadata reference that was not stored first.
type Store interface {
	// UploadFile stores a binary file and returns its URI.
	UploadFile(ctx context.Context, name string, data []byte) (string, error)

	// UploadMetadata stores a metadata object and returns its URI.
	UploadMetadata(ctx context.Context, meta Metadata) (string, error)

	// FetchMetadata retrieves a metadata object by URI.
	FetchMetadata(ctx context.Context, uri string) (*Metadata, error)
}

const defaultTimeout = 60 * time.Second

// HTTPStore implements Store against an HTTP upload gateway.
type HTTPStore struct {
	endpoint string
	client   *http.Client
}

// Compile-time interface check.
var _ Store = (*HTTPStore)(nil)

// Option configures HTTPStore.
type Option func(*HTTPStore)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *HTTPStore) {
		s.client = client
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *HTTPStore) {
		s.client.Timeout = d
	}
}

// NewHTTPStore creates a content store client for the given gateway endpoint.
func NewHTTPStore(endpoint string, opts ...Option) *HTTPStore {
	s := &HTTPStore{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// uploadResponse is the gateway's answer to both upload operations.
type uploadResponse struct {
	URI string `json:"uri"`
}

// UploadFile stores a binary file and returns its URI.
func (s *HTTPStore) UploadFile(ctx context.Context, name string, data []byte) (string, error) {
	url := s.endpoint + "/upload?name=" + name
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	uri, err := s.doUpload(req)
	observability.RecordUpload("file", err)
	return uri, err
}

// UploadMetadata stores a metadata object and returns its URI.
func (s *HTTPStore) UploadMetadata(ctx context.Context, meta Metadata) (string, error) {
	body, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("marshal metadata: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/metadata", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create metadata request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	uri, err := s.doUpload(req)
	observability.RecordUpload("metadata", err)
	return uri, err
}

func (s *HTTPStore) doUpload(req *http.Request) (string, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read upload response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, string(body))
	}

	var ur uploadResponse
	if err := json.Unmarshal(body, &ur); err != nil {
		return "", fmt.Errorf("unmarshal upload response: %w", err)
	}
	if ur.URI == "" {
		return "", fmt.Errorf("upload response missing uri")
	}

	return ur.URI, nil
}

// FetchMetadata retrieves a metadata object by URI.
func (s *HTTPStore) FetchMetadata(ctx context.Context, uri string) (*Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("create fetch request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch metadata %s: status %d", uri, resp.StatusCode)
	}

	var meta Metadata
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return nil, fmt.Errorf("decode metadata %s: %w", uri, err)
	}

	return &meta, nil
}
