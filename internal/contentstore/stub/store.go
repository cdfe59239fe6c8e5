// Package stub provides an in-memory content store for testing.
package stub

import (
	"context"
	"fmt"
	"sync"

	"solana-wallet-hub/internal/contentstore"
)

// Store implements contentstore.Store in memory, counting uploads so tests
// can assert that failed validation performs zero uploads.
type Store struct {
	mu sync.Mutex

	// Metadata maps uri -> stored metadata.
	Metadata map[string]contentstore.Metadata

	// Err, when set, fails every upload. Simulates store outage.
	Err error

	// FileUploads and MetadataUploads count upload calls.
	FileUploads     int
	MetadataUploads int

	next int
}

// NewStore creates an empty stub content store.
func NewStore() *Store {
	return &Store{Metadata: make(map[string]contentstore.Metadata)}
}

// Compile-time interface check.
var _ contentstore.Store = (*Store)(nil)

// UploadFile records the upload and returns a synthetic URI.
func (s *Store) UploadFile(_ context.Context, name string, _ []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FileUploads++
	if s.Err != nil {
		return "", s.Err
	}
	s.next++
	return fmt.Sprintf("stub://file/%d/%s", s.next, name), nil
}

// UploadMetadata records the upload and returns a synthetic URI.
func (s *Store) UploadMetadata(_ context.Context, meta contentstore.Metadata) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.MetadataUploads++
	if s.Err != nil {
		return "", s.Err
	}
	s.next++
	uri := fmt.Sprintf("stub://meta/%d", s.next)
	s.Metadata[uri] = meta
	return uri, nil
}

// FetchMetadata resolves a previously uploaded metadata URI.
func (s *Store) FetchMetadata(_ context.Context, uri string) (*contentstore.Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	meta, ok := s.Metadata[uri]
	if !ok {
		return nil, fmt.Errorf("metadata not found: %s", uri)
	}
	return &meta, nil
}

// UploadCalls returns the total number of upload calls of either kind.
func (s *Store) UploadCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.FileUploads + s.MetadataUploads
}
