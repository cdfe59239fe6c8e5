package nft

import "errors"

var (
	// ErrInvalidCollectionAddress is returned when a collection address is
	// not a syntactically valid account reference. Reported before any
	// upload happens.
	ErrInvalidCollectionAddress = errors.New("invalid collection address")

	// ErrMetadataUpload is returned when the content store rejects an image
	// or metadata upload; the whole mint operation aborts.
	ErrMetadataUpload = errors.New("metadata upload failed")
)
