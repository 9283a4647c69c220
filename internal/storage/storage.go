// Package storage defines the remote image uploader used by product
// creation.
package storage

import (
	"context"
	"errors"
)

// ErrEmptyImage is returned when an upload is requested for an empty value.
var ErrEmptyImage = errors.New("image payload is empty")

// Uploader stores one raw image value and returns its durable reference.
// A raw value is a data URI or a remote URL.
type Uploader interface {
	// Upload stores raw and returns the assigned public ID and URL.
	Upload(ctx context.Context, raw string) (*UploadResult, error)

	// Destroy removes a previously uploaded image.
	Destroy(ctx context.Context, publicID string) error
}

// UploadResult is the reference returned for a stored image.
type UploadResult struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}
