// Package storage uploads files to decentralized or object storage and
// returns a retrievable URI.
package storage

import (
	"context"
	"io"
)

// Uploader stores body under name and returns its public URI.
type Uploader interface {
	Upload(ctx context.Context, name string, body io.Reader) (string, error)
}
