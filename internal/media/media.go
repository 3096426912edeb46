package media

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrStoreUnavailable indicates the media store is not configured.
	ErrStoreUnavailable = errors.New("media store unavailable")
	// ErrProberUnavailable indicates the duration prober is not configured.
	ErrProberUnavailable = errors.New("media prober unavailable")
)

// Store persists media objects and resolves their public locations.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, location string) error
}

// Prober derives the duration, in seconds, of a media file on local disk.
type Prober interface {
	Probe(ctx context.Context, path string) (float64, error)
}
