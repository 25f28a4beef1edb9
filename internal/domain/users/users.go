// Package users manages user profile records, most of which is the
// profile picture pipeline: validate, crop, resize, store.
package users

import (
	"context"
	"errors"
)

// ErrNoPicture reports that the user has no stored profile picture.
var ErrNoPicture = errors.New("no profile picture")

// ErrTooLarge reports an upload over the configured byte ceiling. The
// check runs before any decoding so oversized payloads never reach the
// image decoder.
var ErrTooLarge = errors.New("image too large")

// ErrDecode reports input that is not a supported raster image.
var ErrDecode = errors.New("unsupported image data")

type Repository interface {
	EnsureUser(ctx context.Context, username string) error
	UpsertProfilePicture(ctx context.Context, username, ref string) error
	GetProfilePicture(ctx context.Context, username string) (string, error)
}
