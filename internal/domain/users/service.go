package users

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tidecal/server/internal/storage/blob"
)

const (
	// DefaultMaxImageBytes is the upload ceiling (5 MiB).
	DefaultMaxImageBytes = 5 << 20

	// DefaultPictureSize is the output resolution of a stored picture.
	DefaultPictureSize = 300
)

// Service owns the profile picture pipeline over the abstract blob
// store and the users relation.
type Service struct {
	repo     Repository
	blobs    blob.Store
	maxBytes int
	size     int
	logger   zerolog.Logger
}

func NewService(repo Repository, blobs blob.Store, maxBytes, size int, logger zerolog.Logger) *Service {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxImageBytes
	}
	if size <= 0 {
		size = DefaultPictureSize
	}
	return &Service{
		repo:     repo,
		blobs:    blobs,
		maxBytes: maxBytes,
		size:     size,
		logger:   logger.With().Str("component", "users").Logger(),
	}
}

// EnsureUser creates the user row on first login.
func (s *Service) EnsureUser(ctx context.Context, username string) error {
	return s.repo.EnsureUser(ctx, username)
}

// SetPicture validates the upload, crops and resizes it, stores the
// result, and points the user record at the new reference. The size
// ceiling is enforced before any decode attempt.
func (s *Service) SetPicture(ctx context.Context, username string, data []byte, crop *Rect) (string, error) {
	if len(data) > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes over %d limit", ErrTooLarge, len(data), s.maxBytes)
	}

	processed, err := processImage(data, crop, s.size)
	if err != nil {
		return "", err
	}

	key := "avatars/" + username + "/" + uuid.NewString() + ".jpg"
	ref, err := s.blobs.Put(ctx, key, processed, "image/jpeg")
	if err != nil {
		return "", fmt.Errorf("store picture: %w", err)
	}

	if err := s.repo.UpsertProfilePicture(ctx, username, ref); err != nil {
		return "", err
	}
	s.logger.Debug().Str("username", username).Int("bytes", len(processed)).Msg("profile picture updated")
	return ref, nil
}

// GetPicture returns the stored blob reference for the user.
func (s *Service) GetPicture(ctx context.Context, username string) (string, error) {
	return s.repo.GetProfilePicture(ctx, username)
}
