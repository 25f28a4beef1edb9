// Package blob abstracts where processed profile images live. The
// reference a Store returns is what gets persisted on the user record.
package blob

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
)

// Store is the abstract blob collaborator: a single atomic write
// returning an opaque reference, and the read that resolves it.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, ref string) ([]byte, error)
}

// Inline encodes blobs directly into the reference as a data URI, so
// the image rides along in the user record with no external storage.
type Inline struct{}

func NewInline() *Inline {
	return &Inline{}
}

func (s *Inline) Put(_ context.Context, _ string, data []byte, contentType string) (string, error) {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data)), nil
}

func (s *Inline) Get(_ context.Context, ref string) ([]byte, error) {
	_, payload, ok := strings.Cut(ref, ";base64,")
	if !ok {
		return nil, fmt.Errorf("not an inline blob reference")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode inline blob: %w", err)
	}
	return data, nil
}
