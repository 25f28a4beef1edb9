// Package tags normalizes, validates, and encodes the classification
// tags attached to events.
package tags

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidecal/server/internal/sanitize"
)

const (
	// MaxTagLength is the longest a single normalized tag may be.
	MaxTagLength = 32

	// MaxSetSize is the most tags one event may carry.
	MaxSetSize = 10
)

// Presets is the fixed vocabulary offered by the UI. Preset tags take
// the same normalization and validation path as free-form ones; the
// only difference is the icon the presentation layer attaches.
var Presets = []string{"video", "code", "education", "meeting", "personal"}

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Set is an ordered collection of normalized tags with no duplicates.
// Order is first-seen order, preserved for display.
type Set []string

// Normalize strips markup, trims the tag, collapses internal runs of
// whitespace to single spaces, and lowercases it. Tags that are empty
// after trimming are invalid.
func Normalize(raw string) (string, error) {
	cleaned := strings.Join(strings.Fields(sanitize.Text(raw)), " ")
	cleaned = strings.ToLower(cleaned)
	if cleaned == "" {
		return "", ValidationError{Field: "tags", Message: "tag is empty"}
	}
	return cleaned, nil
}

// ValidateSet normalizes every entry, collapses case-insensitive
// duplicates to their first occurrence, and enforces the length and
// count policies.
func ValidateSet(raw []string) (Set, error) {
	seen := make(map[string]struct{}, len(raw))
	set := make(Set, 0, len(raw))
	for _, entry := range raw {
		tag, err := Normalize(entry)
		if err != nil {
			return nil, err
		}
		if len(tag) > MaxTagLength {
			return nil, ValidationError{Field: "tags", Message: fmt.Sprintf("tag exceeds %d characters", MaxTagLength)}
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		set = append(set, tag)
	}
	if len(set) > MaxSetSize {
		return nil, ValidationError{Field: "tags", Message: fmt.Sprintf("more than %d tags", MaxSetSize)}
	}
	return set, nil
}

// IsPreset reports whether the normalized tag belongs to the preset
// vocabulary.
func IsPreset(tag string) bool {
	for _, preset := range Presets {
		if tag == preset {
			return true
		}
	}
	return false
}

// Serialize encodes the set for the tags text column. Deserialize
// reverses it exactly for any validated set.
func (s Set) Serialize() string {
	if len(s) == 0 {
		return "[]"
	}
	encoded, err := json.Marshal([]string(s))
	if err != nil {
		// A []string cannot fail to marshal.
		return "[]"
	}
	return string(encoded)
}

// Deserialize decodes a set previously produced by Serialize. The
// empty string decodes as the empty set to tolerate the column default.
func Deserialize(encoded string) (Set, error) {
	if strings.TrimSpace(encoded) == "" {
		return Set{}, nil
	}
	var entries []string
	if err := json.Unmarshal([]byte(encoded), &entries); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return Set(entries), nil
}
