package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidecal/server/internal/domain/tags"
	"github.com/tidecal/server/internal/sanitize"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

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

// Input is the wire shape of a create or update request.
type Input struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	EventDate   string   `json:"event_date"`
	EventTime   string   `json:"event_time,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ValidateInput normalizes and checks a full create request, applying
// the noon default when no time is supplied.
func ValidateInput(input Input) (CreateParams, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		return CreateParams{}, err
	}

	date, err := validateDate(input.EventDate)
	if err != nil {
		return CreateParams{}, err
	}

	timeOfDay, err := validateTime(input.EventTime)
	if err != nil {
		return CreateParams{}, err
	}

	description, err := validateDescription(input.Description)
	if err != nil {
		return CreateParams{}, err
	}

	tagSet, err := tags.ValidateSet(input.Tags)
	if err != nil {
		return CreateParams{}, err
	}

	return CreateParams{
		Title:       title,
		Description: description,
		Date:        date,
		Time:        timeOfDay,
		Tags:        tagSet,
	}, nil
}

func validateTitle(raw string) (string, error) {
	title := strings.TrimSpace(sanitize.Text(raw))
	if title == "" {
		return "", ValidationError{Field: "title", Message: "must not be empty"}
	}
	if len(title) > maxTitleLength {
		return "", ValidationError{Field: "title", Message: fmt.Sprintf("exceeds %d characters", maxTitleLength)}
	}
	return title, nil
}

func validateDescription(raw string) (string, error) {
	description := strings.TrimSpace(sanitize.HTML(raw))
	if len(description) > maxDescriptionLength {
		return "", ValidationError{Field: "description", Message: fmt.Sprintf("exceeds %d characters", maxDescriptionLength)}
	}
	return description, nil
}

func validateDate(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, ValidationError{Field: "event_date", Message: "is required"}
	}
	date, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, ValidationError{Field: "event_date", Message: "must be an ISO8601 date"}
	}
	return date, nil
}

func validateTime(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return DefaultTime, nil
	}
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return "", ValidationError{Field: "event_time", Message: "must be HH:MM"}
	}
	// Re-format so single-digit hours sort correctly.
	return parsed.Format("15:04"), nil
}
