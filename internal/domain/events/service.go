package events

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidecal/server/internal/domain/tags"
)

// Service owns event CRUD and enforces per-user ownership. All reads
// and writes go straight to the repository; nothing is cached.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// Create validates the input, stamps the owner, and persists the event.
func (s *Service) Create(ctx context.Context, input Input, owner string) (*Event, error) {
	params, err := ValidateInput(input)
	if err != nil {
		return nil, err
	}
	params.Username = owner

	event, err := s.repo.Insert(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.logger.Debug().Int64("event_id", event.ID).Str("owner", owner).Msg("event created")
	return event, nil
}

// Get returns the event if it exists and belongs to the requester.
func (s *Service) Get(ctx context.Context, id int64, requester string) (*Event, error) {
	event, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Username != requester {
		return nil, ErrForbidden
	}
	return event, nil
}

// Update applies the patch after re-validating every changed field.
// Fails with ErrNotFound for unknown ids and ErrForbidden when the
// requester does not own the event. Concurrent updates of the same
// event race at the store; the last write wins.
func (s *Service) Update(ctx context.Context, id int64, patch Patch, requester string) (*Event, error) {
	event, err := s.Get(ctx, id, requester)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		title, err := validateTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		event.Title = title
	}
	if patch.Description != nil {
		description, err := validateDescription(*patch.Description)
		if err != nil {
			return nil, err
		}
		event.Description = description
	}
	if patch.Date != nil {
		event.Date = time.Date(patch.Date.Year(), patch.Date.Month(), patch.Date.Day(), 0, 0, 0, 0, time.UTC)
	}
	if patch.Time != nil {
		timeOfDay, err := validateTime(*patch.Time)
		if err != nil {
			return nil, err
		}
		event.Time = timeOfDay
	}
	if patch.Tags != nil {
		tagSet, err := tags.ValidateSet(patch.Tags)
		if err != nil {
			return nil, err
		}
		event.Tags = tagSet
	}

	if err := s.repo.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event %d: %w", id, err)
	}
	return event, nil
}

// Delete permanently removes the event after the ownership check.
func (s *Service) Delete(ctx context.Context, id int64, requester string) error {
	if _, err := s.Get(ctx, id, requester); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	s.logger.Debug().Int64("event_id", id).Str("owner", requester).Msg("event deleted")
	return nil
}

// ListAll returns every event the owner has, sorted by date then time.
func (s *Service) ListAll(ctx context.Context, owner string) ([]Event, error) {
	return s.repo.ListByOwner(ctx, owner, nil, nil)
}

// ListByMonth returns the owner's events falling inside the given
// month, sorted by date then time.
func (s *Service) ListByMonth(ctx context.Context, owner string, year int, month time.Month) ([]Event, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return s.repo.ListByOwner(ctx, owner, &from, &to)
}
