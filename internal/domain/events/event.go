package events

import (
	"context"
	"errors"
	"time"

	"github.com/tidecal/server/internal/domain/tags"
)

// ErrNotFound reports that no event has the requested id.
var ErrNotFound = errors.New("event not found")

// ErrForbidden reports that the requester is not the event's owner.
var ErrForbidden = errors.New("not the event owner")

// DefaultTime is the time of day assigned when none is supplied.
const DefaultTime = "12:00"

// Event is a dated calendar entry owned by a single user.
type Event struct {
	ID          int64
	Title       string
	Description string
	Date        time.Time // calendar date, midnight UTC
	Time        string    // zero-padded "15:04"
	Tags        tags.Set
	Username    string // owner, immutable
	CreatedAt   time.Time
}

// CreateParams carries a validated event into the store. The store
// assigns ID and CreatedAt.
type CreateParams struct {
	Title       string
	Description string
	Date        time.Time
	Time        string
	Tags        tags.Set
	Username    string
}

// Patch carries the fields an update may change. Nil fields keep the
// stored value; ownership and creation metadata never change.
type Patch struct {
	Title       *string
	Description *string
	Date        *time.Time
	Time        *string
	Tags        []string
}

type Repository interface {
	Insert(ctx context.Context, params CreateParams) (*Event, error)
	Get(ctx context.Context, id int64) (*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id int64) error
	// ListByOwner returns the owner's events sorted by (date, time)
	// ascending, optionally restricted to [from, to] inclusive.
	ListByOwner(ctx context.Context, owner string, from, to *time.Time) ([]Event, error)
}
