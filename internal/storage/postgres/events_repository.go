package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tidecal/server/internal/domain/events"
	"github.com/tidecal/server/internal/domain/tags"
	"github.com/tidecal/server/internal/storage"
)

var _ events.Repository = (*EventRepository)(nil)

type EventRepository struct {
	pool *pgxpool.Pool
	tx   pgx.Tx
}

func (r *EventRepository) queryer() queryer {
	if r.tx != nil {
		return r.tx
	}
	return r.pool
}

func (r *EventRepository) Insert(ctx context.Context, params events.CreateParams) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
INSERT INTO events (title, description, event_date, event_time, tags, username)
VALUES ($1, $2, $3, $4::time, $5, $6)
RETURNING id, title, description, event_date, to_char(event_time, 'HH24:MI'), tags, username, created_at
`,
		params.Title,
		nullIfEmpty(params.Description),
		params.Date,
		params.Time,
		params.Tags.Serialize(),
		params.Username,
	)

	event, err := scanEvent(row)
	if err != nil {
		return nil, storage.WrapErr("insert event", err)
	}
	return event, nil
}

func (r *EventRepository) Get(ctx context.Context, id int64) (*events.Event, error) {
	row := r.queryer().QueryRow(ctx, `
SELECT id, title, description, event_date, to_char(event_time, 'HH24:MI'), tags, username, created_at
  FROM events
 WHERE id = $1
`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, events.ErrNotFound
		}
		return nil, storage.WrapErr("get event", err)
	}
	return event, nil
}

func (r *EventRepository) Update(ctx context.Context, event *events.Event) error {
	tag, err := r.queryer().Exec(ctx, `
UPDATE events
   SET title = $2, description = $3, event_date = $4, event_time = $5::time, tags = $6
 WHERE id = $1
`,
		event.ID,
		event.Title,
		nullIfEmpty(event.Description),
		event.Date,
		event.Time,
		event.Tags.Serialize(),
	)
	if err != nil {
		return storage.WrapErr("update event", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.queryer().Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return storage.WrapErr("delete event", err)
	}
	if tag.RowsAffected() == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventRepository) ListByOwner(ctx context.Context, owner string, from, to *time.Time) ([]events.Event, error) {
	rows, err := r.queryer().Query(ctx, `
SELECT id, title, description, event_date, to_char(event_time, 'HH24:MI'), tags, username, created_at
  FROM events
 WHERE username = $1
   AND ($2::date IS NULL OR event_date >= $2::date)
   AND ($3::date IS NULL OR event_date <= $3::date)
 ORDER BY event_date ASC, event_time ASC NULLS LAST, id ASC
`, owner, from, to)
	if err != nil {
		return nil, storage.WrapErr("list events", err)
	}
	defer rows.Close()

	var items []events.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, storage.WrapErr("scan events", err)
		}
		items = append(items, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.WrapErr("iterate events", err)
	}
	return items, nil
}

func scanEvent(row pgx.Row) (*events.Event, error) {
	var (
		description *string
		timeOfDay   *string
		encodedTags *string
		createdAt   pgtype.Timestamptz
		event       events.Event
	)
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&description,
		&event.Date,
		&timeOfDay,
		&encodedTags,
		&event.Username,
		&createdAt,
	); err != nil {
		return nil, err
	}

	event.Description = derefString(description)
	event.Time = events.DefaultTime
	if timeOfDay != nil {
		event.Time = *timeOfDay
	}
	set, err := tags.Deserialize(derefString(encodedTags))
	if err != nil {
		return nil, err
	}
	event.Tags = set
	if createdAt.Valid {
		event.CreatedAt = createdAt.Time
	}
	event.Date = event.Date.UTC()
	return &event, nil
}

func derefString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func nullIfEmpty(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
