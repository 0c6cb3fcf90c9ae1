package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/eventreg/internal/domain/attendee"
	"github.com/geocoder89/eventreg/internal/domain/event"
	"github.com/geocoder89/eventreg/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

// constructor function

func NewEventsRepo(pool *pgxpool.Pool, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *EventsRepo) Create(ctx context.Context, req event.CreateEventRequest) (event.Event, error) {
	e := event.NewFromCreateRequest(req)

	err := r.prom.ObserveDB("events.create", func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO events (id, title, description, date, capacity, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			e.ID, e.Title, e.Description, e.Date, e.Capacity, e.CreatedAt, e.UpdatedAt)
		return err
	})

	if err != nil {
		return event.Event{}, fmt.Errorf("insert event: %w", err)
	}

	return e, nil
}

// List returns every event with its attendee count, soonest first.
func (r *EventsRepo) List(ctx context.Context) ([]event.Summary, error) {
	var rows pgx.Rows

	err := r.prom.ObserveDB("events.list", func() error {
		var err error
		rows, err = r.pool.Query(ctx, `
		SELECT e.id, e.title, e.description, e.date, e.capacity, e.created_at, e.updated_at,
		       COUNT(a.id) AS attendee_count
		FROM events e
		LEFT JOIN attendees a ON a.event_id = e.id
		GROUP BY e.id
		ORDER BY e.date ASC, e.id ASC
		`)
		return err
	})

	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	defer rows.Close()

	output := make([]event.Summary, 0)

	for rows.Next() {
		var s event.Summary

		err = rows.Scan(&s.ID, &s.Title, &s.Description, &s.Date, &s.Capacity, &s.CreatedAt, &s.UpdatedAt, &s.AttendeeCount)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}

		output = append(output, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return output, nil
}

// GetByID loads one event and its attendees ordered by registration time.
// Both reads share one repeatable-read snapshot.
func (r *EventsRepo) GetByID(ctx context.Context, id string) (event.Detail, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return event.Detail{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var d event.Detail

	err = r.prom.ObserveDB("events.get_by_id", func() error {
		return tx.QueryRow(ctx,
			`SELECT id, title, description, date, capacity, created_at, updated_at FROM events WHERE id = $1`,
			id,
		).Scan(&d.ID, &d.Title, &d.Description, &d.Date, &d.Capacity, &d.CreatedAt, &d.UpdatedAt)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return event.Detail{}, event.ErrNotFound
		}
		return event.Detail{}, fmt.Errorf("get event: %w", err)
	}

	d.Attendees, err = r.listAttendees(ctx, tx, id)
	if err != nil {
		return event.Detail{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return event.Detail{}, fmt.Errorf("commit read: %w", err)
	}

	return d, nil
}

func (r *EventsRepo) listAttendees(ctx context.Context, tx pgx.Tx, eventID string) ([]attendee.Attendee, error) {
	var rows pgx.Rows

	err := r.prom.ObserveDB("attendees.list_by_event", func() error {
		var err error
		rows, err = tx.Query(ctx, `
		SELECT id, event_id, name, email, created_at, updated_at
		FROM attendees
		WHERE event_id = $1
		ORDER BY created_at ASC, id ASC
		`, eventID)
		return err
	})

	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}

	defer rows.Close()

	out := make([]attendee.Attendee, 0)

	for rows.Next() {
		var a attendee.Attendee

		if err := rows.Scan(&a.ID, &a.EventID, &a.Name, &a.Email, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan attendee: %w", err)
		}
		out = append(out, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}

	return out, nil
}

func (r *EventsRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
