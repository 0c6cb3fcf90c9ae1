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

type AttendeesRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAttendeesRepo(pool *pgxpool.Pool, prom *observability.Prom) *AttendeesRepo {
	return &AttendeesRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *AttendeesRepo) BeginTx(ctx context.Context) (pgx.Tx, error) {
	return repo.pool.BeginTx(ctx, pgx.TxOptions{})
}

// Register enforces capacity and (event, email) uniqueness in a single
// transaction. The event row lock serializes registrations for the same event
// across every process sharing the database.
func (repo *AttendeesRepo) Register(ctx context.Context, req attendee.CreateAttendeeRequest) (a attendee.Attendee, err error) {
	tx, err := repo.BeginTx(ctx)
	if err != nil {
		return attendee.Attendee{}, fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	a, err = repo.RegisterTx(ctx, tx, req)
	if err != nil {
		return attendee.Attendee{}, err
	}

	if err = tx.Commit(ctx); err != nil {
		return attendee.Attendee{}, fmt.Errorf("commit registration: %w", err)
	}

	return a, nil
}

// RegisterTx runs the registration steps inside tx. The caller owns commit
// and rollback.
func (repo *AttendeesRepo) RegisterTx(ctx context.Context, tx pgx.Tx, req attendee.CreateAttendeeRequest) (attendee.Attendee, error) {
	// 1) lock the event row
	var capacity int
	err := repo.prom.ObserveDB("attendees.register.lock_event", func() error {
		return tx.QueryRow(ctx, `SELECT capacity FROM events WHERE id = $1 FOR UPDATE`, req.EventID).Scan(&capacity)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendee.Attendee{}, event.ErrNotFound
		}
		return attendee.Attendee{}, fmt.Errorf("lock event: %w", err)
	}

	// 2) duplicate email for this event
	var exists bool
	err = repo.prom.ObserveDB("attendees.register.duplicate_check", func() error {
		return tx.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM attendees
			WHERE event_id = $1 AND email = $2
		)`, req.EventID, req.Email).Scan(&exists)
	})

	if err != nil {
		return attendee.Attendee{}, fmt.Errorf("duplicate check: %w", err)
	}

	if exists {
		return attendee.Attendee{}, attendee.ErrAlreadyRegistered
	}

	// 3) capacity, counted in its own statement so it sees the previous lock holder's insert
	var current int
	err = repo.prom.ObserveDB("attendees.register.count", func() error {
		return tx.QueryRow(ctx, `SELECT COUNT(*) FROM attendees WHERE event_id = $1`, req.EventID).Scan(&current)
	})

	if err != nil {
		return attendee.Attendee{}, fmt.Errorf("count attendees: %w", err)
	}

	if current >= capacity {
		return attendee.Attendee{}, attendee.ErrEventFull
	}

	// 4) insert
	a := attendee.NewFromCreateRequest(req)

	err = repo.prom.ObserveDB("attendees.register.insert", func() error {
		_, e := tx.Exec(ctx, `
		INSERT INTO attendees (id, event_id, name, email, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, a.ID, a.EventID, a.Name, a.Email, a.CreatedAt, a.UpdatedAt)
		return e
	})

	if err != nil {
		if isConstraintViolation(err, attendeesEventEmailUniq) {
			return attendee.Attendee{}, attendee.ErrAlreadyRegistered
		}
		return attendee.Attendee{}, fmt.Errorf("insert attendee: %w", err)
	}

	return a, nil
}
