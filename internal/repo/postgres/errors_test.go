package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsConstraintViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"duplicate email", &pgconn.PgError{Code: "23505", ConstraintName: attendeesEventEmailUniq}, true},
		{"wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: attendeesEventEmailUniq}), true},
		{"other constraint", &pgconn.PgError{Code: "23505", ConstraintName: "attendees_pkey"}, false},
		{"foreign key", &pgconn.PgError{Code: "23503", ConstraintName: attendeesEventEmailUniq}, false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isConstraintViolation(tt.err, attendeesEventEmailUniq))
		})
	}
}
