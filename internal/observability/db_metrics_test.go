package observability_test

import (
	"errors"
	"testing"

	"github.com/dineqr/menuhub/internal/observability"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDBSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := observability.NewProm(reg)

	calls := 0

	err := p.ObserveDB("restaurants.get_by_id", func() error {
		calls++
		return nil
	})

	if err != nil {
		t.Fatalf("ObserveDB returned %v, want nil", err)
	}

	if calls != 1 {
		t.Fatalf("fn ran %d times, want 1", calls)
	}

	if got := testutil.CollectAndCount(p.DbQueryDuration); got != 1 {
		t.Fatalf("got %d duration series, want 1", got)
	}

	if got := testutil.CollectAndCount(p.DbErrorsTotal); got != 0 {
		t.Fatalf("got %d error series, want 0", got)
	}
}

func TestObserveDBClassifiesErrors(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		wantClass string
	}{
		{
			name:      "unique_violation",
			err:       &pgconn.PgError{Code: "23505"},
			wantClass: "unique_violation",
		},
		{
			name:      "serialization_failure",
			err:       &pgconn.PgError{Code: "40001"},
			wantClass: "serialization_failure",
		},
		{
			name:      "other_pg_code",
			err:       &pgconn.PgError{Code: "23503"},
			wantClass: "pg_23503",
		},
		{
			name:      "timeout",
			err:       errors.New("context deadline exceeded"),
			wantClass: "timeout",
		},
		{
			name:      "plain_error",
			err:       errors.New("no rows in result set"),
			wantClass: "unknown",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reg := prometheus.NewRegistry()
			p := observability.NewProm(reg)

			err := p.ObserveDB("users.get_by_id", func() error {
				return tc.err
			})

			if !errors.Is(err, tc.err) {
				t.Fatalf("ObserveDB returned %v, want %v", err, tc.err)
			}

			got := testutil.ToFloat64(p.DbErrorsTotal.WithLabelValues("users.get_by_id", tc.wantClass))

			if got != 1 {
				t.Fatalf("got %v errors classed %q, want 1", got, tc.wantClass)
			}
		})
	}
}
