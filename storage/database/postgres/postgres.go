// Package pgrepos provides the PostgreSQL repositories backing the core
// domain packages. Every statement runs under the configured per-statement
// deadline; a missed deadline surfaces as core.ErrUnavailable so callers can
// tell an unavailable store from a missing row.
package pgrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/qitc/core"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// dbErr maps low-level failures to domain errors: sql.ErrNoRows to the given
// notFound sentinel, deadline/cancellation to core.ErrUnavailable.
func dbErr(err, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows) && notFound != nil:
		return notFound
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return core.ErrUnavailable
	default:
		return err
	}
}

func deadline(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}
