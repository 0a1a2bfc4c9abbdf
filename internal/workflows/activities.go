package workflows

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/pkg/metrics"
)

// Expirer removes a listing once its expiry has passed. JobService and
// EventService satisfy it.
type Expirer interface {
	Expire(ctx context.Context, id string, now time.Time) (bool, error)
}

// ExpiryActivities holds the activity implementations for the listing expiry workflow.
type ExpiryActivities struct {
	Jobs   Expirer
	Events Expirer
	// Now defaults to time.Now.
	Now func() time.Time
}

// ExpireListing removes the listing if it is still due. It reports whether
// anything was removed; a listing rescheduled or deleted in the meantime is
// left alone.
func (a *ExpiryActivities) ExpireListing(ctx context.Context, kind domain.FeatureKind, id string) (bool, error) {
	var target Expirer
	switch kind {
	case domain.FeatureKindJob:
		target = a.Jobs
	case domain.FeatureKindEvent:
		target = a.Events
	}
	if target == nil {
		return false, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("no expirer for kind %q", kind), "UnknownKind", nil)
	}

	now := time.Now
	if a.Now != nil {
		now = a.Now
	}

	removed, err := target.Expire(ctx, id, now().UTC())
	if err != nil {
		return false, fmt.Errorf("expire %s %s: %w", kind, id, err)
	}
	if removed {
		metrics.ListingsExpired.WithLabelValues(string(kind)).Inc()
		slog.InfoContext(ctx, "listing expired", "kind", kind, "id", id)
	}
	return removed, nil
}
