package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

// Scheduler implements ports.ExpiryScheduler on Temporal. Each listing has at
// most one pending expiry run, keyed by WorkflowID.
type Scheduler struct {
	client    client.Client
	taskQueue string
}

// NewScheduler creates a Scheduler starting runs on taskQueue.
func NewScheduler(c client.Client, taskQueue string) *Scheduler {
	return &Scheduler{client: c, taskQueue: taskQueue}
}

// WorkflowID is the expiry workflow id for a listing.
func WorkflowID(kind domain.FeatureKind, id string) string {
	return fmt.Sprintf("expire-%s-%s", kind, id)
}

// ScheduleExpiry replaces any pending expiry run of the listing with one
// firing at at.
func (s *Scheduler) ScheduleExpiry(ctx context.Context, kind domain.FeatureKind, id string, at time.Time) error {
	wid := WorkflowID(kind, id)

	err := s.client.TerminateWorkflow(ctx, wid, "", "rescheduled")
	var notFound *serviceerror.NotFound
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("terminate %s: %w", wid, err)
	}

	_, err = s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        wid,
		TaskQueue: s.taskQueue,
	}, ListingExpiryWorkflow, ExpiryInput{Kind: kind, ID: id, At: at.UTC()})
	if err != nil {
		return fmt.Errorf("start %s: %w", wid, err)
	}
	return nil
}
