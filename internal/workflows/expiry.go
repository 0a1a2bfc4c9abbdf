package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

// ExpireListingActivity is the registered name of ExpiryActivities.ExpireListing.
const ExpireListingActivity = "ExpireListing"

// ExpiryInput is the input for the listing expiry workflow.
type ExpiryInput struct {
	Kind domain.FeatureKind
	ID   string
	At   time.Time
}

// ListingExpiryWorkflow sleeps until the listing's expiry time and then
// removes it. It returns whether the listing was removed.
func ListingExpiryWorkflow(ctx workflow.Context, input ExpiryInput) (bool, error) {
	logger := workflow.GetLogger(ctx)

	if wait := input.At.Sub(workflow.Now(ctx)); wait > 0 {
		logger.Info("Waiting for listing expiry", "kind", input.Kind, "id", input.ID, "wait", wait)
		if err := workflow.Sleep(ctx, wait); err != nil {
			return false, err
		}
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 5 * time.Second,
			MaximumAttempts: 5,
		},
	})

	var removed bool
	if err := workflow.ExecuteActivity(ctx, ExpireListingActivity, input.Kind, input.ID).Get(ctx, &removed); err != nil {
		return false, err
	}

	logger.Info("Listing expiry finished", "kind", input.Kind, "id", input.ID, "removed", removed)
	return removed, nil
}
