package port

import (
	"context"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

// ListingEventsPort публикует исход сверки для внешних потребителей.
type ListingEventsPort interface {
	PublishOutcome(ctx context.Context, record domain.ListingRecord, outcome domain.ReconcileOutcome, changes []domain.FieldChange) error
}
