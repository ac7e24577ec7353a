package usecases_port

import (
	"context"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

type ReconcileListingPort interface {
	Execute(ctx context.Context, record domain.ListingRecord) (domain.ReconcileOutcome, error)
}
