package usecases_port

import (
	"context"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

type FindListingsPort interface {
	Execute(ctx context.Context, filters domain.ListingFilters, limit, offset int) (*domain.ListingPage, error)
}

type GetListingPort interface {
	Execute(ctx context.Context, id int64) (*domain.ListingRecord, error)
}
