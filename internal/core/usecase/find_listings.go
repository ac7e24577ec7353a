package usecase

import (
	"context"
	"fmt"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
	"github.com/MoguchiyDuh/televito/internal/core/port"
)

// FindListingsUseCase возвращает страницу записей по фильтрам read API.
type FindListingsUseCase struct {
	query port.ListingQueryPort
}

func NewFindListingsUseCase(query port.ListingQueryPort) *FindListingsUseCase {
	return &FindListingsUseCase{query: query}
}

func (uc *FindListingsUseCase) Execute(ctx context.Context, filters domain.ListingFilters, limit, offset int) (*domain.ListingPage, error) {
	page, err := uc.query.FindListings(ctx, filters, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("finding listings: %w", err)
	}
	return page, nil
}

// GetListingUseCase возвращает одну запись по идентификатору.
type GetListingUseCase struct {
	query port.ListingQueryPort
}

func NewGetListingUseCase(query port.ListingQueryPort) *GetListingUseCase {
	return &GetListingUseCase{query: query}
}

func (uc *GetListingUseCase) Execute(ctx context.Context, id int64) (*domain.ListingRecord, error) {
	return uc.query.GetListing(ctx, id)
}
