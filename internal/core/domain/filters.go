package domain

import "time"

// ListingFilters — параметры выборки записей для read API.
// nil означает, что фильтр не применяется.
type ListingFilters struct {
	StatusBefore *time.Time // записи, свободные не позже этой даты
	PriceMin     *float64
	PriceMax     *float64
	DurationMin  *int
	DurationMax  *int
	RoomsMin     *float64
	RoomsMax     *float64
	AreaMin      *float64
	AreaMax      *float64
	FloorMin     *int
	FloorMax     *int
	IsNew        *bool
	PetsAllowed  *bool

	SortBy  string // status, price, duration, rooms, area, floor, publication_datetime
	SortAsc bool
}

// ListingPage — страница результатов с общим количеством.
type ListingPage struct {
	Listings     []ListingRecord
	TotalCount   int
	CurrentPage  int
	ItemsPerPage int
}
