package rest

import (
	"time"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

// ListingResponse - DTO карточки объявления.
type ListingResponse struct {
	ID               int64    `json:"id"`
	GoogleMapsURL    *string  `json:"google_maps_url"`
	Location         string   `json:"location"`
	Status           *string  `json:"status"` // дата "YYYY-MM-DD" или null
	Price            float64  `json:"price"`
	Duration         *int     `json:"duration"`
	IsNew            bool     `json:"is_new"`
	Rooms            *float64 `json:"rooms"`
	RoomDescription  *string  `json:"room_description"`
	Area             *float64 `json:"area"`
	Floor            *int     `json:"floor"`
	FloorsInBuilding *int     `json:"floors_in_building"`
	PetsAllowed      bool     `json:"pets_allowed"`
	Parking          *string  `json:"parking"`
	Images           []string `json:"images"`
	PublicationTime  string   `json:"publication_datetime"`
}

// PaginatedListingsResponse - DTO для ответа со списком и пагинацией.
type PaginatedListingsResponse struct {
	Data    []ListingResponse `json:"listings"`
	Total   int               `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

func toListingResponse(rec domain.ListingRecord) ListingResponse {
	resp := ListingResponse{
		ID:               rec.ID,
		GoogleMapsURL:    rec.GoogleMapsURL,
		Location:         rec.Location,
		Price:            rec.Price,
		Duration:         rec.Duration,
		IsNew:            rec.IsNew,
		Rooms:            rec.Rooms,
		RoomDescription:  rec.RoomDescription,
		Area:             rec.Area,
		Floor:            rec.Floor,
		FloorsInBuilding: rec.FloorsInBuilding,
		PetsAllowed:      rec.PetsAllowed,
		Parking:          rec.Parking,
		Images:           rec.Images,
		PublicationTime:  rec.PublicationTime.Format(time.RFC3339),
	}
	if rec.Status != nil {
		status := rec.Status.Format("2006-01-02")
		resp.Status = &status
	}
	if resp.Images == nil {
		resp.Images = []string{}
	}
	return resp
}

func toPaginatedResponse(page *domain.ListingPage) PaginatedListingsResponse {
	data := make([]ListingResponse, 0, len(page.Listings))
	for _, rec := range page.Listings {
		data = append(data, toListingResponse(rec))
	}
	return PaginatedListingsResponse{
		Data:    data,
		Total:   page.TotalCount,
		Page:    page.CurrentPage,
		PerPage: page.ItemsPerPage,
	}
}
