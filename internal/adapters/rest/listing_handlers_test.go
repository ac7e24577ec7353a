package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

type fakeFindListings struct {
	gotFilters domain.ListingFilters
	gotLimit   int
	gotOffset  int
	page       *domain.ListingPage
	err        error
}

func (f *fakeFindListings) Execute(_ context.Context, filters domain.ListingFilters, limit, offset int) (*domain.ListingPage, error) {
	f.gotFilters = filters
	f.gotLimit = limit
	f.gotOffset = offset
	if f.err != nil {
		return nil, f.err
	}
	if f.page != nil {
		return f.page, nil
	}
	return &domain.ListingPage{Listings: []domain.ListingRecord{}, ItemsPerPage: limit, CurrentPage: offset/limit + 1}, nil
}

type fakeGetListing struct {
	rec *domain.ListingRecord
	err error
}

func (f *fakeGetListing) Execute(_ context.Context, _ int64) (*domain.ListingRecord, error) {
	return f.rec, f.err
}

func newTestRouter(find *fakeFindListings, get *fakeGetListing) http.Handler {
	h := NewListingHandler(find, get)
	r := chi.NewRouter()
	r.Get("/api/v1/listings", h.FindListings)
	r.Get("/api/v1/listings/{listingID}", h.GetListing)
	return r
}

func TestFindListingsParsesRangeParams(t *testing.T) {
	find := &fakeFindListings{}
	router := newTestRouter(find, &fakeGetListing{})

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/listings?price=800-1500&rooms=2&area=50&floor=3&duration=12&is_new=true&sort_by=price&sort_order=asc&page_num=2&limit=5", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}

	f := find.gotFilters
	if f.PriceMin == nil || *f.PriceMin != 800 || f.PriceMax == nil || *f.PriceMax != 1500 {
		t.Errorf("price range = %v..%v", f.PriceMin, f.PriceMax)
	}
	if f.RoomsMin == nil || *f.RoomsMin != 2 || f.RoomsMax == nil || *f.RoomsMax != 2.5 {
		t.Errorf("rooms window = %v..%v, want 2..2.5", f.RoomsMin, f.RoomsMax)
	}
	if f.AreaMin == nil || *f.AreaMin != 40 || f.AreaMax == nil || *f.AreaMax != 60 {
		t.Errorf("area window = %v..%v, want 40..60", f.AreaMin, f.AreaMax)
	}
	if f.FloorMin == nil || *f.FloorMin != 3 || f.FloorMax == nil || *f.FloorMax != 3 {
		t.Errorf("floor = %v..%v, want exactly 3", f.FloorMin, f.FloorMax)
	}
	if f.DurationMax == nil || *f.DurationMax != 12 || f.DurationMin != nil {
		t.Errorf("duration = %v..%v, want upper bound 12", f.DurationMin, f.DurationMax)
	}
	if f.IsNew == nil || !*f.IsNew {
		t.Errorf("is_new = %v", f.IsNew)
	}
	if f.SortBy != "price" || !f.SortAsc {
		t.Errorf("sort = %q asc=%t", f.SortBy, f.SortAsc)
	}
	if find.gotLimit != 5 || find.gotOffset != 5 {
		t.Errorf("limit = %d, offset = %d, want 5 and 5", find.gotLimit, find.gotOffset)
	}
}

func TestFindListingsParsesStatus(t *testing.T) {
	find := &fakeFindListings{}
	router := newTestRouter(find, &fakeGetListing{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings?status=2024-12-01", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	want := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)
	if find.gotFilters.StatusBefore == nil || !find.gotFilters.StatusBefore.Equal(want) {
		t.Errorf("status filter = %v, want %v", find.gotFilters.StatusBefore, want)
	}
}

func TestFindListingsRejectsBadParams(t *testing.T) {
	router := newTestRouter(&fakeFindListings{}, &fakeGetListing{})

	for _, query := range []string{
		"?price=expensive",
		"?status=tomorrow",
		"?is_new=maybe",
		"?limit=0",
		"?page_num=-1",
	} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/listings"+query, nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("query %q: status = %d, want 400", query, rr.Code)
		}
	}
}

func TestGetListingResponses(t *testing.T) {
	status := time.Date(2024, time.December, 6, 0, 0, 0, 0, time.UTC)
	rec := &domain.ListingRecord{
		ID:              42,
		Location:        "Hercegovačka, Belgrade Waterfront, Savski venac",
		Status:          &status,
		Price:           1400,
		PublicationTime: time.Date(2024, time.November, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("found", func(t *testing.T) {
		router := newTestRouter(&fakeFindListings{}, &fakeGetListing{rec: rec})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/listings/42", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
		var resp ListingResponse
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if resp.ID != 42 || resp.Status == nil || *resp.Status != "2024-12-06" {
			t.Errorf("response = %+v", resp)
		}
		if resp.Images == nil {
			t.Error("images serialized as null, want empty array")
		}
	})

	t.Run("not found", func(t *testing.T) {
		router := newTestRouter(&fakeFindListings{}, &fakeGetListing{err: domain.ErrListingNotFound})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/listings/999", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rr.Code)
		}
	})

	t.Run("bad id", func(t *testing.T) {
		router := newTestRouter(&fakeFindListings{}, &fakeGetListing{})
		req := httptest.NewRequest(http.MethodGet, "/api/v1/listings/abc", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rr.Code)
		}
	})
}
