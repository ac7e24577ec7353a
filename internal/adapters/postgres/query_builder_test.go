package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

func TestApplyFiltersEmpty(t *testing.T) {
	where, order, args := applyFilters(domain.ListingFilters{})
	if where != "" {
		t.Errorf("where = %q, want empty", where)
	}
	if order != "ORDER BY publication_datetime DESC" {
		t.Errorf("order = %q", order)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want none", args)
	}
}

func TestApplyFiltersRanges(t *testing.T) {
	priceMin, priceMax := 800.0, 1500.0
	roomsMin := 2.0
	floorMax := 10
	isNew := true
	status := time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)

	where, _, args := applyFilters(domain.ListingFilters{
		StatusBefore: &status,
		PriceMin:     &priceMin,
		PriceMax:     &priceMax,
		RoomsMin:     &roomsMin,
		FloorMax:     &floorMax,
		IsNew:        &isNew,
	})

	for _, want := range []string{
		"status <= $1",
		"price >= $2",
		"price <= $3",
		"rooms >= $4",
		"floor <= $5",
		"is_new = $6",
	} {
		if !strings.Contains(where, want) {
			t.Errorf("where = %q, missing %q", where, want)
		}
	}
	if len(args) != 6 {
		t.Errorf("args = %v, want 6 values", args)
	}
}

func TestApplyFiltersSorting(t *testing.T) {
	tests := []struct {
		name    string
		sortBy  string
		sortAsc bool
		want    string
	}{
		{"whitelisted column ascending", "rooms", true, "ORDER BY rooms ASC"},
		{"whitelisted column descending", "price", false, "ORDER BY price DESC"},
		{"unknown column falls back", "id; DROP TABLE tg_posts", true, "ORDER BY publication_datetime ASC"},
		{"empty column falls back", "", false, "ORDER BY publication_datetime DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, order, _ := applyFilters(domain.ListingFilters{SortBy: tt.sortBy, SortAsc: tt.sortAsc})
			if order != tt.want {
				t.Errorf("order = %q, want %q", order, tt.want)
			}
		})
	}
}
