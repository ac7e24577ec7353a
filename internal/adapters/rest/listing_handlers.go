package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
	usecases_port "github.com/MoguchiyDuh/televito/internal/core/port/usecases"
)

// ListingHandler обрабатывает запросы read API к объявлениям.
type ListingHandler struct {
	findListings usecases_port.FindListingsPort
	getListing   usecases_port.GetListingPort
}

func NewListingHandler(findListings usecases_port.FindListingsPort, getListing usecases_port.GetListingPort) *ListingHandler {
	return &ListingHandler{
		findListings: findListings,
		getListing:   getListing,
	}
}

// FindListings возвращает страницу объявлений по фильтрам из query-параметров.
// Диапазонные параметры принимают "N" или "N-M", см. parseListingFilters.
func (h *ListingHandler) FindListings(w http.ResponseWriter, r *http.Request) {
	filters, err := parseListingFilters(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit, err := GetLimitOrDefault(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := GetPageOrDefault(r)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.findListings.Execute(r.Context(), filters, limit, (page-1)*limit)
	if err != nil {
		WriteJSONError(w, http.StatusInternalServerError, "failed to find listings")
		return
	}

	RespondWithJSON(w, http.StatusOK, toPaginatedResponse(result))
}

// GetListing возвращает одно объявление по идентификатору.
func (h *ListingHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "listingID")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		WriteJSONError(w, http.StatusBadRequest, "listing id must be an integer")
		return
	}

	rec, err := h.getListing.Execute(r.Context(), id)
	if errors.Is(err, domain.ErrListingNotFound) {
		WriteJSONError(w, http.StatusNotFound, "listing not found")
		return
	}
	if err != nil {
		WriteJSONError(w, http.StatusInternalServerError, "failed to get listing")
		return
	}

	RespondWithJSON(w, http.StatusOK, toListingResponse(*rec))
}

func errInvalidQueryParam(name, value string) error {
	return fmt.Errorf("invalid value %q for parameter %q", value, name)
}

// parseListingFilters разбирает фильтры выборки.
// Одиночное значение диапазонного параметра трактуется по-разному:
// price и duration — верхняя граница, rooms — окно [N, N+0.5],
// area — окно [N-10, N+10], floor — точное совпадение.
func parseListingFilters(r *http.Request) (domain.ListingFilters, error) {
	var filters domain.ListingFilters
	q := r.URL.Query()

	if raw := q.Get("status"); raw != "" {
		var statusBefore time.Time
		if strings.EqualFold(raw, "today") {
			now := time.Now()
			statusBefore = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		} else {
			parsed, err := time.Parse("2006-01-02", raw)
			if err != nil {
				return filters, errInvalidQueryParam("status", raw)
			}
			statusBefore = parsed
		}
		filters.StatusBefore = &statusBefore
	}

	if raw := q.Get("price"); raw != "" {
		min, max, isRange, err := parseFloatRange(raw)
		if err != nil {
			return filters, errInvalidQueryParam("price", raw)
		}
		if isRange {
			filters.PriceMin, filters.PriceMax = min, max
		} else {
			filters.PriceMax = max
		}
	}

	if raw := q.Get("duration"); raw != "" {
		min, max, isRange, err := parseIntRange(raw)
		if err != nil {
			return filters, errInvalidQueryParam("duration", raw)
		}
		if isRange {
			filters.DurationMin, filters.DurationMax = min, max
		} else {
			filters.DurationMax = max
		}
	}

	if raw := q.Get("rooms"); raw != "" {
		min, max, isRange, err := parseFloatRange(raw)
		if err != nil {
			return filters, errInvalidQueryParam("rooms", raw)
		}
		if isRange {
			filters.RoomsMin, filters.RoomsMax = min, max
		} else {
			upper := *max + 0.5
			filters.RoomsMin, filters.RoomsMax = min, &upper
		}
	}

	if raw := q.Get("area"); raw != "" {
		min, max, isRange, err := parseFloatRange(raw)
		if err != nil {
			return filters, errInvalidQueryParam("area", raw)
		}
		if isRange {
			filters.AreaMin, filters.AreaMax = min, max
		} else {
			lower, upper := *max-10, *max+10
			filters.AreaMin, filters.AreaMax = &lower, &upper
		}
	}

	if raw := q.Get("floor"); raw != "" {
		min, max, isRange, err := parseIntRange(raw)
		if err != nil {
			return filters, errInvalidQueryParam("floor", raw)
		}
		if isRange {
			filters.FloorMin, filters.FloorMax = min, max
		} else {
			filters.FloorMin, filters.FloorMax = max, max
		}
	}

	if raw := q.Get("is_new"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, errInvalidQueryParam("is_new", raw)
		}
		filters.IsNew = &value
	}

	if raw := q.Get("pets_allowed"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return filters, errInvalidQueryParam("pets_allowed", raw)
		}
		filters.PetsAllowed = &value
	}

	filters.SortBy = q.Get("sort_by")
	filters.SortAsc = strings.EqualFold(q.Get("sort_order"), "asc")

	return filters, nil
}

// splitRange делит "N-M" на границы. Одиночное значение возвращает в обе.
func splitRange(raw string) (string, string, bool) {
	if lo, hi, found := strings.Cut(raw, "-"); found {
		return strings.TrimSpace(lo), strings.TrimSpace(hi), true
	}
	return raw, raw, false
}

func parseFloatRange(raw string) (*float64, *float64, bool, error) {
	loStr, hiStr, isRange := splitRange(raw)
	lo, err := strconv.ParseFloat(loStr, 64)
	if err != nil {
		return nil, nil, false, err
	}
	hi, err := strconv.ParseFloat(hiStr, 64)
	if err != nil {
		return nil, nil, false, err
	}
	return &lo, &hi, isRange, nil
}

func parseIntRange(raw string) (*int, *int, bool, error) {
	loStr, hiStr, isRange := splitRange(raw)
	lo, err := strconv.Atoi(loStr)
	if err != nil {
		return nil, nil, false, err
	}
	hi, err := strconv.Atoi(hiStr)
	if err != nil {
		return nil, nil, false, err
	}
	return &lo, &hi, isRange, nil
}
