package postgres

import (
	"fmt"
	"strings"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

type queryBuilder struct {
	conditions []string
	args       []interface{}
	argId      int
}

func newQueryBuilder() *queryBuilder {
	return &queryBuilder{
		argId:      1,
		conditions: make([]string, 0),
		args:       make([]interface{}, 0),
	}
}

func (qb *queryBuilder) addCondition(condition string, fieldName string, arg interface{}) {
	qb.conditions = append(qb.conditions, fmt.Sprintf(condition, fieldName, qb.argId))
	qb.args = append(qb.args, arg)
	qb.argId++
}

// AddFilter принимает указатели на float64 и int
func (qb *queryBuilder) AddFloatFilter(fieldName string, min *float64, max *float64) {
	if min != nil {
		qb.addCondition("%s >= $%d", fieldName, *min)
	}
	if max != nil {
		qb.addCondition("%s <= $%d", fieldName, *max)
	}
}

func (qb *queryBuilder) AddIntFilter(fieldName string, min *int, max *int) {
	if min != nil {
		qb.addCondition("%s >= $%d", fieldName, *min)
	}
	if max != nil {
		qb.addCondition("%s <= $%d", fieldName, *max)
	}
}

func (qb *queryBuilder) AddBoolFilter(fieldName string, value *bool) {
	if value != nil {
		qb.addCondition("%s = $%d", fieldName, *value)
	}
}

// build создает финальную WHERE-часть запроса
func (qb *queryBuilder) build() (string, []interface{}) {
	whereClause := ""
	if len(qb.conditions) > 0 {
		whereClause = "WHERE " + strings.Join(qb.conditions, " AND ")
	}
	return whereClause, qb.args
}

// sortColumns — колонки, по которым разрешена сортировка снаружи.
// Все остальное сортируется по дате публикации.
var sortColumns = map[string]string{
	"status":               "status",
	"price":                "price",
	"duration":             "duration",
	"rooms":                "rooms",
	"area":                 "area",
	"floor":                "floor",
	"publication_datetime": "publication_datetime",
}

// applyFilters разбирает фильтры read API и строит WHERE и ORDER BY.
func applyFilters(filters domain.ListingFilters) (string, string, []interface{}) {
	qb := newQueryBuilder()

	if filters.StatusBefore != nil {
		qb.addCondition("%s <= $%d", "status", *filters.StatusBefore)
	}
	qb.AddFloatFilter("price", filters.PriceMin, filters.PriceMax)
	qb.AddIntFilter("duration", filters.DurationMin, filters.DurationMax)
	qb.AddFloatFilter("rooms", filters.RoomsMin, filters.RoomsMax)
	qb.AddFloatFilter("area", filters.AreaMin, filters.AreaMax)
	qb.AddIntFilter("floor", filters.FloorMin, filters.FloorMax)
	qb.AddBoolFilter("is_new", filters.IsNew)
	qb.AddBoolFilter("pets_allowed", filters.PetsAllowed)

	whereClause, args := qb.build()

	column, ok := sortColumns[filters.SortBy]
	if !ok {
		column = "publication_datetime"
	}
	direction := "DESC"
	if filters.SortAsc {
		direction = "ASC"
	}
	orderClause := fmt.Sprintf("ORDER BY %s %s", column, direction)

	return whereClause, orderClause, args
}
