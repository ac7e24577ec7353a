package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

// ListingQueryAdapter реализует ListingQueryPort для PostgreSQL.
type ListingQueryAdapter struct {
	pool *pgxpool.Pool
}

func NewListingQueryAdapter(pool *pgxpool.Pool) (*ListingQueryAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &ListingQueryAdapter{
		pool: pool,
	}, nil
}

// FindListings возвращает страницу записей и общее количество подходящих.
func (a *ListingQueryAdapter) FindListings(ctx context.Context, filters domain.ListingFilters, limit, offset int) (*domain.ListingPage, error) {
	whereClause, orderClause, args := applyFilters(filters)

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM tg_posts %s`, whereClause)
	var total int
	if err := a.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count listings: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM tg_posts
		%s
		%s
		LIMIT $%d OFFSET $%d`,
		listingColumns, whereClause, orderClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := a.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	listings := make([]domain.ListingRecord, 0, limit)
	for rows.Next() {
		rec, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		listings = append(listings, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read listing rows: %w", err)
	}

	page := &domain.ListingPage{
		Listings:     listings,
		TotalCount:   total,
		ItemsPerPage: limit,
	}
	if limit > 0 {
		page.CurrentPage = offset/limit + 1
	}
	return page, nil
}

// GetListing возвращает одну запись по идентификатору.
func (a *ListingQueryAdapter) GetListing(ctx context.Context, id int64) (*domain.ListingRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM tg_posts WHERE id = $1`, listingColumns)

	rec, err := scanListing(a.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query listing %d: %w", id, err)
	}
	return rec, nil
}
