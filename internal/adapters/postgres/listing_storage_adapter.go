package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

// ListingStorageAdapter реализует ListingStoragePort для PostgreSQL.
type ListingStorageAdapter struct {
	pool *pgxpool.Pool
}

func NewListingStorageAdapter(pool *pgxpool.Pool) (*ListingStorageAdapter, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &ListingStorageAdapter{
		pool: pool,
	}, nil
}

const listingColumns = `
	id, google_maps_url, location, status, price, duration, is_new, rooms,
	room_description, area, floor, floors_in_building, pets_allowed, parking,
	images, publication_datetime`

// FindByFingerprint ищет запись по отпечатку объявления.
// NULL-части отпечатка сравниваются через IS NOT DISTINCT FROM,
// иначе записи без площади или этажа никогда не совпадут.
func (a *ListingStorageAdapter) FindByFingerprint(ctx context.Context, fp domain.Fingerprint) (*domain.ListingRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tg_posts
		WHERE location = $1
		  AND area IS NOT DISTINCT FROM $2
		  AND floor IS NOT DISTINCT FROM $3
		  AND floors_in_building IS NOT DISTINCT FROM $4
		LIMIT 1`, listingColumns)

	row := a.pool.QueryRow(ctx, query, fp.Location, fp.Area, fp.Floor, fp.FloorsInBuilding)
	record, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query listing by fingerprint: %w", err)
	}
	return record, nil
}

// Insert вставляет новую запись и возвращает ее идентификатор.
func (a *ListingStorageAdapter) Insert(ctx context.Context, record domain.ListingRecord) (int64, error) {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO tg_posts (
			google_maps_url, location, status, price, duration, is_new, rooms,
			room_description, area, floor, floors_in_building, pets_allowed,
			parking, images, publication_datetime
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15
		)
		RETURNING id`

	var id int64
	err = tx.QueryRow(ctx, query,
		record.GoogleMapsURL, record.Location, record.Status, record.Price,
		record.Duration, record.IsNew, record.Rooms, record.RoomDescription,
		record.Area, record.Floor, record.FloorsInBuilding, record.PetsAllowed,
		record.Parking, record.Images, record.PublicationTime,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, domain.ErrDuplicateListing
		}
		return 0, fmt.Errorf("failed to insert listing: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

// Update перезаписывает изменяемые поля записи в одной транзакции.
func (a *ListingStorageAdapter) Update(ctx context.Context, id int64, record domain.ListingRecord) error {
	tx, err := a.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE tg_posts SET
			google_maps_url = $1,
			status = $2,
			price = $3,
			duration = $4,
			is_new = $5,
			rooms = $6,
			room_description = $7,
			pets_allowed = $8,
			parking = $9,
			images = $10,
			publication_datetime = $11
		WHERE id = $12`

	tag, err := tx.Exec(ctx, query,
		record.GoogleMapsURL, record.Status, record.Price, record.Duration,
		record.IsNew, record.Rooms, record.RoomDescription, record.PetsAllowed,
		record.Parking, record.Images, record.PublicationTime, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update listing %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrListingNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteOlderThan удаляет записи, опубликованные раньше порога.
func (a *ListingStorageAdapter) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := a.pool.Exec(ctx, `DELETE FROM tg_posts WHERE publication_datetime < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired listings: %w", err)
	}
	return tag.RowsAffected(), nil
}

// MaxPublicationTime возвращает дату самой свежей публикации или nil.
func (a *ListingStorageAdapter) MaxPublicationTime(ctx context.Context) (*time.Time, error) {
	var maxPub *time.Time
	err := a.pool.QueryRow(ctx, `SELECT MAX(publication_datetime) FROM tg_posts`).Scan(&maxPub)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest publication time: %w", err)
	}
	return maxPub, nil
}

// scanListing читает одну строку tg_posts в доменную запись.
func scanListing(row pgx.Row) (*domain.ListingRecord, error) {
	var rec domain.ListingRecord
	err := row.Scan(
		&rec.ID, &rec.GoogleMapsURL, &rec.Location, &rec.Status, &rec.Price,
		&rec.Duration, &rec.IsNew, &rec.Rooms, &rec.RoomDescription, &rec.Area,
		&rec.Floor, &rec.FloorsInBuilding, &rec.PetsAllowed, &rec.Parking,
		&rec.Images, &rec.PublicationTime,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
