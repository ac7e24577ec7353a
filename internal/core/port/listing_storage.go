package port

import (
	"context"
	"time"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

// ListingStoragePort — контракт хранилища записей для движка сверки.
type ListingStoragePort interface {
	// FindByFingerprint возвращает запись с таким же отпечатком
	// или (nil, nil), если ее нет.
	FindByFingerprint(ctx context.Context, fp domain.Fingerprint) (*domain.ListingRecord, error)

	// Insert вставляет новую запись и возвращает ее идентификатор.
	// При нарушении уникальности отпечатка возвращает domain.ErrDuplicateListing.
	Insert(ctx context.Context, record domain.ListingRecord) (int64, error)

	// Update перезаписывает изменяемые поля существующей записи
	// в рамках одной транзакции.
	Update(ctx context.Context, id int64, record domain.ListingRecord) error

	// DeleteOlderThan удаляет записи, опубликованные раньше порога,
	// и возвращает количество удаленных.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// MaxPublicationTime возвращает максимальную дату публикации в хранилище
	// или nil, если хранилище пусто.
	MaxPublicationTime(ctx context.Context) (*time.Time, error)
}

// ListingQueryPort — контракт выборки записей для read API.
type ListingQueryPort interface {
	FindListings(ctx context.Context, filters domain.ListingFilters, limit, offset int) (*domain.ListingPage, error)

	// GetListing возвращает запись по идентификатору
	// или domain.ErrListingNotFound.
	GetListing(ctx context.Context, id int64) (*domain.ListingRecord, error)
}
