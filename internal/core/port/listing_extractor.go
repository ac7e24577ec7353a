package port

import (
	"context"
	"time"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

// ListingExtractorPort — контракт извлечения структурированной записи
// из сырого текста объявления. Реализуется построчной грамматикой,
// генеративной моделью и фасадом, который их комбинирует.
type ListingExtractorPort interface {
	Extract(ctx context.Context, text string, postTime time.Time) (*domain.ListingRecord, error)
}
