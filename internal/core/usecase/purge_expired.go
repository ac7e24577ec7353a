package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/MoguchiyDuh/televito/internal/contextkeys"
	"github.com/MoguchiyDuh/televito/internal/core/port"
)

// PurgeExpiredUseCase удаляет записи, чья публикация старше срока хранения.
// Запускается перед каждым проходом по ленте.
type PurgeExpiredUseCase struct {
	storage   port.ListingStoragePort
	retention time.Duration
}

func NewPurgeExpiredUseCase(storage port.ListingStoragePort, retention time.Duration) *PurgeExpiredUseCase {
	return &PurgeExpiredUseCase{
		storage:   storage,
		retention: retention,
	}
}

func (uc *PurgeExpiredUseCase) Execute(ctx context.Context) (int64, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "PurgeExpired"})

	cutoff := time.Now().Add(-uc.retention)
	deleted, err := uc.storage.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging expired listings: %w", err)
	}

	if deleted > 0 {
		logger.Info("Expired listings purged", port.Fields{
			"deleted": deleted,
			"cutoff":  cutoff.Format(time.RFC3339),
		})
	}
	return deleted, nil
}
