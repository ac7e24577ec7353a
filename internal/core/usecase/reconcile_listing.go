package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MoguchiyDuh/televito/internal/constants"
	"github.com/MoguchiyDuh/televito/internal/contextkeys"
	"github.com/MoguchiyDuh/televito/internal/core/domain"
	"github.com/MoguchiyDuh/televito/internal/core/port"
)

// ReconcileListingUseCase сводит извлеченную запись с хранилищем:
// новое объявление вставляется, повторная публикация того же объявления
// обновляет запись, если она строго новее сохраненной.
type ReconcileListingUseCase struct {
	storage port.ListingStoragePort
	audit   port.AuditSinkPort
	events  port.ListingEventsPort // nil, если публикация событий выключена
}

func NewReconcileListingUseCase(
	storage port.ListingStoragePort,
	audit port.AuditSinkPort,
	events port.ListingEventsPort,
) *ReconcileListingUseCase {
	return &ReconcileListingUseCase{
		storage: storage,
		audit:   audit,
		events:  events,
	}
}

// Execute возвращает исход сверки. Гонка вставки по одинаковому отпечатку
// схлопывается в OutcomeSkipped: нарушение уникальности не ошибка прохода.
func (uc *ReconcileListingUseCase) Execute(ctx context.Context, record domain.ListingRecord) (domain.ReconcileOutcome, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"use_case":    "ReconcileListing",
		"fingerprint": record.Fingerprint().Key(),
	})

	existing, err := uc.storage.FindByFingerprint(ctx, record.Fingerprint())
	if err != nil {
		return domain.OutcomeSkipped, fmt.Errorf("looking up listing by fingerprint: %w", err)
	}

	if existing == nil {
		id, err := uc.storage.Insert(ctx, record)
		if errors.Is(err, domain.ErrDuplicateListing) {
			_ = uc.audit.Store(constants.AuditTitleDuplicateInsert, record.Fingerprint().Key())
			logger.Warn("Concurrent insert collided on fingerprint, skipping", nil)
			return domain.OutcomeSkipped, nil
		}
		if err != nil {
			return domain.OutcomeSkipped, fmt.Errorf("inserting listing: %w", err)
		}
		record.ID = id
		logger.Info("Listing inserted", port.Fields{"listing_id": id})
		uc.publish(ctx, logger, record, domain.OutcomeInserted, nil)
		return domain.OutcomeInserted, nil
	}

	// При равных датах публикации сохраненная запись остается как есть.
	if !record.PublicationTime.After(existing.PublicationTime) {
		logger.Debug("Stored listing is not older, skipping", port.Fields{"listing_id": existing.ID})
		return domain.OutcomeSkipped, nil
	}

	changes := diffListings(*existing, record)
	if err := uc.storage.Update(ctx, existing.ID, record); err != nil {
		return domain.OutcomeSkipped, fmt.Errorf("updating listing %d: %w", existing.ID, err)
	}

	if len(changes) > 0 {
		lines := make([]string, 0, len(changes))
		for _, c := range changes {
			lines = append(lines, c.String())
		}
		_ = uc.audit.Store(constants.AuditTitleReconcileDiff,
			fmt.Sprintf("listing %d\n%s", existing.ID, strings.Join(lines, "\n")))
	}

	record.ID = existing.ID
	logger.Info("Listing updated", port.Fields{"listing_id": existing.ID, "changed_fields": len(changes)})
	uc.publish(ctx, logger, record, domain.OutcomeUpdated, changes)
	return domain.OutcomeUpdated, nil
}

// publish отправляет событие сверки. Сбой шины не роняет сверку.
func (uc *ReconcileListingUseCase) publish(ctx context.Context, logger port.LoggerPort, record domain.ListingRecord, outcome domain.ReconcileOutcome, changes []domain.FieldChange) {
	if uc.events == nil {
		return
	}
	if err := uc.events.PublishOutcome(ctx, record, outcome, changes); err != nil {
		logger.Warn("Failed to publish reconcile event", port.Fields{"error": err.Error()})
	}
}

// diffListings перечисляет изменяемые поля, различающиеся между записями.
func diffListings(old, new domain.ListingRecord) []domain.FieldChange {
	var changes []domain.FieldChange
	add := func(field, oldVal, newVal string) {
		if oldVal != newVal {
			changes = append(changes, domain.FieldChange{Field: field, Old: oldVal, New: newVal})
		}
	}

	add("google_maps_url", strPtr(old.GoogleMapsURL), strPtr(new.GoogleMapsURL))
	add("status", timePtr(old.Status), timePtr(new.Status))
	add("price", fmt.Sprintf("%g", old.Price), fmt.Sprintf("%g", new.Price))
	add("duration", intPtr(old.Duration), intPtr(new.Duration))
	add("is_new", fmt.Sprintf("%t", old.IsNew), fmt.Sprintf("%t", new.IsNew))
	add("rooms", floatPtr(old.Rooms), floatPtr(new.Rooms))
	add("room_description", strPtr(old.RoomDescription), strPtr(new.RoomDescription))
	add("pets_allowed", fmt.Sprintf("%t", old.PetsAllowed), fmt.Sprintf("%t", new.PetsAllowed))
	add("parking", strPtr(old.Parking), strPtr(new.Parking))
	add("images", fmt.Sprintf("%d images", len(old.Images)), fmt.Sprintf("%d images", len(new.Images)))
	add("publication_datetime", old.PublicationTime.Format(time.RFC3339), new.PublicationTime.Format(time.RFC3339))
	return changes
}

func strPtr(p *string) string {
	if p == nil {
		return "null"
	}
	return *p
}

func intPtr(p *int) string {
	if p == nil {
		return "null"
	}
	return fmt.Sprintf("%d", *p)
}

func floatPtr(p *float64) string {
	if p == nil {
		return "null"
	}
	return fmt.Sprintf("%g", *p)
}

func timePtr(p *time.Time) string {
	if p == nil {
		return "null"
	}
	return p.Format("2006-01-02")
}
