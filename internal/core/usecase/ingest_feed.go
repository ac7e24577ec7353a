package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/MoguchiyDuh/televito/internal/contextkeys"
	"github.com/MoguchiyDuh/televito/internal/core/domain"
	"github.com/MoguchiyDuh/televito/internal/core/port"
	usecases_port "github.com/MoguchiyDuh/televito/internal/core/port/usecases"
)

// IngestFeedUseCase — один проход по ленте: читает сообщения от новых
// к старым до отметки последней известной публикации, извлекает записи
// и сверяет их с хранилищем. Фото без подписи буферизуются и
// прикрепляются к ближайшей подписи ниже по ленте.
type IngestFeedUseCase struct {
	feed       port.FeedPort
	extractor  port.ListingExtractorPort
	reconciler usecases_port.ReconcileListingPort
	storage    port.ListingStoragePort
	pace       time.Duration // пауза между сообщениями, бережем лимиты API
	lookback   time.Duration // глубина первого прохода по пустому хранилищу
}

func NewIngestFeedUseCase(
	feed port.FeedPort,
	extractor port.ListingExtractorPort,
	reconciler usecases_port.ReconcileListingPort,
	storage port.ListingStoragePort,
	pace time.Duration,
	lookback time.Duration,
) *IngestFeedUseCase {
	return &IngestFeedUseCase{
		feed:       feed,
		extractor:  extractor,
		reconciler: reconciler,
		storage:    storage,
		pace:       pace,
		lookback:   lookback,
	}
}

// Execute возвращает статистику прохода. Ошибка извлечения одного поста
// не прерывает проход: пост учитывается в Failed, обход продолжается.
func (uc *IngestFeedUseCase) Execute(ctx context.Context) (domain.IngestStats, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "IngestFeed"})

	var stats domain.IngestStats

	highWater, err := uc.highWaterMark(ctx)
	if err != nil {
		return stats, err
	}
	logger.Info("Starting feed pass", port.Fields{"high_water": highWater.Format(time.RFC3339)})

	cursor, err := uc.feed.Open(ctx)
	if err != nil {
		return stats, fmt.Errorf("opening feed: %w", err)
	}
	defer cursor.Close()

	var imageBuffer []string
	for {
		item, err := cursor.Next(ctx)
		if err != nil {
			return stats, fmt.Errorf("reading feed: %w", err)
		}
		if item == nil {
			break
		}
		if !item.PublishedAt.After(highWater) {
			break
		}

		// Фото без подписи только буферизуются, пауза нужна лишь
		// после обработки содержательного поста.
		if !item.HasCaption() {
			if item.MediaRef != "" {
				imageBuffer = append(imageBuffer, item.MediaRef)
			}
			continue
		}

		stats.Seen++
		rec, err := uc.extractor.Extract(ctx, item.Caption, item.PublishedAt)
		if err != nil {
			if ctx.Err() != nil {
				return stats, ctx.Err()
			}
			logger.Warn("Failed to extract listing from post", port.Fields{
				"published_at": item.PublishedAt.Format(time.RFC3339),
				"error":        err.Error(),
			})
			stats.Failed++
			imageBuffer = nil
			continue
		}

		if item.MediaRef != "" {
			imageBuffer = append(imageBuffer, item.MediaRef)
		}
		rec.Images = imageBuffer
		imageBuffer = nil
		if len(item.Links) > 0 {
			rec.GoogleMapsURL = &item.Links[0]
		}

		outcome, err := uc.reconciler.Execute(ctx, *rec)
		if err != nil {
			logger.Error("Failed to reconcile listing", err, nil)
			stats.Failed++
			continue
		}
		switch outcome {
		case domain.OutcomeInserted:
			stats.Inserted++
		case domain.OutcomeUpdated:
			stats.Updated++
		case domain.OutcomeSkipped:
			stats.Skipped++
		}

		if err := uc.wait(ctx); err != nil {
			return stats, err
		}
	}

	logger.Info("Feed pass finished", port.Fields{
		"seen":     stats.Seen,
		"inserted": stats.Inserted,
		"updated":  stats.Updated,
		"skipped":  stats.Skipped,
		"failed":   stats.Failed,
	})
	return stats, nil
}

// highWaterMark — дата самой свежей сохраненной публикации.
// Пустое хранилище дает отметку на глубину lookback от текущего момента.
func (uc *IngestFeedUseCase) highWaterMark(ctx context.Context) (time.Time, error) {
	maxPub, err := uc.storage.MaxPublicationTime(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("querying latest publication time: %w", err)
	}
	if maxPub == nil {
		return time.Now().Add(-uc.lookback), nil
	}
	return *maxPub, nil
}

func (uc *IngestFeedUseCase) wait(ctx context.Context) error {
	if uc.pace <= 0 {
		return nil
	}
	timer := time.NewTimer(uc.pace)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
