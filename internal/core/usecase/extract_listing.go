package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/MoguchiyDuh/televito/internal/contextkeys"
	"github.com/MoguchiyDuh/televito/internal/core/domain"
	"github.com/MoguchiyDuh/televito/internal/core/port"
)

// ExtractListingUseCase — фасад извлечения: сначала дешевая детерминированная
// грамматика, при несовпадении формата текст уходит генеративной модели.
// Сам реализует port.ListingExtractorPort, так что для вызывающего кода
// каскад неотличим от одиночного извлекателя.
type ExtractListingUseCase struct {
	grammar  port.ListingExtractorPort
	fallback port.ListingExtractorPort
}

func NewExtractListingUseCase(grammar, fallback port.ListingExtractorPort) *ExtractListingUseCase {
	return &ExtractListingUseCase{
		grammar:  grammar,
		fallback: fallback,
	}
}

// Extract пробует грамматику и переключается на модель только при
// domain.ErrGrammarMismatch. Любая другая ошибка возвращается как есть.
func (uc *ExtractListingUseCase) Extract(ctx context.Context, text string, postTime time.Time) (*domain.ListingRecord, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"use_case": "ExtractListing"})

	rec, err := uc.grammar.Extract(ctx, text, postTime)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, domain.ErrGrammarMismatch) {
		return nil, err
	}

	logger.Debug("Line grammar did not match, falling back to model", port.Fields{"reason": err.Error()})
	return uc.fallback.Extract(ctx, text, postTime)
}
