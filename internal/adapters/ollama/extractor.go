package ollama

import (
	"context"
	"fmt"
	"time"

	"github.com/MoguchiyDuh/televito/internal/constants"
	"github.com/MoguchiyDuh/televito/internal/contextkeys"
	"github.com/MoguchiyDuh/televito/internal/core/domain"
	"github.com/MoguchiyDuh/televito/internal/core/port"
)

// Состояния цикла переспрашивания модели. Каждая неудачная попытка,
// транспортная или по схеме, тратит общий бюджет попыток.
type retryState int

const (
	statePending retryState = iota
	stateValidating
	stateRetrying
	stateSuccess
	stateExhausted
)

// FallbackExtractor извлекает объявление генеративной моделью, когда
// построчная грамматика не справилась. Ответы модели недетерминированы,
// поэтому каждый прогоняется через схему, а при провале модель получает
// текст ошибки и шанс исправиться.
type FallbackExtractor struct {
	model port.ChatModelPort
	audit port.AuditSinkPort
	opts  port.SamplingOptions
}

func NewFallbackExtractor(model port.ChatModelPort, audit port.AuditSinkPort, opts port.SamplingOptions) (*FallbackExtractor, error) {
	if model == nil {
		return nil, fmt.Errorf("chat model cannot be nil")
	}
	if audit == nil {
		return nil, fmt.Errorf("audit sink cannot be nil")
	}
	return &FallbackExtractor{model: model, audit: audit, opts: opts}, nil
}

// Extract ведет диалог с моделью до первого ответа, прошедшего схему,
// либо до исчерпания бюджета попыток.
func (f *FallbackExtractor) Extract(ctx context.Context, text string, postTime time.Time) (*domain.ListingRecord, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "fallback_extractor"})

	history := buildConversation(text, postTime)
	attempts := 0
	state := statePending

	var lastReply string
	var lastErr error

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch state {
		case statePending:
			reply, err := f.model.Chat(ctx, history, f.opts)
			if err != nil {
				lastErr = err
				logger.Warn("Model request failed", port.Fields{"attempt": attempts + 1, "error": err.Error()})
				f.store(constants.AuditTitleModelError, err.Error())
				attempts++
				if attempts >= constants.MaxModelAttempts {
					state = stateExhausted
				}
				continue
			}
			lastReply = reply
			f.store(constants.AuditTitleModelResponse, reply)
			state = stateValidating

		case stateValidating:
			rec, err := parseReply(lastReply, postTime)
			if err == nil {
				logger.Debug("Model response accepted", port.Fields{"attempts": attempts + 1})
				return rec, nil
			}
			lastErr = err
			attempts++
			f.store(fmt.Sprintf("%s - Attempt %d", constants.AuditTitleParseError, attempts), err.Error())
			if attempts >= constants.MaxModelAttempts {
				state = stateExhausted
			} else {
				state = stateRetrying
			}

		case stateRetrying:
			history = append(history, port.ChatMessage{
				Role:    "user",
				Content: fmt.Sprintf("Cannot parse your response due to the error: %s. try to generate your response again", lastErr),
			})
			state = statePending

		case stateExhausted:
			f.store(constants.AuditTitleFinalFailure,
				fmt.Sprintf("post of %s: %s\n\n%s", postTime.Format(time.RFC3339), lastErr, text))
			logger.Error("Model failed to produce a valid listing", lastErr, port.Fields{"attempts": attempts})
			return nil, fmt.Errorf("%w after %d attempts: %v", domain.ErrModelExhausted, attempts, lastErr)
		}
	}
}

// store пишет в журнал аудита, не прерывая извлечение при ошибке записи.
func (f *FallbackExtractor) store(title, text string) {
	_ = f.audit.Store(title, text)
}
