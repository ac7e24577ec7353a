package port

import "context"

// ChatMessage — одно сообщение диалога с генеративной моделью.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SamplingOptions — параметры сэмплирования для запроса к модели.
type SamplingOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
}

// ChatModelPort — контракт внешнего генеративного текстового сервиса.
// Ответ собирается из потоковых фрагментов в один текстовый блок.
type ChatModelPort interface {
	Chat(ctx context.Context, messages []ChatMessage, opts SamplingOptions) (string, error)
}
