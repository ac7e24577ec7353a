package port

import (
	"context"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

// FeedPort открывает один проход по ленте сообщений.
// Клиентский хендл живет ровно один проход: открывается перед обходом
// и закрывается после, в том числе при ошибке.
type FeedPort interface {
	Open(ctx context.Context) (FeedCursor, error)
}

// FeedCursor — курсор по ленте от новых сообщений к старым.
type FeedCursor interface {
	// Next возвращает следующий элемент ленты.
	// (nil, nil) означает конец ленты.
	Next(ctx context.Context) (*domain.FeedItem, error)

	Close() error
}
