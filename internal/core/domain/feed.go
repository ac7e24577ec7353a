package domain

import "time"

// FeedItem — один элемент ленты сообщений (от новых к старым).
type FeedItem struct {
	PublishedAt time.Time
	Caption     string   // пустая строка для сообщений без подписи
	MediaRef    string   // идентификатор прикрепленного фото, пустой если его нет
	Links       []string // ссылки, прикрепленные к подписи, в исходном порядке
}

// HasCaption сообщает, несет ли элемент подпись с текстом объявления.
func (i FeedItem) HasCaption() bool {
	return i.Caption != ""
}
