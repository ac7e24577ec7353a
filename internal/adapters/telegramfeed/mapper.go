package telegramfeed

import (
	"strconv"
	"time"

	"github.com/gotd/td/tg"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
)

// mapMessage переводит сообщение канала в элемент ленты.
// Фото без подписи дает элемент только с MediaRef, его привяжет
// к объявлению вызывающий код.
func mapMessage(msg *tg.Message) domain.FeedItem {
	item := domain.FeedItem{
		PublishedAt: time.Unix(int64(msg.Date), 0).UTC(),
		Caption:     msg.Message,
	}

	if media, ok := msg.GetMedia(); ok {
		if photoMedia, ok := media.(*tg.MessageMediaPhoto); ok {
			if photoClass, ok := photoMedia.GetPhoto(); ok {
				if photo, ok := photoClass.AsNotEmpty(); ok {
					item.MediaRef = strconv.FormatInt(photo.ID, 10)
				}
			}
		}
	}

	for _, entity := range msg.Entities {
		if textURL, ok := entity.(*tg.MessageEntityTextURL); ok {
			item.Links = append(item.Links, textURL.URL)
		}
	}
	return item
}
