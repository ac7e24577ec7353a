package telegramfeed

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"

	"github.com/MoguchiyDuh/televito/internal/core/domain"
	"github.com/MoguchiyDuh/televito/internal/core/port"
)

// Config параметры подключения к Telegram MTProto API.
type Config struct {
	APIID       int
	APIHash     string
	Channel     string // username канала с объявлениями, без "@"
	SessionFile string
	BatchSize   int
}

// Adapter реализует FeedPort поверх MTProto-клиента. Клиент живет ровно
// один проход: Open поднимает соединение, Close курсора его гасит.
type Adapter struct {
	cfg    Config
	logger port.LoggerPort
}

func NewAdapter(cfg Config, logger port.LoggerPort) (*Adapter, error) {
	if cfg.APIID == 0 || cfg.APIHash == "" {
		return nil, fmt.Errorf("telegram api credentials are required")
	}
	if cfg.Channel == "" {
		return nil, fmt.Errorf("channel username cannot be empty")
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	cfg.Channel = strings.TrimPrefix(cfg.Channel, "@")
	return &Adapter{cfg: cfg, logger: logger}, nil
}

// Open подключается, проверяет авторизацию сессии и возвращает курсор
// по истории канала. Сессия должна быть авторизована заранее.
func (a *Adapter) Open(ctx context.Context) (port.FeedCursor, error) {
	runCtx, cancel := context.WithCancel(ctx)

	client := telegram.NewClient(a.cfg.APIID, a.cfg.APIHash, telegram.Options{
		SessionStorage: &telegram.FileSessionStorage{Path: a.cfg.SessionFile},
	})

	ready := make(chan struct{})
	stop := make(chan struct{})
	runErr := make(chan error, 1)

	go func() {
		runErr <- client.Run(runCtx, func(ctx context.Context) error {
			status, err := client.Auth().Status(ctx)
			if err != nil {
				return fmt.Errorf("checking auth status: %w", err)
			}
			if !status.Authorized {
				return fmt.Errorf("telegram session is not authorized, log in first")
			}
			close(ready)
			// Держим соединение, пока жив курсор.
			<-stop
			return nil
		})
	}()

	select {
	case <-runCtx.Done():
		cancel()
		return nil, runCtx.Err()
	case err := <-runErr:
		cancel()
		if err == nil {
			err = fmt.Errorf("client stopped before becoming ready")
		}
		return nil, fmt.Errorf("starting telegram client: %w", err)
	case <-ready:
	}

	api := client.API()
	peer, err := resolveChannel(runCtx, api, a.cfg.Channel)
	if err != nil {
		close(stop)
		cancel()
		return nil, err
	}

	a.logger.Debug("Telegram feed opened", port.Fields{"channel": a.cfg.Channel})

	return &historyCursor{
		api:    api,
		peer:   peer,
		batch:  a.cfg.BatchSize,
		stop:   stop,
		cancel: cancel,
	}, nil
}

// resolveChannel превращает username канала в пир с access hash.
func resolveChannel(ctx context.Context, api *tg.Client, username string) (*tg.InputPeerChannel, error) {
	resolved, err := api.ContactsResolveUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resolving channel %q: %w", username, err)
	}

	for _, chat := range resolved.Chats {
		if channel, ok := chat.(*tg.Channel); ok {
			return &tg.InputPeerChannel{
				ChannelID:  channel.ID,
				AccessHash: channel.AccessHash,
			}, nil
		}
	}
	return nil, fmt.Errorf("username %q does not resolve to a channel", username)
}

// historyCursor листает историю канала от новых сообщений к старым.
type historyCursor struct {
	api   *tg.Client
	peer  *tg.InputPeerChannel
	batch int

	offsetID  int
	buffer    []domain.FeedItem
	pos       int
	exhausted bool

	stop      chan struct{}
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func (c *historyCursor) Next(ctx context.Context) (*domain.FeedItem, error) {
	for c.pos >= len(c.buffer) {
		if c.exhausted {
			return nil, nil
		}
		if err := c.fetchBatch(ctx); err != nil {
			return nil, err
		}
	}
	item := c.buffer[c.pos]
	c.pos++
	return &item, nil
}

func (c *historyCursor) fetchBatch(ctx context.Context) error {
	history, err := c.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:     c.peer,
		OffsetID: c.offsetID,
		Limit:    c.batch,
	})
	if err != nil {
		return fmt.Errorf("fetching channel history: %w", err)
	}

	channelMessages, ok := history.(*tg.MessagesChannelMessages)
	if !ok {
		return fmt.Errorf("unexpected history response type %T", history)
	}
	if len(channelMessages.Messages) == 0 {
		c.exhausted = true
		return nil
	}

	c.buffer = c.buffer[:0]
	c.pos = 0
	for _, raw := range channelMessages.Messages {
		// Сообщения приходят от новых к старым, последний ID — оффсет
		// следующей страницы.
		c.offsetID = raw.GetID()

		msg, ok := raw.(*tg.Message)
		if !ok {
			continue // служебные сообщения
		}
		c.buffer = append(c.buffer, mapMessage(msg))
	}
	return nil
}

func (c *historyCursor) Close() error {
	c.closeOnce.Do(func() {
		close(c.stop)
		c.cancel()
	})
	return nil
}
