package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/shenikar/civic_response_system/internal/store"
)

const changeChannelPrefix = "changes:"

// errFeedClosed - канал Pub/Sub закрылся без запроса подписчика
var errFeedClosed = errors.New("change feed channel closed")

// ChangeFeed публикует события изменений в Redis Pub/Sub и раздает их подписчикам
type ChangeFeed struct {
	client *redis.Client
	logger *logrus.Logger
}

// NewChangeFeed создает ChangeFeed поверх клиента Redis
func NewChangeFeed(client *redis.Client, logger *logrus.Logger) *ChangeFeed {
	return &ChangeFeed{client: client, logger: logger}
}

func changeChannel(table store.Table) string {
	return changeChannelPrefix + string(table)
}

// Publish отправляет событие в канал таблицы
func (f *ChangeFeed) Publish(ctx context.Context, ev store.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}
	if err := f.client.Publish(ctx, changeChannel(ev.Table), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change event to Redis: %w", err)
	}
	return nil
}

// Subscribe подписывается на канал таблицы и дожидается подтверждения подписки
func (f *ChangeFeed) Subscribe(ctx context.Context, table store.Table, filter store.Filter) (store.Subscription, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("changefeed: %w: %s", store.ErrUnknownTable, table)
	}
	pubsub := f.client.Subscribe(ctx, changeChannel(table))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to change feed %s: %w", table, err)
	}

	sub := &feedSubscription{
		pubsub: pubsub,
		events: make(chan store.ChangeEvent, 64),
		stop:   make(chan struct{}),
		log:    f.logger.WithField("table", table),
	}
	go sub.run(ctx, filter)
	return sub, nil
}

type feedSubscription struct {
	pubsub *redis.PubSub
	events chan store.ChangeEvent
	stop   chan struct{}
	once   sync.Once
	log    *logrus.Entry

	mu  sync.Mutex
	err error
}

func (s *feedSubscription) Events() <-chan store.ChangeEvent { return s.events }

func (s *feedSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *feedSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stop)
		err = s.pubsub.Close()
	})
	return err
}

func (s *feedSubscription) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *feedSubscription) run(ctx context.Context, filter store.Filter) {
	defer close(s.events)
	ch := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = s.Close()
			return
		case <-s.stop:
			return
		case msg, ok := <-ch:
			if !ok {
				select {
				case <-s.stop:
				default:
					s.setErr(errFeedClosed)
				}
				return
			}
			var ev store.ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				s.log.WithError(err).Warn("Failed to unmarshal change event from Redis")
				continue
			}
			if !ev.Matches(filter) {
				continue
			}
			select {
			case s.events <- ev:
			case <-s.stop:
				return
			case <-ctx.Done():
				_ = s.Close()
				return
			}
		}
	}
}
