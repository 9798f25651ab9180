package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shenikar/civic_response_system/internal/notify"
)

const (
	queueKey     = "notification_events"
	dedupePrefix = "notify:dedupe:"
)

// Event - уведомление в очереди доставки вебхуков
type Event struct {
	notify.Notification
	Timestamp time.Time `json:"timestamp"`
}

// Publisher ставит уведомления в очередь Redis; реализует notify.Surface.
// Повторное уведомление с тем же DedupeKey в пределах TTL отбрасывается.
type Publisher struct {
	redisClient *redis.Client
	dedupeTTL   time.Duration
}

// NewPublisher создает новый Publisher
func NewPublisher(client *redis.Client, dedupeTTL time.Duration) *Publisher {
	return &Publisher{
		redisClient: client,
		dedupeTTL:   dedupeTTL,
	}
}

// Notify публикует событие вебхука в очередь Redis
func (p *Publisher) Notify(ctx context.Context, n notify.Notification) error {
	if n.DedupeKey != "" && p.dedupeTTL > 0 {
		fresh, err := p.redisClient.SetNX(ctx, dedupePrefix+n.DedupeKey, 1, p.dedupeTTL).Result()
		if err != nil {
			return fmt.Errorf("failed to check notification dedupe key: %w", err)
		}
		if !fresh {
			return nil
		}
	}

	payload, err := json.Marshal(Event{Notification: n, Timestamp: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// LPUSH добавляет событие в левую часть списка, воркер забирает справа
	if err := p.redisClient.LPush(ctx, queueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}
