package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/reflecta/reflecta-backend/internal/platform/ctxutil"
	"github.com/reflecta/reflecta-backend/internal/platform/logger"
)

// AlertNotice is the in-app notification payload published for counselor
// dashboards. Consumers (websocket/SSE frontends) subscribe to the channel
// and route by counselor id.
type AlertNotice struct {
	AlertID     string    `json:"alert_id"`
	CounselorID string    `json:"counselor_id"`
	RiskLevel   string    `json:"risk_level"`
	Status      string    `json:"status"`
	SentAt      time.Time `json:"sent_at"`
}

type AlertBus interface {
	Publish(ctx context.Context, notice AlertNotice) error
	Subscribe(ctx context.Context, onNotice func(n AlertNotice)) error
	Close() error
}

type alertBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

func NewAlertBus(log *logger.Logger) (AlertBus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	ch := strings.TrimSpace(os.Getenv("REDIS_ALERT_CHANNEL"))
	if ch == "" {
		ch = "risk_alerts"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &alertBus{
		log:     log.With("client", "RedisAlertBus"),
		rdb:     rdb,
		channel: ch,
	}, nil
}

func (b *alertBus) Publish(ctx context.Context, notice AlertNotice) error {
	ctx = ctxutil.Default(ctx)
	raw, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("marshal alert notice: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish alert notice: %w", err)
	}
	return nil
}

func (b *alertBus) Subscribe(ctx context.Context, onNotice func(n AlertNotice)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis subscribe: %w", err)
	}

	go func() {
		defer func() { _ = sub.Close() }()
		chMsgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-chMsgs:
				if !ok {
					return
				}
				var n AlertNotice
				if err := json.Unmarshal([]byte(m.Payload), &n); err != nil {
					b.log.Warn("Dropping malformed alert notice", "error", err)
					continue
				}
				onNotice(n)
			}
		}
	}()
	return nil
}

func (b *alertBus) Close() error {
	return b.rdb.Close()
}
