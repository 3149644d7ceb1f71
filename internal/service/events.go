package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const publishTimeout = 5 * time.Second

func publish(ctx context.Context, p mykafka.Publisher, topic, key string, ev mykafka.Event) {
	if p == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.PublishEvent(pctx, topic, key, ev); err != nil {
		logging.FromContext(ctx).Error("kafka_publish_error", "topic", topic, "type", ev.Type, "error", err)
	}
}
