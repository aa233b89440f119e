package app

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"fave/go-backend/internal/platform/observability"
	"fave/go-backend/internal/platform/privacylog"
)

// Broadcaster fans one event out to every subscriber in the registry.
// Delivery is best-effort: each connection is attempted independently and a
// failing send never blocks or aborts delivery to the others.
type Broadcaster struct {
	registry *ConnectionRegistry
	logger   *slog.Logger
	nextSeq  atomic.Int64
}

func NewBroadcaster(registry *ConnectionRegistry, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = DefaultLogger()
	}
	return &Broadcaster{registry: registry, logger: logger}
}

// Broadcast assigns the event sequence number, snapshots the current
// subscriber set, and delivers to each entry. It returns the number of
// successful deliveries.
func (b *Broadcaster) Broadcast(method string, payload any) (NotificationEvent, int) {
	event := NotificationEvent{
		Seq:       b.nextSeq.Add(1),
		Method:    method,
		Payload:   payload,
		Timestamp: nowUTC(),
	}

	subscribers := b.registry.Snapshot()
	delivered := 0
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, sub := range subscribers {
		wg.Add(1)
		go func(sub Subscriber) {
			defer wg.Done()
			err := sub.Conn.Send(event)
			observability.RecordNotificationDelivery(err == nil)
			if err != nil {
				b.logger.Warn("notification delivery failed",
					privacylog.SanitizeArgs("fan_id", sub.FanID, "method", method, "error", err.Error())...)
				return
			}
			mu.Lock()
			delivered++
			mu.Unlock()
		}(sub)
	}
	wg.Wait()

	return event, delivered
}
