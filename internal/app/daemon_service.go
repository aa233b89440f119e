package app

import (
	"context"
)

type DaemonService interface {
	CoreAPI
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	SubscribeFan(fanID string) (<-chan NotificationEvent, func(), error)
	SubscriberCount() int
}
