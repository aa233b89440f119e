package api

import (
	"errors"

	"fave/go-backend/internal/app"
)

type NotificationEvent = app.NotificationEvent

var errStreamBackpressure = errors.New("stream buffer full")

// streamConn is the channel-backed connection the SSE transport consumes.
// Send never blocks: a full buffer drops the event and reports the failure so
// the fanout can log it.
type streamConn struct {
	ch chan app.NotificationEvent
}

func newStreamConn() *streamConn {
	return &streamConn{ch: make(chan app.NotificationEvent, 128)}
}

func (c *streamConn) Send(event app.NotificationEvent) error {
	select {
	case c.ch <- event:
		return nil
	default:
		return errStreamBackpressure
	}
}
