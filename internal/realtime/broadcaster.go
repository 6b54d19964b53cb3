package realtime

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/service"
	"github.com/VALIJONY/InfinBankBozorSmartPark/internal/ws"
)

// Envelope types for outbound broadcasts.
const (
	frameStateChanged = "state_changed"
	frameNotification = "notification"
)

type frame struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Broadcaster fans service events out to every connected console.
type Broadcaster struct {
	hub    *ws.Hub
	logger *zap.Logger
}

// NewBroadcaster wraps a hub as the service's event publisher.
func NewBroadcaster(hub *ws.Hub, logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{hub: hub, logger: logger}
}

// PublishState broadcasts a state event to all consoles.
func (b *Broadcaster) PublishState(_ context.Context, event service.StateEvent) {
	b.broadcast(frame{Type: frameStateChanged, Payload: event})
}

// PublishNotification broadcasts an operator alert to all consoles.
func (b *Broadcaster) PublishNotification(_ context.Context, note service.Notification) {
	b.broadcast(frame{Type: frameNotification, Payload: note})
}

func (b *Broadcaster) broadcast(f frame) {
	data, err := json.Marshal(f)
	if err != nil {
		b.logger.Error("failed to encode broadcast frame", zap.Error(err))
		return
	}
	b.hub.Broadcast(data)
}
