package ws

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server upgrades HTTP connections to WebSockets for the operator console.
type Server struct {
	hub          *Hub
	processor    Processor
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
	nextClient   atomic.Uint64
}

// NewServer builds ws server.
func NewServer(hub *Hub, processor Processor, writeTimeout time.Duration, logger *zap.Logger) *Server {
	return &Server{
		hub:          hub,
		processor:    processor,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWS is HTTP handler for the /ws endpoint.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	clientID := fmt.Sprintf("console-%d", s.nextClient.Add(1))

	ctx, cancel := context.WithCancel(context.Background())
	connection := NewConnection(clientID, conn, s.processor, s.writeTimeout, s.logger, func(id string) {
		s.hub.Remove(id)
		cancel()
	})
	s.hub.Add(connection)

	go connection.Start(ctx)
	s.logger.Info("console connected", zap.String("client_id", clientID), zap.String("remote", r.RemoteAddr))
}
