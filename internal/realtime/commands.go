// Package realtime carries the operator console's live channel: inbound
// commands dispatched through a typed mux, and outbound state events fanned
// out to every connected console.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// CommandType names one console command.
type CommandType string

// Console commands.
const (
	CmdGetStatistics    CommandType = "get_statistics"
	CmdGetEntries       CommandType = "get_entries"
	CmdGetUnpaidEntries CommandType = "get_unpaid_entries"
	CmdGetLatestUnpaid  CommandType = "get_latest_unpaid"
	CmdGetDetailed      CommandType = "get_detailed_statistics"
	CmdMarkPaid         CommandType = "mark_paid"
	CmdClearExit        CommandType = "clear_exit"
	CmdDeleteEntry      CommandType = "delete_entry"
	CmdFlagError        CommandType = "flag_error"
	CmdGetReceipt       CommandType = "get_receipt"
)

// Command is the inbound envelope. Fields beyond Command are filled per type.
type Command struct {
	Command   CommandType `json:"command"`
	Date      string      `json:"date,omitempty"`
	Search    string      `json:"search,omitempty"`
	SessionID int64       `json:"session_id,omitempty"`
	Message   string      `json:"message,omitempty"`
}

// Reply is the direct response envelope for the issuing client.
type Reply struct {
	Command CommandType `json:"command"`
	OK      bool        `json:"ok"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HandlerFunc executes one command and returns its reply payload.
type HandlerFunc func(ctx context.Context, cmd Command) (interface{}, error)

// ErrUnknownCommand is returned in the reply envelope for unregistered types.
var ErrUnknownCommand = errors.New("unknown command")

// Mux routes commands to registered handlers by type.
type Mux struct {
	handlers map[CommandType]HandlerFunc
	logger   *zap.Logger
}

// NewMux builds an empty command mux.
func NewMux(logger *zap.Logger) *Mux {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mux{
		handlers: make(map[CommandType]HandlerFunc),
		logger:   logger,
	}
}

// Register binds a handler to a command type. Last registration wins.
func (m *Mux) Register(cmd CommandType, handler HandlerFunc) {
	m.handlers[cmd] = handler
}

// Process parses one raw frame, dispatches it, and returns the encoded reply.
// Malformed frames and handler failures produce error replies, never a
// dropped connection.
func (m *Mux) Process(ctx context.Context, clientID string, raw []byte) ([]byte, error) {
	var cmd Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		m.logger.Warn("malformed console frame",
			zap.String("client_id", clientID),
			zap.Error(err))
		return marshalReply(Reply{Command: cmd.Command, Error: "malformed command"})
	}

	handler, ok := m.handlers[cmd.Command]
	if !ok {
		return marshalReply(Reply{
			Command: cmd.Command,
			Error:   fmt.Sprintf("%v: %q", ErrUnknownCommand, cmd.Command),
		})
	}

	data, err := handler(ctx, cmd)
	if err != nil {
		m.logger.Warn("console command failed",
			zap.String("client_id", clientID),
			zap.String("command", string(cmd.Command)),
			zap.Error(err))
		return marshalReply(Reply{Command: cmd.Command, Error: err.Error()})
	}
	return marshalReply(Reply{Command: cmd.Command, OK: true, Data: data})
}

func marshalReply(reply Reply) ([]byte, error) {
	return json.Marshal(reply)
}
