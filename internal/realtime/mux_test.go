package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeReply(t *testing.T, raw []byte) Reply {
	t.Helper()
	var reply Reply
	if err := json.Unmarshal(raw, &reply); err != nil {
		t.Fatalf("reply is not valid JSON: %v", err)
	}
	return reply
}

func TestMuxDispatchesByType(t *testing.T) {
	mux := NewMux(nil)
	mux.Register(CmdGetStatistics, func(_ context.Context, cmd Command) (interface{}, error) {
		return map[string]string{"date": cmd.Date}, nil
	})

	raw, err := mux.Process(context.Background(), "c1", []byte(`{"command":"get_statistics","date":"2026-03-10"}`))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	reply := decodeReply(t, raw)
	if !reply.OK || reply.Command != CmdGetStatistics {
		t.Fatalf("reply = %+v", reply)
	}
	data, ok := reply.Data.(map[string]interface{})
	if !ok || data["date"] != "2026-03-10" {
		t.Fatalf("data = %+v", reply.Data)
	}
}

func TestMuxUnknownCommand(t *testing.T) {
	mux := NewMux(nil)

	raw, err := mux.Process(context.Background(), "c1", []byte(`{"command":"launch_rocket"}`))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	reply := decodeReply(t, raw)
	if reply.OK || !strings.Contains(reply.Error, "unknown command") {
		t.Fatalf("reply = %+v", reply)
	}
}

func TestMuxMalformedFrame(t *testing.T) {
	mux := NewMux(nil)

	raw, err := mux.Process(context.Background(), "c1", []byte(`{not json`))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	reply := decodeReply(t, raw)
	if reply.OK || reply.Error != "malformed command" {
		t.Fatalf("reply = %+v", reply)
	}
}

func TestMuxHandlerErrorBecomesReply(t *testing.T) {
	mux := NewMux(nil)
	mux.Register(CmdMarkPaid, func(_ context.Context, _ Command) (interface{}, error) {
		return nil, errors.New("session not found")
	})

	raw, err := mux.Process(context.Background(), "c1", []byte(`{"command":"mark_paid","session_id":42}`))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	reply := decodeReply(t, raw)
	if reply.OK || reply.Error != "session not found" {
		t.Fatalf("reply = %+v", reply)
	}
}

func TestMuxLastRegistrationWins(t *testing.T) {
	mux := NewMux(nil)
	mux.Register(CmdGetEntries, func(_ context.Context, _ Command) (interface{}, error) {
		return "first", nil
	})
	mux.Register(CmdGetEntries, func(_ context.Context, _ Command) (interface{}, error) {
		return "second", nil
	})

	raw, err := mux.Process(context.Background(), "c1", []byte(`{"command":"get_entries"}`))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	reply := decodeReply(t, raw)
	if reply.Data != "second" {
		t.Fatalf("data = %v, want second", reply.Data)
	}
}
