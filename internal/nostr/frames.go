package nostr

import (
	"encoding/json"
	"fmt"
)

// Frame types appearing on the wire. REQ, EVENT and CLOSE flow client to
// server; EVENT, EOSE, OK and NOTICE flow server to client.
const (
	FrameEvent  = "EVENT"
	FrameEOSE   = "EOSE"
	FrameOK     = "OK"
	FrameNotice = "NOTICE"
)

// Frame is a decoded server-to-client message.
type Frame struct {
	Type string

	// SubID is set for EVENT and EOSE frames.
	SubID string
	// Event is set for EVENT frames.
	Event *Event

	// EventID, OK and Message are set for OK frames; Message is also set
	// for NOTICE frames.
	EventID string
	OK      bool
	Message string
}

// EncodeReq builds a ["REQ", subID, filter] frame.
func EncodeReq(subID string, f Filter) ([]byte, error) {
	return json.Marshal([]interface{}{"REQ", subID, f})
}

// EncodeEvent builds an ["EVENT", event] frame.
func EncodeEvent(ev *Event) ([]byte, error) {
	return json.Marshal([]interface{}{"EVENT", ev})
}

// EncodeClose builds a ["CLOSE", subID] frame.
func EncodeClose(subID string) ([]byte, error) {
	return json.Marshal([]interface{}{"CLOSE", subID})
}

// DecodeFrame parses a server-to-client frame. Unknown or structurally
// short frames return an error; callers skip them and keep reading.
func DecodeFrame(data []byte) (*Frame, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return nil, fmt.Errorf("nostr: frame is not a JSON array: %w", err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("nostr: empty frame")
	}
	var typ string
	if err := json.Unmarshal(parts[0], &typ); err != nil {
		return nil, fmt.Errorf("nostr: frame type: %w", err)
	}

	f := &Frame{Type: typ}
	switch typ {
	case FrameEvent:
		if len(parts) < 3 {
			return nil, fmt.Errorf("nostr: EVENT frame needs 3 elements, got %d", len(parts))
		}
		if err := json.Unmarshal(parts[1], &f.SubID); err != nil {
			return nil, fmt.Errorf("nostr: EVENT subscription id: %w", err)
		}
		f.Event = &Event{}
		if err := json.Unmarshal(parts[2], f.Event); err != nil {
			return nil, fmt.Errorf("nostr: EVENT payload: %w", err)
		}
	case FrameEOSE:
		if len(parts) < 2 {
			return nil, fmt.Errorf("nostr: EOSE frame needs 2 elements, got %d", len(parts))
		}
		if err := json.Unmarshal(parts[1], &f.SubID); err != nil {
			return nil, fmt.Errorf("nostr: EOSE subscription id: %w", err)
		}
	case FrameOK:
		if len(parts) < 3 {
			return nil, fmt.Errorf("nostr: OK frame needs at least 3 elements, got %d", len(parts))
		}
		if err := json.Unmarshal(parts[1], &f.EventID); err != nil {
			return nil, fmt.Errorf("nostr: OK event id: %w", err)
		}
		if err := json.Unmarshal(parts[2], &f.OK); err != nil {
			return nil, fmt.Errorf("nostr: OK flag: %w", err)
		}
		if len(parts) > 3 {
			if err := json.Unmarshal(parts[3], &f.Message); err != nil {
				return nil, fmt.Errorf("nostr: OK message: %w", err)
			}
		}
	case FrameNotice:
		if len(parts) > 1 {
			if err := json.Unmarshal(parts[1], &f.Message); err != nil {
				return nil, fmt.Errorf("nostr: NOTICE message: %w", err)
			}
		}
	default:
		return nil, fmt.Errorf("nostr: unknown frame type %q", typ)
	}
	return f, nil
}
