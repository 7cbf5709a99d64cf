package wsserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"

	requestchat "github.com/janhq/support-chat-api/internal/interfaces/httpserver/requests/chat"
)

// Inbound event names.
const (
	EventJoinConversation  = "join_conversation"
	EventLeaveConversation = "leave_conversation"
	EventSendMessage       = "send_message"
	EventTyping            = "typing"
	EventStopTyping        = "stop_typing"
)

const maxNormalizeDepth = 3

var errMalformedPayload = errors.New("malformed payload")

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type outboundFrame struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// normalizePayload reduces an inbound payload to a JSON object. Clients in the wild send the
// object itself, the object wrapped in a one-element array, or the object JSON-encoded into a
// string. Those shapes are unwrapped in that order, repeatedly, up to maxNormalizeDepth levels.
// Anything else is rejected.
func normalizePayload(raw json.RawMessage) (json.RawMessage, error) {
	for depth := 0; depth < maxNormalizeDepth; depth++ {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			return nil, errMalformedPayload
		}

		switch trimmed[0] {
		case '{':
			return trimmed, nil
		case '[':
			var items []json.RawMessage
			if err := json.Unmarshal(trimmed, &items); err != nil || len(items) != 1 {
				return nil, errMalformedPayload
			}
			raw = items[0]
		case '"':
			var encoded string
			if err := json.Unmarshal(trimmed, &encoded); err != nil {
				return nil, errMalformedPayload
			}
			raw = json.RawMessage(encoded)
		default:
			return nil, errMalformedPayload
		}
	}
	return nil, errMalformedPayload
}

// decodeSendMessage turns a send_message payload into a trimmed request.
func decodeSendMessage(raw json.RawMessage) (*requestchat.SendMessageRequest, error) {
	obj, err := normalizePayload(raw)
	if err != nil {
		return nil, err
	}

	var req requestchat.SendMessageRequest
	if err := json.Unmarshal(obj, &req); err != nil {
		return nil, errMalformedPayload
	}
	req.Content = strings.TrimSpace(req.Content)
	req.ConversationID = strings.TrimSpace(req.ConversationID)
	return &req, nil
}

// decodeConversationID accepts a bare id string or any object shape normalizePayload accepts.
func decodeConversationID(raw json.RawMessage) (string, error) {
	if obj, err := normalizePayload(raw); err == nil {
		var target struct {
			ConversationID string `json:"conversationId"`
		}
		if err := json.Unmarshal(obj, &target); err != nil {
			return "", errMalformedPayload
		}
		return strings.TrimSpace(target.ConversationID), nil
	}

	trimmed := bytes.TrimSpace(raw)
	var id string
	if err := json.Unmarshal(trimmed, &id); err == nil {
		return strings.TrimSpace(id), nil
	}
	var ids []string
	if err := json.Unmarshal(trimmed, &ids); err == nil && len(ids) == 1 {
		return strings.TrimSpace(ids[0]), nil
	}
	return "", errMalformedPayload
}
