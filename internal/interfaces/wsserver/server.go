// Package wsserver exposes the chat pipeline and room presence over a websocket at /ws.
// Frames are JSON objects of the form {"event": name, "data": payload} in both directions.
package wsserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/websocket"

	"github.com/janhq/support-chat-api/internal/domain/chat"
	"github.com/janhq/support-chat-api/internal/domain/conversation"
	"github.com/janhq/support-chat-api/internal/domain/room"
	"github.com/janhq/support-chat-api/internal/infrastructure/metrics"
	requestchat "github.com/janhq/support-chat-api/internal/interfaces/httpserver/requests/chat"
	"github.com/janhq/support-chat-api/internal/utils/idgen"
	"github.com/janhq/support-chat-api/internal/utils/platformerrors"
)

const (
	maxDecodeErrorsPerConn = 3
	peerIDLength           = 20

	msgInvalidFrame       = "invalid frame payload"
	msgFrameTooLarge      = "payload too large"
	msgUnsupportedEvent   = "unsupported event"
	msgInvalidRoom        = "Invalid or missing conversation ID"
	msgInvalidMessage     = "Invalid message payload"
	msgMissingRoom        = "Missing conversationId"
	msgServerError        = "Server error processing message"
	msgServerShuttingDown = "server shutting down"
)

// Submitter runs one message through the ingestion pipeline.
type Submitter interface {
	Submit(ctx context.Context, in chat.SubmitInput) (*chat.SubmitResult, error)
}

// Options tunes connection handling.
type Options struct {
	SendBuffer     int
	WriteTimeout   time.Duration
	MaxFrameBytes  int
	AllowedOrigins []string
	ExposeDetails  bool
}

// Server accepts websocket connections and routes their events.
type Server struct {
	submitter Submitter
	registry  *room.Registry
	validator *requestchat.Validator
	opts      Options
	log       zerolog.Logger
	ws        websocket.Server

	allowAnyOrigin bool
	origins        map[string]struct{}

	mu     sync.Mutex
	peers  map[*peer]struct{}
	closed bool
}

// New creates a websocket server.
func New(submitter Submitter, registry *room.Registry, validator *requestchat.Validator, opts Options, log zerolog.Logger) *Server {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 64
	}

	s := &Server{
		submitter:      submitter,
		registry:       registry,
		validator:      validator,
		opts:           opts,
		log:            log.With().Str("component", "wsserver").Logger(),
		allowAnyOrigin: len(opts.AllowedOrigins) == 0,
		origins:        make(map[string]struct{}, len(opts.AllowedOrigins)),
		peers:          make(map[*peer]struct{}),
	}
	for _, origin := range opts.AllowedOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "*" {
			s.allowAnyOrigin = true
		}
		s.origins[origin] = struct{}{}
	}
	s.ws = websocket.Server{Handshake: s.handshake, Handler: s.handleConn}
	return s
}

// ServeHTTP upgrades the request to a websocket.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.ws.ServeHTTP(w, r)
}

// CloseAll disconnects every client and refuses new ones.
func (s *Server) CloseAll() {
	s.mu.Lock()
	s.closed = true
	peers := make([]*peer, 0, len(s.peers))
	for p := range s.peers {
		peers = append(peers, p)
	}
	s.mu.Unlock()

	for _, p := range peers {
		p.close()
	}
	s.log.Info().Int("connections", len(peers)).Msg("closed websocket connections")
}

// Connections returns the number of live clients.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.peers)
}

// handshake rejects browser origins outside the configured list. Non-browser clients send no Origin.
func (s *Server) handshake(_ *websocket.Config, r *http.Request) error {
	origin := r.Header.Get("Origin")
	if origin == "" || s.allowAnyOrigin {
		return nil
	}
	if _, ok := s.origins[strings.TrimRight(origin, "/")]; ok {
		return nil
	}
	return fmt.Errorf("origin %q not allowed", origin)
}

func (s *Server) handleConn(conn *websocket.Conn) {
	if s.opts.MaxFrameBytes > 0 {
		conn.MaxPayloadBytes = s.opts.MaxFrameBytes
	}

	p, err := s.register(conn)
	if err != nil {
		_ = websocket.JSON.Send(conn, outboundFrame{Event: room.EventError, Data: room.ErrorPayload{Message: msgServerShuttingDown}})
		_ = conn.Close()
		return
	}
	defer s.unregister(p)
	go p.writeLoop()

	ctx := conn.Request().Context()
	decodeErrors := 0

	for {
		var frame inboundFrame
		err := websocket.JSON.Receive(conn, &frame)
		switch {
		case err == nil:
			decodeErrors = 0
		case errors.Is(err, websocket.ErrFrameTooLarge), isDecodeError(err):
			decodeErrors++
			message := msgInvalidFrame
			if errors.Is(err, websocket.ErrFrameTooLarge) {
				message = msgFrameTooLarge
			}
			s.sendError(p, room.ErrorPayload{Message: message})
			if decodeErrors >= maxDecodeErrorsPerConn {
				p.log.Warn().Msg("too many invalid frames, closing connection")
				return
			}
			continue
		default:
			if !errors.Is(err, io.EOF) {
				p.log.Debug().Err(err).Msg("read failed")
			}
			return
		}

		s.dispatch(ctx, p, frame)
	}
}

func (s *Server) dispatch(ctx context.Context, p *peer, frame inboundFrame) {
	switch frame.Event {
	case EventJoinConversation:
		s.handleJoin(ctx, p, frame.Data)
	case EventLeaveConversation:
		s.handleLeave(ctx, p, frame.Data)
	case EventSendMessage:
		s.handleSendMessage(ctx, p, frame.Data)
	case EventTyping:
		s.relayTyping(p, true)
	case EventStopTyping:
		s.relayTyping(p, false)
	default:
		s.sendError(p, room.ErrorPayload{Message: msgUnsupportedEvent})
	}
}

func (s *Server) handleJoin(ctx context.Context, p *peer, data json.RawMessage) {
	roomID, err := decodeConversationID(data)
	if err != nil || roomID == "" {
		s.sendError(p, room.ErrorPayload{Message: msgInvalidRoom, Field: conversation.FieldConversationID})
		return
	}

	if _, err := s.registry.Join(ctx, roomID, p); err != nil {
		s.sendFailure(p, err)
		return
	}
	_ = p.Send(room.EventJoined, room.MembershipPayload{ConversationID: conversation.NormalizeID(roomID)})
}

func (s *Server) handleLeave(ctx context.Context, p *peer, data json.RawMessage) {
	roomID, err := decodeConversationID(data)
	if err != nil || roomID == "" {
		s.sendError(p, room.ErrorPayload{Message: msgInvalidRoom, Field: conversation.FieldConversationID})
		return
	}

	if _, err := s.registry.Leave(ctx, roomID, p); err != nil {
		s.sendFailure(p, err)
		return
	}
	_ = p.Send(room.EventLeft, room.MembershipPayload{ConversationID: conversation.NormalizeID(roomID)})
}

func (s *Server) handleSendMessage(ctx context.Context, p *peer, data json.RawMessage) {
	req, err := decodeSendMessage(data)
	if err != nil {
		s.sendError(p, room.ErrorPayload{Message: msgInvalidMessage})
		return
	}
	if err := s.validator.ValidateSendMessage(ctx, req); err != nil {
		s.sendFailure(p, err)
		return
	}
	if req.ConversationID == "" {
		s.sendError(p, room.ErrorPayload{Message: msgMissingRoom, Field: conversation.FieldConversationID})
		return
	}

	if _, err := s.submitter.Submit(ctx, chat.SubmitInput{
		Content:        req.Content,
		ConversationID: req.ConversationID,
		Transport:      chat.TransportWebSocket,
	}); err != nil {
		s.sendFailure(p, err)
	}
}

// relayTyping forwards a client's typing state to the other members of every room it joined.
func (s *Server) relayTyping(p *peer, typing bool) {
	payload := room.TypingPayload{IsTyping: typing, UserID: p.ID()}
	for _, roomID := range s.registry.RoomsOf(p) {
		s.registry.BroadcastExcept(roomID, p, room.EventTyping, payload)
	}
}

// sendFailure reports err to p only. Validation errors keep their message and field.
func (s *Server) sendFailure(p *peer, err error) {
	if pe := platformerrors.GetPlatformError(err); pe != nil && pe.Type == platformerrors.ErrorTypeValidation {
		s.sendError(p, room.ErrorPayload{Message: pe.Message, Field: pe.Field})
		return
	}

	p.log.Error().Err(err).Msg("failed to process realtime event")
	payload := room.ErrorPayload{Message: msgServerError}
	if s.opts.ExposeDetails {
		payload.Details = err.Error()
	}
	s.sendError(p, payload)
}

func (s *Server) sendError(p *peer, payload room.ErrorPayload) {
	if err := p.Send(room.EventError, payload); err != nil {
		p.log.Debug().Err(err).Msg("failed to deliver error event")
	}
}

func (s *Server) register(conn *websocket.Conn) (*peer, error) {
	id, err := idgen.GenerateSecureID("sock", peerIDLength)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errors.New(msgServerShuttingDown)
	}

	p := newPeer(id, conn, s.opts.SendBuffer, s.opts.WriteTimeout, s.log)
	s.peers[p] = struct{}{}
	metrics.WebSocketConnections.Inc()
	p.log.Debug().Msg("client connected")
	return p, nil
}

func (s *Server) unregister(p *peer) {
	left := s.registry.LeaveAll(p)
	p.finish()

	s.mu.Lock()
	delete(s.peers, p)
	s.mu.Unlock()

	metrics.WebSocketConnections.Dec()
	p.log.Debug().Strs("rooms", left).Msg("client disconnected")
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}
