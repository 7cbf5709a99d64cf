package wsserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/janhq/support-chat-api/internal/domain/chat"
	"github.com/janhq/support-chat-api/internal/domain/conversation"
	"github.com/janhq/support-chat-api/internal/domain/llm"
	"github.com/janhq/support-chat-api/internal/domain/room"
	"github.com/janhq/support-chat-api/internal/infrastructure/lock"
	repo "github.com/janhq/support-chat-api/internal/infrastructure/repository/conversation"
	requestchat "github.com/janhq/support-chat-api/internal/interfaces/httpserver/requests/chat"
)

type wsTestFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type mockEngine struct {
	createCompletionFunc func(ctx context.Context, req llm.CompletionRequest) (string, error)
}

func (m *mockEngine) CreateCompletion(ctx context.Context, req llm.CompletionRequest) (string, error) {
	return m.createCompletionFunc(ctx, req)
}

type testEnv struct {
	url      string
	server   *Server
	store    *repo.MemoryRepository
	registry *room.Registry
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	log := zerolog.Nop()
	store := repo.NewMemoryRepository()
	registry := room.NewRegistry(log)
	engine := &mockEngine{createCompletionFunc: func(context.Context, llm.CompletionRequest) (string, error) {
		return "Hello!", nil
	}}

	service := chat.NewService(
		store,
		llm.NewHistoryAssembler(store, 10),
		llm.NewCompletionClient(engine, llm.Params{Model: "test-model"}, time.Second, "test", log),
		lock.NewMemoryLocker(),
		registry,
		chat.Options{},
		log,
	)

	srv := New(service, registry, requestchat.NewValidator(), opts, log)
	httpSrv := httptest.NewServer(srv)
	t.Cleanup(httpSrv.Close)

	return &testEnv{
		url:      "ws" + strings.TrimPrefix(httpSrv.URL, "http"),
		server:   srv,
		store:    store,
		registry: registry,
	}
}

func (e *testEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	conn, err := websocket.Dial(e.url, "", "http://localhost/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func writeFrame(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	require.NoError(t, websocket.JSON.Send(conn, map[string]any{"event": event, "data": data}))
}

func readFrame(t *testing.T, conn *websocket.Conn) wsTestFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got wsTestFrame
	require.NoError(t, websocket.JSON.Receive(conn, &got))
	return got
}

func joinRoom(t *testing.T, conn *websocket.Conn, roomID string) {
	t.Helper()
	writeFrame(t, conn, EventJoinConversation, roomID)
	frame := readFrame(t, conn)
	require.Equal(t, room.EventJoined, frame.Event, string(frame.Data))
}

func decodeData[T any](t *testing.T, frame wsTestFrame) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(frame.Data, &out))
	return out
}

func TestRealtime_MemberSeesFullExchangeInOrder(t *testing.T) {
	env := newTestEnv(t, Options{})
	watcher := env.dial(t)
	sender := env.dial(t)

	joinRoom(t, watcher, validID)

	writeFrame(t, sender, EventSendMessage, map[string]string{"content": "Hi", "conversationId": validID})

	var events []string
	var frames []wsTestFrame
	for i := 0; i < 4; i++ {
		frame := readFrame(t, watcher)
		events = append(events, frame.Event)
		frames = append(frames, frame)
	}

	assert.Equal(t, []string{room.EventNewMessage, room.EventTyping, room.EventTyping, room.EventNewMessage}, events)

	user := decodeData[room.MessagePayload](t, frames[0])
	assert.Equal(t, "Hi", user.Content)
	assert.Equal(t, "user", user.SenderType)
	assert.Equal(t, validID, user.ConversationID)

	assert.True(t, decodeData[room.TypingPayload](t, frames[1]).IsTyping)
	assert.False(t, decodeData[room.TypingPayload](t, frames[2]).IsTyping)

	reply := decodeData[room.MessagePayload](t, frames[3])
	assert.Equal(t, "Hello!", reply.Content)
	assert.Equal(t, "assistant", reply.SenderType)
	assert.Equal(t, 2, env.store.MessageCount())
}

func TestRealtime_JoinAnnouncesToExistingMembers(t *testing.T) {
	env := newTestEnv(t, Options{})
	first := env.dial(t)
	second := env.dial(t)

	joinRoom(t, first, validID)
	joinRoom(t, second, validID)

	frame := readFrame(t, first)
	assert.Equal(t, room.EventUserJoined, frame.Event)
	assert.True(t, strings.HasPrefix(decodeData[room.PresencePayload](t, frame).UserID, "sock_"))
}

func TestRealtime_TypingRelayAndDisconnect(t *testing.T) {
	env := newTestEnv(t, Options{})
	first := env.dial(t)
	second := env.dial(t)

	joinRoom(t, first, validID)
	joinRoom(t, second, validID)
	joined := decodeData[room.PresencePayload](t, readFrame(t, first))

	writeFrame(t, second, EventTyping, nil)
	frame := readFrame(t, first)
	require.Equal(t, room.EventTyping, frame.Event)
	assert.Equal(t, room.TypingPayload{IsTyping: true, UserID: joined.UserID}, decodeData[room.TypingPayload](t, frame))

	writeFrame(t, second, EventStopTyping, nil)
	frame = readFrame(t, first)
	assert.Equal(t, room.TypingPayload{IsTyping: false, UserID: joined.UserID}, decodeData[room.TypingPayload](t, frame))

	require.NoError(t, second.Close())
	frame = readFrame(t, first)
	assert.Equal(t, room.EventUserLeft, frame.Event)
	assert.Equal(t, joined.UserID, decodeData[room.PresencePayload](t, frame).UserID)
}

func TestRealtime_LeaveStopsDelivery(t *testing.T) {
	env := newTestEnv(t, Options{})
	conn := env.dial(t)

	joinRoom(t, conn, validID)
	writeFrame(t, conn, EventLeaveConversation, map[string]string{"conversationId": validID})

	frame := readFrame(t, conn)
	assert.Equal(t, room.EventLeft, frame.Event)
	assert.Equal(t, validID, decodeData[room.MembershipPayload](t, frame).ConversationID)
	assert.Equal(t, 0, env.registry.Members(validID))
}

func TestRealtime_RejectionsGoToSenderOnly(t *testing.T) {
	tests := []struct {
		name  string
		event string
		data  any
		field string
	}{
		{name: "join malformed id", event: EventJoinConversation, data: "not-a-uuid", field: conversation.FieldConversationID},
		{name: "join missing id", event: EventJoinConversation, data: nil, field: conversation.FieldConversationID},
		{name: "send empty content", event: EventSendMessage, data: map[string]string{"content": "  ", "conversationId": validID}, field: conversation.FieldContent},
		{name: "send missing room", event: EventSendMessage, data: map[string]string{"content": "Hi"}, field: conversation.FieldConversationID},
		{name: "send malformed room", event: EventSendMessage, data: map[string]string{"content": "Hi", "conversationId": "123"}, field: conversation.FieldConversationID},
		{name: "send unusable payload", event: EventSendMessage, data: "just text", field: ""},
		{name: "send oversized content", event: EventSendMessage, data: map[string]string{"content": strings.Repeat("a", conversation.MaxContentLength+1), "conversationId": validID}, field: conversation.FieldContent},
		{name: "unknown event", event: "dance", data: nil, field: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Options{})
			member := env.dial(t)
			offender := env.dial(t)
			joinRoom(t, member, validID)

			writeFrame(t, offender, tt.event, tt.data)

			frame := readFrame(t, offender)
			require.Equal(t, room.EventError, frame.Event)
			payload := decodeData[room.ErrorPayload](t, frame)
			assert.NotEmpty(t, payload.Message)
			assert.Equal(t, tt.field, payload.Field)
			assert.Equal(t, 0, env.store.MessageCount())

			// Nothing leaked to the room: the member's next frame is its own leave ack.
			writeFrame(t, member, EventLeaveConversation, validID)
			assert.Equal(t, room.EventLeft, readFrame(t, member).Event)
		})
	}
}

func TestRealtime_InvalidFramesCloseConnection(t *testing.T) {
	env := newTestEnv(t, Options{})
	conn := env.dial(t)

	for i := 0; i < maxDecodeErrorsPerConn; i++ {
		_, err := conn.Write([]byte("{not json"))
		require.NoError(t, err)
		assert.Equal(t, room.EventError, readFrame(t, conn).Event)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame wsTestFrame
	assert.Error(t, websocket.JSON.Receive(conn, &frame))
}

func TestRealtime_OversizedFrameRejected(t *testing.T) {
	env := newTestEnv(t, Options{MaxFrameBytes: 256})
	conn := env.dial(t)

	writeFrame(t, conn, EventSendMessage, map[string]string{"content": strings.Repeat("a", 512), "conversationId": validID})
	frame := readFrame(t, conn)
	require.Equal(t, room.EventError, frame.Event)
	assert.Equal(t, msgFrameTooLarge, decodeData[room.ErrorPayload](t, frame).Message)

	joinRoom(t, conn, validID)
}

func TestRealtime_OriginCheck(t *testing.T) {
	env := newTestEnv(t, Options{AllowedOrigins: []string{"http://localhost:5173"}})

	_, err := websocket.Dial(env.url, "", "http://evil.example.com")
	assert.Error(t, err)

	conn, err := websocket.Dial(env.url, "", "http://localhost:5173")
	require.NoError(t, err)
	_ = conn.Close()
}

func TestRealtime_CloseAllDisconnectsClients(t *testing.T) {
	env := newTestEnv(t, Options{})
	conn := env.dial(t)
	joinRoom(t, conn, validID)

	env.server.CloseAll()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame wsTestFrame
	err := websocket.JSON.Receive(conn, &frame)
	assert.Error(t, err)
	assert.Eventually(t, func() bool { return env.server.Connections() == 0 }, time.Second, 10*time.Millisecond)
}

func TestServeHTTP_RejectsNonGet(t *testing.T) {
	env := newTestEnv(t, Options{})
	rec := httptest.NewRecorder()
	env.server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ws", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPeer_SendWhenQueueFull(t *testing.T) {
	p := newPeer("sock_test", nil, 1, 0, zerolog.Nop())

	require.NoError(t, p.Send(room.EventTyping, nil))
	assert.True(t, errors.Is(p.Send(room.EventTyping, nil), errQueueFull))

	close(p.done)
	assert.ErrorIs(t, p.Send(room.EventTyping, nil), errPeerClosed)
}
