package room

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/support-chat-api/internal/domain/conversation"
	"github.com/janhq/support-chat-api/internal/utils/platformerrors"
)

const (
	roomA = "3f2504e0-4f89-41d3-9a0c-0305e82c3301"
	roomB = "6ba7b810-9dad-41d1-80b4-00c04fd430c8"
)

type sentEvent struct {
	Event   string
	Payload any
}

type fakeConn struct {
	id      string
	mu      sync.Mutex
	events  []sentEvent
	sendErr error
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(event string, payload any) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, sentEvent{Event: event, Payload: payload})
	return nil
}

func (c *fakeConn) received() []sentEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]sentEvent(nil), c.events...)
}

func (c *fakeConn) names() []string {
	var out []string
	for _, ev := range c.received() {
		out = append(out, ev.Event)
	}
	return out
}

func TestRegistry_JoinAnnouncesToOthersOnly(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(zerolog.Nop())
	a, b := newFakeConn("a"), newFakeConn("b")

	joined, err := reg.Join(ctx, roomA, a)
	require.NoError(t, err)
	assert.True(t, joined)
	assert.Empty(t, a.received())

	joined, err = reg.Join(ctx, roomA, b)
	require.NoError(t, err)
	assert.True(t, joined)

	assert.Equal(t, []sentEvent{{Event: EventUserJoined, Payload: PresencePayload{UserID: "b"}}}, a.received())
	assert.Empty(t, b.received())
	assert.Equal(t, 2, reg.Members(roomA))
}

func TestRegistry_JoinIsIdempotent(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(zerolog.Nop())
	a, b := newFakeConn("a"), newFakeConn("b")

	_, err := reg.Join(ctx, roomA, a)
	require.NoError(t, err)
	_, err = reg.Join(ctx, roomA, b)
	require.NoError(t, err)

	joined, err := reg.Join(ctx, roomA, b)
	require.NoError(t, err)
	assert.False(t, joined)
	assert.Len(t, a.received(), 1)
	assert.Equal(t, 2, reg.Members(roomA))
}

func TestRegistry_JoinRejectsMalformedRoom(t *testing.T) {
	reg := NewRegistry(zerolog.Nop())

	_, err := reg.Join(context.Background(), "not-a-uuid", newFakeConn("a"))
	require.Error(t, err)
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
	assert.Equal(t, conversation.FieldConversationID, platformerrors.GetPlatformError(err).Field)
	assert.Equal(t, 0, reg.Rooms())
}

func TestRegistry_JoinNormalizesCase(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(zerolog.Nop())
	a := newFakeConn("a")

	_, err := reg.Join(ctx, "3F2504E0-4F89-41D3-9A0C-0305E82C3301", a)
	require.NoError(t, err)

	reg.Broadcast(roomA, EventTyping, TypingPayload{IsTyping: true})
	assert.Equal(t, []string{EventTyping}, a.names())
}

func TestRegistry_BroadcastReachesOnlyMembers(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(zerolog.Nop())
	a, b, outsider := newFakeConn("a"), newFakeConn("b"), newFakeConn("c")

	_, _ = reg.Join(ctx, roomA, a)
	_, _ = reg.Join(ctx, roomA, b)
	_, _ = reg.Join(ctx, roomB, outsider)

	reg.Broadcast(roomA, EventNewMessage, MessagePayload{ID: "m1"})

	assert.Contains(t, a.names(), EventNewMessage)
	assert.Contains(t, b.names(), EventNewMessage)
	assert.NotContains(t, outsider.names(), EventNewMessage)
}

func TestRegistry_BroadcastExceptSkipsSender(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(zerolog.Nop())
	a, b := newFakeConn("a"), newFakeConn("b")
	_, _ = reg.Join(ctx, roomA, a)
	_, _ = reg.Join(ctx, roomA, b)

	reg.BroadcastExcept(roomA, a, EventTyping, TypingPayload{IsTyping: true, UserID: "a"})

	assert.NotContains(t, a.names(), EventTyping)
	assert.Equal(t, sentEvent{Event: EventTyping, Payload: TypingPayload{IsTyping: true, UserID: "a"}}, b.received()[0])
}

func TestRegistry_BroadcastToUnknownRoomIsNoop(t *testing.T) {
	reg := NewRegistry(zerolog.Nop())
	assert.NotPanics(t, func() {
		reg.Broadcast(roomA, EventNewMessage, nil)
	})
}

func TestRegistry_FailedSendDoesNotBlockOthers(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(zerolog.Nop())
	broken, healthy := newFakeConn("broken"), newFakeConn("healthy")
	broken.sendErr = errors.New("queue full")

	_, _ = reg.Join(ctx, roomA, broken)
	_, _ = reg.Join(ctx, roomA, healthy)

	reg.Broadcast(roomA, EventNewMessage, MessagePayload{ID: "m1"})

	assert.Equal(t, []string{EventNewMessage}, healthy.names())
	assert.Equal(t, 2, reg.Members(roomA))
}

func TestRegistry_LeavePrunesEmptyRoom(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(zerolog.Nop())
	a, b := newFakeConn("a"), newFakeConn("b")
	_, _ = reg.Join(ctx, roomA, a)
	_, _ = reg.Join(ctx, roomA, b)

	left, err := reg.Leave(ctx, roomA, b)
	require.NoError(t, err)
	assert.True(t, left)
	assert.Equal(t, sentEvent{Event: EventUserLeft, Payload: PresencePayload{UserID: "b"}}, a.received()[1])
	assert.Equal(t, 1, reg.Rooms())

	left, err = reg.Leave(ctx, roomA, a)
	require.NoError(t, err)
	assert.True(t, left)
	assert.Equal(t, 0, reg.Rooms())
	assert.Equal(t, 0, reg.Members(roomA))

	left, err = reg.Leave(ctx, roomA, a)
	require.NoError(t, err)
	assert.False(t, left)
}

func TestRegistry_LeaveAll(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(zerolog.Nop())
	a, b, c := newFakeConn("a"), newFakeConn("b"), newFakeConn("c")
	_, _ = reg.Join(ctx, roomA, a)
	_, _ = reg.Join(ctx, roomB, a)
	_, _ = reg.Join(ctx, roomA, b)
	_, _ = reg.Join(ctx, roomB, c)

	left := reg.LeaveAll(a)

	assert.ElementsMatch(t, []string{roomA, roomB}, left)
	assert.Empty(t, reg.RoomsOf(a))
	assert.Contains(t, b.received(), sentEvent{Event: EventUserLeft, Payload: PresencePayload{UserID: "a"}})
	assert.Contains(t, c.received(), sentEvent{Event: EventUserLeft, Payload: PresencePayload{UserID: "a"}})
	assert.Equal(t, 2, reg.Rooms())
}

func TestRegistry_ConcurrentMutation(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(zerolog.Nop())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conn := newFakeConn(fmt.Sprintf("conn-%d", i))
			_, _ = reg.Join(ctx, roomA, conn)
			reg.Broadcast(roomA, EventTyping, TypingPayload{})
			reg.LeaveAll(conn)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, reg.Rooms())
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2025, 3, 4, 5, 6, 7, 891_000_000, time.FixedZone("ICT", 7*3600))
	assert.Equal(t, "2025-03-03T22:06:07.891Z", FormatTimestamp(ts))
}
