package room

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/janhq/support-chat-api/internal/domain/conversation"
	"github.com/janhq/support-chat-api/internal/infrastructure/metrics"
)

// Connection is a live realtime endpoint that can receive events.
// Send must not block on the network; it either queues the event or fails.
type Connection interface {
	ID() string
	Send(event string, payload any) error
}

// Registry maps conversation rooms to the connections that joined them.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Connection
	log   zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		rooms: make(map[string]map[string]Connection),
		log:   log.With().Str("component", "room-registry").Logger(),
	}
}

// Join adds conn to roomID and announces it to the other members.
// It reports false, without announcing, when conn was already a member.
func (r *Registry) Join(ctx context.Context, roomID string, conn Connection) (bool, error) {
	roomID, err := validateRoomID(ctx, roomID)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	members, ok := r.rooms[roomID]
	if !ok {
		members = make(map[string]Connection)
		r.rooms[roomID] = members
	}
	if _, exists := members[conn.ID()]; exists {
		r.mu.Unlock()
		return false, nil
	}
	members[conn.ID()] = conn
	others := snapshot(members, conn.ID())
	r.publishStatsLocked()
	r.mu.Unlock()

	r.log.Debug().Str("room", roomID).Str("conn_id", conn.ID()).Msg("joined room")
	r.fanOut(others, EventUserJoined, PresencePayload{UserID: conn.ID()})
	return true, nil
}

// Leave removes conn from roomID, announces it to the remaining members and prunes empty rooms.
// It reports false when conn was not a member.
func (r *Registry) Leave(ctx context.Context, roomID string, conn Connection) (bool, error) {
	roomID, err := validateRoomID(ctx, roomID)
	if err != nil {
		return false, err
	}

	remaining, ok := r.remove(roomID, conn.ID())
	if !ok {
		return false, nil
	}
	r.log.Debug().Str("room", roomID).Str("conn_id", conn.ID()).Msg("left room")
	r.fanOut(remaining, EventUserLeft, PresencePayload{UserID: conn.ID()})
	return true, nil
}

// LeaveAll removes conn from every room it joined. Used on disconnect.
func (r *Registry) LeaveAll(conn Connection) []string {
	left := r.RoomsOf(conn)
	for _, roomID := range left {
		remaining, ok := r.remove(roomID, conn.ID())
		if !ok {
			continue
		}
		r.fanOut(remaining, EventUserLeft, PresencePayload{UserID: conn.ID()})
	}
	return left
}

// Broadcast delivers an event to every member of roomID.
func (r *Registry) Broadcast(roomID, event string, payload any) {
	r.BroadcastExcept(roomID, nil, event, payload)
}

// BroadcastExcept delivers an event to every member of roomID other than skip.
func (r *Registry) BroadcastExcept(roomID string, skip Connection, event string, payload any) {
	roomID = conversation.NormalizeID(roomID)
	skipID := ""
	if skip != nil {
		skipID = skip.ID()
	}

	r.mu.RLock()
	targets := snapshot(r.rooms[roomID], skipID)
	r.mu.RUnlock()

	r.fanOut(targets, event, payload)
}

// RoomsOf lists the rooms conn is a member of, sorted.
func (r *Registry) RoomsOf(conn Connection) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var joined []string
	for roomID, members := range r.rooms {
		if _, ok := members[conn.ID()]; ok {
			joined = append(joined, roomID)
		}
	}
	sort.Strings(joined)
	return joined
}

// Members returns the number of connections in roomID.
func (r *Registry) Members(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[conversation.NormalizeID(roomID)])
}

// Rooms returns the number of non-empty rooms.
func (r *Registry) Rooms() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func (r *Registry) remove(roomID, connID string) ([]Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.rooms[roomID]
	if !ok {
		return nil, false
	}
	if _, ok := members[connID]; !ok {
		return nil, false
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(r.rooms, roomID)
	}
	r.publishStatsLocked()
	return snapshot(members, ""), true
}

// fanOut runs without the registry lock held.
func (r *Registry) fanOut(targets []Connection, event string, payload any) {
	for _, conn := range targets {
		if err := conn.Send(event, payload); err != nil {
			metrics.RecordBroadcastFailure(event)
			r.log.Warn().Err(err).Str("event", event).Str("conn_id", conn.ID()).Msg("failed to deliver event")
		}
	}
}

func (r *Registry) publishStatsLocked() {
	memberships := 0
	for _, members := range r.rooms {
		memberships += len(members)
	}
	metrics.SetRoomStats(len(r.rooms), memberships)
}

func snapshot(members map[string]Connection, skipID string) []Connection {
	if len(members) == 0 {
		return nil
	}
	out := make([]Connection, 0, len(members))
	for id, conn := range members {
		if id == skipID {
			continue
		}
		out = append(out, conn)
	}
	return out
}

func validateRoomID(ctx context.Context, roomID string) (string, error) {
	roomID = strings.TrimSpace(roomID)
	if !conversation.IsValidID(roomID) {
		return "", conversation.InvalidIDError(ctx)
	}
	return conversation.NormalizeID(roomID), nil
}
