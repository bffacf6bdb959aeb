package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Hub tracks which connection belongs to which player and room, and fans
// server events out to them. It implements usecase.Broadcaster.
//
// Sends never block: a client whose send buffer is full has the event dropped
// and is expected to resync with a get_room_info request.
type Hub struct {
	logger *slog.Logger

	mu       sync.RWMutex
	byPlayer map[string]*client            // playerID -> connection
	rooms    map[string]map[string]*client // roomCode -> playerID -> connection
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:   logger,
		byPlayer: make(map[string]*client),
		rooms:    make(map[string]map[string]*client),
	}
}

// Bind - associates a connection with a player seat in a room. A reconnecting
// player replaces their stale connection.
func (that *Hub) Bind(roomCode, playerID string, cl *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	cl.roomCode = roomCode
	cl.playerID = playerID

	that.byPlayer[playerID] = cl

	members, ok := that.rooms[roomCode]
	if !ok {
		members = make(map[string]*client)
		that.rooms[roomCode] = members
	}
	members[playerID] = cl
}

// Unbind - removes a connection's bindings. A player who already rebound on a
// fresh connection keeps the fresh one.
func (that *Hub) Unbind(cl *client) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if cl.playerID == "" {
		return
	}

	if existing, ok := that.byPlayer[cl.playerID]; ok && existing == cl {
		delete(that.byPlayer, cl.playerID)
	}

	if members, ok := that.rooms[cl.roomCode]; ok {
		if existing, ok := members[cl.playerID]; ok && existing == cl {
			delete(members, cl.playerID)
		}
		if len(members) == 0 {
			delete(that.rooms, cl.roomCode)
		}
	}
}

// ToRoom - sends an event to every bound member of a room.
func (that *Hub) ToRoom(roomCode, event string, payload any) {
	data, err := encodeEvent(event, payload)
	if err != nil {
		that.logger.Error("failed to encode event", "event", event, "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for _, cl := range that.rooms[roomCode] {
		cl.trySend(data)
	}
}

// ToRoomExcept - sends an event to every member of a room except one.
func (that *Hub) ToRoomExcept(roomCode, exceptPlayerID, event string, payload any) {
	data, err := encodeEvent(event, payload)
	if err != nil {
		that.logger.Error("failed to encode event", "event", event, "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	for playerID, cl := range that.rooms[roomCode] {
		if playerID == exceptPlayerID {
			continue
		}
		cl.trySend(data)
	}
}

// ToPlayer - sends an event to a single player, wherever they are bound.
func (that *Hub) ToPlayer(playerID, event string, payload any) {
	data, err := encodeEvent(event, payload)
	if err != nil {
		that.logger.Error("failed to encode event", "event", event, "error", err)
		return
	}

	that.mu.RLock()
	defer that.mu.RUnlock()

	if cl, ok := that.byPlayer[playerID]; ok {
		cl.trySend(data)
	}
}

func encodeEvent(event string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(Message{Action: event, Payload: raw})
}
