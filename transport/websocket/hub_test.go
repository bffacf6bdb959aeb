package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baiyoke1207/spellcast-backend/internal/apperror"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func testClient() *client {
	return &client{send: make(chan []byte, sendBufferSize)}
}

// receive decodes the next queued frame, failing when the buffer is empty.
func receive(t *testing.T, cl *client) Message {
	t.Helper()

	select {
	case data := <-cl.send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	default:
		t.Fatal("expected a queued frame")
		return Message{}
	}
}

func TestHub_ToRoom(t *testing.T) {
	hub := testHub()
	alice, bob := testClient(), testClient()

	hub.Bind("ROOM01", "p-alice", alice)
	hub.Bind("ROOM01", "p-bob", bob)

	// When: an event goes to the room
	hub.ToRoom("ROOM01", "round_ended", map[string]int{"round_number": 1})

	// Then: both members get the same frame
	for _, cl := range []*client{alice, bob} {
		msg := receive(t, cl)
		assert.Equal(t, "round_ended", msg.Action)
	}
}

func TestHub_ToRoomExcept(t *testing.T) {
	hub := testHub()
	alice, bob := testClient(), testClient()

	hub.Bind("ROOM01", "p-alice", alice)
	hub.Bind("ROOM01", "p-bob", bob)

	hub.ToRoomExcept("ROOM01", "p-alice", "opponent_tile_highlight", nil)

	// Then: the sender is skipped
	assert.Empty(t, alice.send)
	msg := receive(t, bob)
	assert.Equal(t, "opponent_tile_highlight", msg.Action)
}

func TestHub_ToPlayer(t *testing.T) {
	hub := testHub()
	alice, bob := testClient(), testClient()

	hub.Bind("ROOM01", "p-alice", alice)
	hub.Bind("ROOM01", "p-bob", bob)

	hub.ToPlayer("p-bob", "ability_result", nil)

	assert.Empty(t, alice.send)
	msg := receive(t, bob)
	assert.Equal(t, "ability_result", msg.Action)
}

func TestHub_Unbind(t *testing.T) {
	t.Run("unbind removes the connection", func(t *testing.T) {
		hub := testHub()
		alice := testClient()
		hub.Bind("ROOM01", "p-alice", alice)

		hub.Unbind(alice)

		hub.ToRoom("ROOM01", "player_left", nil)
		hub.ToPlayer("p-alice", "player_left", nil)
		assert.Empty(t, alice.send)
	})

	t.Run("a reconnected player keeps the fresh connection", func(t *testing.T) {
		hub := testHub()
		stale, fresh := testClient(), testClient()

		hub.Bind("ROOM01", "p-alice", stale)
		hub.Bind("ROOM01", "p-alice", fresh)

		// When: the stale connection's read loop finally exits
		hub.Unbind(stale)

		// Then: events still reach the fresh connection
		hub.ToPlayer("p-alice", "room_info", nil)
		msg := receive(t, fresh)
		assert.Equal(t, "room_info", msg.Action)
		assert.Empty(t, stale.send)
	})

	t.Run("unbinding a never-bound connection is a no-op", func(t *testing.T) {
		hub := testHub()
		hub.Unbind(testClient())
	})
}

func TestClient_TrySend_DropsWhenFull(t *testing.T) {
	cl := &client{send: make(chan []byte, 1)}

	cl.trySend([]byte("one"))
	cl.trySend([]byte("two"))

	// Then: the overflow frame is dropped, not blocked on
	require.Len(t, cl.send, 1)
	assert.Equal(t, []byte("one"), <-cl.send)
}

func TestRejectionReason(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason string
	}{
		{name: "not a word", err: apperror.ErrNotAWord, reason: "not_a_word"},
		{name: "too short", err: apperror.ErrWordTooShort, reason: "too_short"},
		{name: "too long", err: apperror.ErrWordTooLong, reason: "too_long"},
		{name: "already played", err: apperror.ErrWordAlreadyPlayed, reason: "already_played"},
		{name: "invalid path", err: apperror.ErrInvalidPath, reason: "invalid_path"},
		{name: "board mismatch", err: apperror.ErrBoardMismatch, reason: "board_mismatch"},
		{name: "not your turn", err: apperror.ErrNotYourTurn, reason: "not_your_turn"},
		{name: "round over", err: apperror.ErrRoundOver, reason: "round_over"},
		{name: "game over", err: apperror.ErrGameOver, reason: "game_over"},
		{name: "unexpected error", err: apperror.ErrRoomNotFound, reason: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			reason, detail := rejectionReason(test.err)

			assert.Equal(t, test.reason, reason)
			if test.reason != "" {
				assert.NotEmpty(t, detail)
			}
		})
	}
}
