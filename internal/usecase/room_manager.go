package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/baiyoke1207/spellcast-backend/internal/apperror"
	"github.com/baiyoke1207/spellcast-backend/internal/board"
	"github.com/baiyoke1207/spellcast-backend/internal/config"
	"github.com/baiyoke1207/spellcast-backend/internal/dictionary"
	"github.com/baiyoke1207/spellcast-backend/internal/entity"
	"github.com/baiyoke1207/spellcast-backend/internal/pkg"
	"github.com/baiyoke1207/spellcast-backend/internal/timer"
)

const maxCodeAttempts = 100

const defaultPlayerName = "Player"

type sessionRepo interface {
	CreateOrUpdate(ctx context.Context, session *entity.Session) error
	GetByID(ctx context.Context, id string) (*entity.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

type snapshotRepo interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByCode(ctx context.Context, code string) (*entity.Room, error)
	DeleteByCode(ctx context.Context, code string) error
}

// roomState - a room plus everything that serializes mutation against it.
// All reads and writes of room, machine, attachments and consumed happen under
// mu: one mutation in flight per room, operations across rooms independent.
//
// attachments counts live connections per player. A reconnect opens the new
// socket before the old one times out, so a seat can briefly have two; only
// the last connection's close counts as a disconnect.
type roomState struct {
	mu sync.Mutex

	room    *entity.Room
	machine *timer.Machine
	runner  *timer.Runner

	attachments map[string]int
	consumed    map[board.Coord]bool
}

// RoomManager - the authoritative coordinator for rooms, membership, boards
// and timers. Holds every active room in memory; sessions and room snapshots
// are persisted through the repositories so clients can reconnect and resync.
type RoomManager struct {
	logger      *slog.Logger
	conf        config.Game
	dict        dictionary.Dictionary
	sessions    sessionRepo
	snapshots   snapshotRepo
	broadcaster Broadcaster

	mu    sync.RWMutex
	rooms map[string]*roomState
}

func NewRoomManager(
	logger *slog.Logger,
	conf config.Game,
	dict dictionary.Dictionary,
	sessions sessionRepo,
	snapshots snapshotRepo,
	broadcaster Broadcaster,
) *RoomManager {
	return &RoomManager{
		logger:      logger,
		conf:        conf,
		dict:        dict,
		sessions:    sessions,
		snapshots:   snapshots,
		broadcaster: broadcaster,
		rooms:       make(map[string]*roomState),
	}
}

// CreateRoom - creates a room with a fresh unique code and the creator as
// host. The creator's session is bound to the room for reconnects.
func (that *RoomManager) CreateRoom(ctx context.Context, sessionID, playerName string, maxPlayers int) (*entity.Room, *entity.Player, error) {
	log := that.logger.With("method", "CreateRoom")

	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		playerName = defaultPlayerName
	}

	player := entity.NewPlayer(uuid.NewString(), playerName)

	that.mu.Lock()

	code := ""
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		candidate := pkg.GenerateRoomCode()
		if _, taken := that.rooms[candidate]; !taken {
			code = candidate
			break
		}
	}

	if code == "" {
		that.mu.Unlock()
		return nil, nil, apperror.ErrCodeSpaceExhausted
	}

	rs := &roomState{
		room:        entity.NewRoom(code, player, maxPlayers),
		machine:     timer.NewMachine(that.conf.GraceSeconds, that.conf.CountdownSeconds),
		attachments: map[string]int{player.ID: 1},
		consumed:    make(map[board.Coord]bool),
	}
	that.rooms[code] = rs

	that.mu.Unlock()

	if err := that.sessions.CreateOrUpdate(ctx, &entity.Session{
		ID:       sessionID,
		PlayerID: player.ID,
		Name:     playerName,
		RoomCode: code,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to save session: %w", err)
	}

	that.saveSnapshot(ctx, rs.room)

	log.Info("room created", "roomCode", code, "host", playerName)

	return rs.room, player, nil
}

// JoinRoom - adds a player to a room, or restores an existing membership when
// the same session joins its own room again (reconnect, spam-join).
func (that *RoomManager) JoinRoom(ctx context.Context, sessionID, code, playerName string) (*entity.Room, *entity.Player, error) {
	log := that.logger.With("method", "JoinRoom", "roomCode", code)

	rs, ok := that.roomByCode(code)
	if !ok {
		return nil, nil, apperror.ErrRoomNotFound
	}

	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		playerName = defaultPlayerName
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	// A session rejoining its own room gets its membership back instead of a
	// duplicate seat.
	if sess, err := that.sessions.GetByID(ctx, sessionID); err == nil && sess.RoomCode == rs.room.Code {
		if existing := rs.room.PlayerByID(sess.PlayerID); existing != nil {
			rs.attachments[existing.ID]++

			that.broadcaster.ToRoomExcept(rs.room.Code, existing.ID, EventPlayerJoined, PlayerJoinedPayload{
				Player:      existing,
				PlayerCount: len(rs.room.Players),
				Reconnected: true,
			})

			log.Info("player rejoined", "player", existing.Name)

			return rs.room, existing, nil
		}
	}

	player := entity.NewPlayer(uuid.NewString(), playerName)
	if _, err := rs.room.AddPlayer(player); err != nil {
		return nil, nil, fmt.Errorf("failed to join room %s: %w", code, err)
	}
	rs.attachments[player.ID] = 1

	if err := that.sessions.CreateOrUpdate(ctx, &entity.Session{
		ID:       sessionID,
		PlayerID: player.ID,
		Name:     playerName,
		RoomCode: rs.room.Code,
	}); err != nil {
		return nil, nil, fmt.Errorf("failed to save session: %w", err)
	}

	that.broadcaster.ToRoomExcept(rs.room.Code, player.ID, EventPlayerJoined, PlayerJoinedPayload{
		Player:      player,
		PlayerCount: len(rs.room.Players),
	})

	that.saveSnapshot(ctx, rs.room)

	log.Info("player joined", "player", playerName)

	return rs.room, player, nil
}

// LeaveRoom - removes the player from their room. The next-joined player
// inherits the host seat; an empty room is destroyed together with its timer.
func (that *RoomManager) LeaveRoom(ctx context.Context, sessionID string) error {
	log := that.logger.With("method", "LeaveRoom")

	rs, sess, err := that.resolve(ctx, sessionID)
	if err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	player := rs.room.PlayerByID(sess.PlayerID)
	if player == nil {
		return apperror.ErrNotInRoom
	}

	oldHostID := rs.room.HostID

	// An active player's departure in turn mode ends their turn; compute the
	// successor while the rotation still contains them.
	handoff := rs.room.Phase == entity.PhaseInRound &&
		rs.room.Settings.BoardMode == entity.BoardPerPlayer &&
		rs.room.ActivePlayerID == player.ID

	var next *entity.Player
	lastInRotation := false
	if handoff {
		next = rs.room.NextPlayerAfter(player.ID)
		lastInRotation = next.ID == rs.room.Players[0].ID && player.ID != rs.room.Players[0].ID
	}

	empty := rs.room.RemovePlayer(player.ID)
	delete(rs.attachments, player.ID)

	sess.RoomCode = ""
	if saveErr := that.sessions.CreateOrUpdate(ctx, sess); saveErr != nil {
		log.Error("failed to update session", "error", saveErr)
	}

	if empty {
		that.destroyRoom(ctx, rs)
		log.Info("room deleted (empty)", "roomCode", rs.room.Code)
		return nil
	}

	payload := PlayerLeftPayload{
		PlayerID:    player.ID,
		PlayerName:  player.Name,
		PlayerCount: len(rs.room.Players),
	}
	if rs.room.HostID != oldHostID {
		payload.NewHostID = rs.room.HostID
	}
	that.broadcaster.ToRoom(rs.room.Code, EventPlayerLeft, payload)

	if rs.room.HostID != oldHostID {
		that.broadcaster.ToRoom(rs.room.Code, EventHostChanged, HostChangedPayload{HostID: rs.room.HostID})
	}

	if handoff {
		that.passTurnFromLeaver(ctx, rs, player.ID, next, lastInRotation)
	} else {
		that.afterMembershipChange(ctx, rs)
	}

	log.Info("player left", "roomCode", rs.room.Code, "player", player.Name)

	return nil
}

// Disconnect - marks a player's connection as gone without giving up their
// seat: room state persists so they can reconnect. The room is destroyed
// only once every member is disconnected.
func (that *RoomManager) Disconnect(ctx context.Context, sessionID string) {
	log := that.logger.With("method", "Disconnect")

	rs, sess, err := that.resolve(ctx, sessionID)
	if err != nil {
		return
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	player := rs.room.PlayerByID(sess.PlayerID)
	if player == nil {
		return
	}

	if rs.attachments[player.ID] > 0 {
		rs.attachments[player.ID]--
	}

	// A stale socket closing after the player already reconnected must not
	// tear down a live seat.
	if rs.attachments[player.ID] > 0 {
		log.Info("stale connection closed", "roomCode", rs.room.Code, "player", player.Name)
		return
	}

	anyConnected := false
	for _, live := range rs.attachments {
		if live > 0 {
			anyConnected = true
			break
		}
	}

	if !anyConnected {
		that.destroyRoom(ctx, rs)
		log.Info("room deleted (all players disconnected)", "roomCode", rs.room.Code)
		return
	}

	that.broadcaster.ToRoom(rs.room.Code, EventPlayerLeft, PlayerLeftPayload{
		PlayerID:     player.ID,
		PlayerName:   player.Name,
		PlayerCount:  len(rs.room.Players),
		Disconnected: true,
	})

	log.Info("player disconnected", "roomCode", rs.room.Code, "player", player.Name)
}

// UpdateTimerSettings - host-only lobby change of the timer discipline.
func (that *RoomManager) UpdateTimerSettings(ctx context.Context, sessionID string, timerType entity.TimerType, fixedMinutes int) error {
	rs, sess, err := that.resolve(ctx, sessionID)
	if err != nil {
		return err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	if !rs.room.IsHost(sess.PlayerID) {
		return apperror.ErrNotHost
	}

	if rs.room.Phase != entity.PhaseLobby {
		return apperror.ErrGameInProgress
	}

	if timerType != entity.TimerFixed {
		timerType = entity.TimerVoting
	}

	rs.room.Settings.TimerType = timerType
	if timerType == entity.TimerFixed {
		rs.room.Settings.FixedMinutes = entity.ClampFixedMinutes(fixedMinutes)
	}

	that.broadcaster.ToRoom(rs.room.Code, EventSettingsUpdated, SettingsUpdatedPayload{
		TimerType:    rs.room.Settings.TimerType,
		FixedMinutes: rs.room.Settings.FixedMinutes,
	})

	that.saveSnapshot(ctx, rs.room)

	return nil
}

// RoomInfo - a full room snapshot for client resync, the remedy for any
// missed broadcast.
type RoomInfo struct {
	Room     *entity.Room `json:"room"`
	PlayerID string       `json:"player_id"`
	IsHost   bool         `json:"is_host"`

	TimerMode        timer.Mode `json:"timer_mode"`
	SecondsRemaining int        `json:"seconds_remaining"`
	Votes            int        `json:"votes"`
	VotesRequired    int        `json:"votes_required"`
}

func (that *RoomManager) GetRoomInfo(ctx context.Context, sessionID string) (*RoomInfo, error) {
	rs, sess, err := that.resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	return &RoomInfo{
		Room:             rs.room,
		PlayerID:         sess.PlayerID,
		IsHost:           rs.room.IsHost(sess.PlayerID),
		TimerMode:        rs.machine.Mode(),
		SecondsRemaining: rs.machine.Remaining(),
		Votes:            rs.machine.Votes(),
		VotesRequired:    rs.machine.Required(),
	}, nil
}

// GetRoomByCode - a read-only room view for the REST snapshot endpoint.
// Falls back to the persisted snapshot when the room is not held in memory.
func (that *RoomManager) GetRoomByCode(ctx context.Context, code string) (*entity.Room, error) {
	if rs, ok := that.roomByCode(code); ok {
		rs.mu.Lock()
		defer rs.mu.Unlock()
		return rs.room, nil
	}

	room, err := that.snapshots.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, code)
	}

	return room, nil
}

// HighlightTiles - relays a player's live tile selection to everyone else in
// the room; presentation-only, no state change.
func (that *RoomManager) HighlightTiles(ctx context.Context, sessionID string, positions []board.Coord, action string) error {
	rs, sess, err := that.resolve(ctx, sessionID)
	if err != nil {
		return err
	}

	that.broadcaster.ToRoomExcept(rs.room.Code, sess.PlayerID, EventTileHighlight, TileHighlightPayload{
		PlayerID:  sess.PlayerID,
		Positions: positions,
		Action:    action,
	})

	return nil
}

func (that *RoomManager) roomByCode(code string) (*roomState, bool) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	rs, ok := that.rooms[strings.ToUpper(strings.TrimSpace(code))]

	return rs, ok
}

// resolve - maps a connection session to its room. The caller locks the
// returned roomState before touching it.
func (that *RoomManager) resolve(ctx context.Context, sessionID string) (*roomState, *entity.Session, error) {
	sess, err := that.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: no session", apperror.ErrNotInRoom)
	}

	if sess.RoomCode == "" {
		return nil, nil, apperror.ErrNotInRoom
	}

	rs, ok := that.roomByCode(sess.RoomCode)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", apperror.ErrRoomNotFound, sess.RoomCode)
	}

	return rs, sess, nil
}

// destroyRoom - drops the room from the registry, cancels its timer runner
// and removes the persisted snapshot. Called with the room lock held.
func (that *RoomManager) destroyRoom(ctx context.Context, rs *roomState) {
	rs.machine.Stop()
	if rs.runner != nil {
		rs.runner.Stop()
	}

	that.mu.Lock()
	delete(that.rooms, rs.room.Code)
	that.mu.Unlock()

	if err := that.snapshots.DeleteByCode(ctx, rs.room.Code); err != nil {
		that.logger.Error("failed to delete room snapshot", "roomCode", rs.room.Code, "error", err)
	}
}

// afterMembershipChange - recomputes the vote threshold and checks whether
// the departure finished the round. Called with the room lock held.
func (that *RoomManager) afterMembershipChange(ctx context.Context, rs *roomState) {
	if rs.room.Phase != entity.PhaseInRound {
		that.saveSnapshot(ctx, rs.room)
		return
	}

	if signal := rs.machine.SetRequired(rs.room.MajorityThreshold()); signal == timer.SignalCountdownStarted {
		that.broadcaster.ToRoom(rs.room.Code, EventVoteUpdate, VoteUpdatePayload{
			Votes:    rs.machine.Votes(),
			Required: rs.machine.Required(),
		})
		that.broadcaster.ToRoom(rs.room.Code, EventCountdownStarted, DurationPayload{
			Duration: rs.machine.CountdownDuration(),
		})
	}

	if rs.room.Settings.BoardMode == entity.BoardShared && rs.room.AllDone() {
		that.endRound(ctx, rs)
		return
	}

	that.saveSnapshot(ctx, rs.room)
}

func (that *RoomManager) saveSnapshot(ctx context.Context, room *entity.Room) {
	if err := that.snapshots.CreateOrUpdate(ctx, room); err != nil {
		that.logger.Error("failed to save room snapshot", "roomCode", room.Code, "error", err)
	}
}
