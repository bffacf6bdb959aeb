package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/baiyoke1207/spellcast-backend/internal/apperror"
	"github.com/baiyoke1207/spellcast-backend/internal/usecase"
)

// handleConnect restores a reconnecting session: if it is still bound to a
// live room the seat is re-taken and a full snapshot is sent, otherwise the
// client just gets its connect acknowledged.
func (that *Server) handleConnect(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	// A socket that already holds its seat just gets a fresh snapshot;
	// re-running the rejoin would count it as another connection.
	if cl.playerID != "" {
		info, err := that.rooms.GetRoomInfo(ctx, cl.sessionID)
		if err != nil {
			return fmt.Errorf("failed to get room info: %w", err)
		}

		return that.sendMessage(cl, "room_info", info)
	}

	info, err := that.rooms.GetRoomInfo(ctx, cl.sessionID)
	if err != nil {
		if err = that.sendMessage(cl, msg.Action, nil); err != nil {
			return fmt.Errorf("failed to send response: %w", err)
		}

		return nil
	}

	// Flip the seat back to connected through the rejoin path, then bind the
	// fresh connection for broadcasts.
	if _, _, err = that.rooms.JoinRoom(ctx, cl.sessionID, info.Room.Code, ""); err != nil {
		log.Error("failed to restore room membership", "roomCode", info.Room.Code, "error", err)
		that.sendErrorResponse(cl, msg.Action, "failed to restore room membership")
		return nil
	}

	that.hub.Bind(info.Room.Code, info.PlayerID, cl)

	info, err = that.rooms.GetRoomInfo(ctx, cl.sessionID)
	if err != nil {
		return fmt.Errorf("failed to get room info: %w", err)
	}

	log.Info("player reconnected", "roomCode", info.Room.Code)

	return that.sendMessage(cl, "room_info", info)
}

func (that *Server) handleCreateRoom(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleCreateRoom")

	var req createRoomRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	room, player, err := that.rooms.CreateRoom(ctx, cl.sessionID, req.Name, req.MaxPlayers)
	if err != nil {
		log.Error("failed to create room", "error", err)
		that.sendErrorResponse(cl, msg.Action, "failed to create room")
		return nil
	}

	that.hub.Bind(room.Code, player.ID, cl)

	return that.sendMessage(cl, "room_created", roomResponse{
		Room:     room,
		PlayerID: player.ID,
		IsHost:   true,
	})
}

func (that *Server) handleJoinRoom(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleJoinRoom")

	var req joinRoomRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	// A repeated join from the seat's own socket is answered from the current
	// state instead of being counted as a new connection.
	if cl.playerID != "" && strings.EqualFold(strings.TrimSpace(req.RoomCode), cl.roomCode) {
		info, err := that.rooms.GetRoomInfo(ctx, cl.sessionID)
		if err == nil {
			return that.sendMessage(cl, "room_joined", roomResponse{
				Room:     info.Room,
				PlayerID: info.PlayerID,
				IsHost:   info.IsHost,
			})
		}
	}

	room, player, err := that.rooms.JoinRoom(ctx, cl.sessionID, req.RoomCode, req.Name)
	if err != nil {
		log.Error("failed to join room", "roomCode", req.RoomCode, "error", err)
		that.sendErrorResponse(cl, msg.Action, joinFailureMessage(err))
		return nil
	}

	that.hub.Bind(room.Code, player.ID, cl)

	return that.sendMessage(cl, "room_joined", roomResponse{
		Room:     room,
		PlayerID: player.ID,
		IsHost:   room.IsHost(player.ID),
	})
}

func (that *Server) handleLeaveRoom(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleLeaveRoom")

	if err := that.rooms.LeaveRoom(ctx, cl.sessionID); err != nil {
		log.Error("failed to leave room", "error", err)
		that.sendErrorResponse(cl, msg.Action, "you are not in a room")
		return nil
	}

	that.hub.Unbind(cl)
	cl.roomCode = ""
	cl.playerID = ""

	return that.sendMessage(cl, "room_left", nil)
}

func (that *Server) handleTimerSettings(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleTimerSettings")

	var req timerSettingsRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	err := that.rooms.UpdateTimerSettings(ctx, cl.sessionID, req.TimerType, req.FixedMinutes)
	if err != nil {
		log.Error("failed to update timer settings", "error", err)
		that.sendErrorResponse(cl, msg.Action, settingsFailureMessage(err))
	}

	return nil
}

func (that *Server) handleStartGame(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleStartGame")

	var req startGameRequest
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return fmt.Errorf("failed to unmarshal payload: %w", err)
		}
	}

	if err := that.rooms.StartGame(ctx, cl.sessionID, req.StartSettings); err != nil {
		log.Error("failed to start game", "error", err)
		that.sendErrorResponse(cl, msg.Action, startFailureMessage(err))
	}

	return nil
}

func (that *Server) handleSubmitWord(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleSubmitWord")

	var req submitWordRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	result, err := that.rooms.SubmitWord(ctx, cl.sessionID, req.Word, req.Path)
	if err != nil {
		reason, detail := rejectionReason(err)
		if reason == "" {
			log.Error("failed to submit word", "error", err)
			that.sendErrorResponse(cl, msg.Action, "failed to submit word")
			return nil
		}

		return that.sendMessage(cl, "word_rejected", wordRejectedResponse{
			Word:   req.Word,
			Reason: reason,
			Detail: detail,
		})
	}

	return that.sendMessage(cl, "word_accepted", result)
}

func (that *Server) handleUseAbility(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleUseAbility")

	var req useAbilityRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	result, err := that.rooms.UseAbility(ctx, cl.sessionID, usecase.Ability(req.Ability), usecase.AbilityParams{
		Position:  req.Position,
		NewLetter: req.Letter,
	})
	if err != nil {
		log.Error("failed to use ability", "ability", req.Ability, "error", err)
		that.sendErrorResponse(cl, msg.Action, abilityFailureMessage(err))
		return nil
	}

	return that.sendMessage(cl, "ability_result", result)
}

func (that *Server) handleVoteTimer(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleVoteTimer")

	err := that.rooms.VoteTimer(ctx, cl.sessionID)
	if errors.Is(err, apperror.ErrAlreadyVoted) {
		that.sendErrorResponse(cl, msg.Action, "you have already voted")
		return nil
	}
	if errors.Is(err, apperror.ErrNotVoting) {
		that.sendErrorResponse(cl, msg.Action, "voting is not open")
		return nil
	}
	if err != nil {
		log.Error("failed to vote", "error", err)
		that.sendErrorResponse(cl, msg.Action, "failed to vote")
	}

	return nil
}

func (that *Server) handlePlayerDone(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handlePlayerDone")

	if err := that.rooms.PlayerDone(ctx, cl.sessionID); err != nil {
		log.Error("failed to mark player done", "error", err)
		that.sendErrorResponse(cl, msg.Action, "round is not active")
	}

	return nil
}

func (that *Server) handleEndTurn(ctx context.Context, cl *client, msg *Message) error {
	log := that.logger.With("method", "handleEndTurn")

	err := that.rooms.EndTurn(ctx, cl.sessionID)
	if errors.Is(err, apperror.ErrNotYourTurn) {
		that.sendErrorResponse(cl, msg.Action, "it is not your turn")
		return nil
	}
	if err != nil {
		log.Error("failed to end turn", "error", err)
		that.sendErrorResponse(cl, msg.Action, "round is not active")
	}

	return nil
}

func (that *Server) handleTileSelection(ctx context.Context, cl *client, msg *Message) error {
	var req tileSelectionRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	// Presentation-only relay; failures are not worth a response frame.
	_ = that.rooms.HighlightTiles(ctx, cl.sessionID, req.Positions, req.Action)

	return nil
}

func (that *Server) handleRoomInfo(ctx context.Context, cl *client, msg *Message) error {
	info, err := that.rooms.GetRoomInfo(ctx, cl.sessionID)
	if err != nil {
		that.sendErrorResponse(cl, msg.Action, "you are not in a room")
		return nil
	}

	return that.sendMessage(cl, "room_info", info)
}

// rejectionReason maps a submission failure to a machine-readable reason for
// the word_rejected frame. Unexpected errors return an empty reason.
func rejectionReason(err error) (reason, detail string) {
	switch {
	case errors.Is(err, apperror.ErrNotAWord):
		return "not_a_word", "word is not in the dictionary"
	case errors.Is(err, apperror.ErrWordTooShort):
		return "too_short", "word is too short"
	case errors.Is(err, apperror.ErrWordTooLong):
		return "too_long", "word is too long"
	case errors.Is(err, apperror.ErrWordAlreadyPlayed):
		return "already_played", "you already played that word this round"
	case errors.Is(err, apperror.ErrInvalidPath):
		return "invalid_path", "tiles must form a chain of adjacent cells"
	case errors.Is(err, apperror.ErrBoardMismatch):
		return "board_mismatch", "path letters do not spell that word"
	case errors.Is(err, apperror.ErrNotYourTurn):
		return "not_your_turn", "it is not your turn"
	case errors.Is(err, apperror.ErrRoundOver):
		return "round_over", "the round has ended"
	case errors.Is(err, apperror.ErrGameOver):
		return "game_over", "the game is over"
	default:
		return "", ""
	}
}

func joinFailureMessage(err error) string {
	switch {
	case errors.Is(err, apperror.ErrRoomNotFound):
		return "room not found"
	case errors.Is(err, apperror.ErrRoomFull):
		return "room is full"
	case errors.Is(err, apperror.ErrGameInProgress):
		return "game is already in progress"
	default:
		return "failed to join room"
	}
}

func settingsFailureMessage(err error) string {
	switch {
	case errors.Is(err, apperror.ErrNotHost):
		return "only the host can change settings"
	case errors.Is(err, apperror.ErrGameInProgress):
		return "settings are locked once the game starts"
	default:
		return "failed to update settings"
	}
}

func startFailureMessage(err error) string {
	switch {
	case errors.Is(err, apperror.ErrNotHost):
		return "only the host can start the game"
	case errors.Is(err, apperror.ErrInsufficientPlayers):
		return "not enough players to start"
	case errors.Is(err, apperror.ErrGameInProgress):
		return "game is already in progress"
	default:
		return "failed to start game"
	}
}

func abilityFailureMessage(err error) string {
	switch {
	case errors.Is(err, apperror.ErrInsufficientGems):
		return "not enough gems"
	case errors.Is(err, apperror.ErrUnknownAbility):
		return "unknown ability"
	case errors.Is(err, apperror.ErrInvalidSwap):
		return "swap needs a valid tile position and letter"
	case errors.Is(err, apperror.ErrNoHintFound):
		return "no hint available on this board"
	default:
		return "failed to use ability"
	}
}
