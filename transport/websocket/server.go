package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/baiyoke1207/spellcast-backend/internal/board"
	"github.com/baiyoke1207/spellcast-backend/internal/entity"
	"github.com/baiyoke1207/spellcast-backend/internal/pkg"
	"github.com/baiyoke1207/spellcast-backend/internal/usecase"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	sendBufferSize = 256

	sessionCookieName = "user_session"
	sessionCookieTTL  = 24 * time.Hour
)

type roomService interface {
	CreateRoom(ctx context.Context, sessionID, playerName string, maxPlayers int) (*entity.Room, *entity.Player, error)
	JoinRoom(ctx context.Context, sessionID, code, playerName string) (*entity.Room, *entity.Player, error)
	LeaveRoom(ctx context.Context, sessionID string) error
	Disconnect(ctx context.Context, sessionID string)
	UpdateTimerSettings(ctx context.Context, sessionID string, timerType entity.TimerType, fixedMinutes int) error

	StartGame(ctx context.Context, sessionID string, settings usecase.StartSettings) error
	SubmitWord(ctx context.Context, sessionID, word string, path []board.Coord) (*usecase.SubmissionResult, error)
	UseAbility(ctx context.Context, sessionID string, ability usecase.Ability, params usecase.AbilityParams) (*usecase.AbilityResult, error)
	VoteTimer(ctx context.Context, sessionID string) error
	PlayerDone(ctx context.Context, sessionID string) error
	EndTurn(ctx context.Context, sessionID string) error
	HighlightTiles(ctx context.Context, sessionID string, positions []board.Coord, action string) error

	GetRoomInfo(ctx context.Context, sessionID string) (*usecase.RoomInfo, error)
}

// client is one WebSocket connection together with its session identity and,
// once the player is seated, its room bindings.
type client struct {
	sessionID string
	playerID  string
	roomCode  string

	send chan []byte
}

// trySend queues a frame without blocking. Caller holds no guarantee of
// delivery; a full buffer drops the frame.
func (that *client) trySend(data []byte) {
	select {
	case that.send <- data:
	default:
	}
}

type Server struct {
	logger *slog.Logger
	rooms  roomService
	hub    *Hub

	upgrader websocket.Upgrader
	handlers map[string]func(ctx context.Context, cl *client, msg *Message) error
}

func New(logger *slog.Logger, rooms roomService, hub *Hub) *Server {
	server := &Server{
		logger: logger,
		rooms:  rooms,
		hub:    hub,

		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},

		handlers: make(map[string]func(context.Context, *client, *Message) error),
	}

	server.handlers["connect"] = server.handleConnect
	server.handlers["create_room"] = server.handleCreateRoom
	server.handlers["join_room"] = server.handleJoinRoom
	server.handlers["leave_room"] = server.handleLeaveRoom
	server.handlers["update_timer_settings"] = server.handleTimerSettings
	server.handlers["start_game"] = server.handleStartGame
	server.handlers["submit_word"] = server.handleSubmitWord
	server.handlers["use_ability"] = server.handleUseAbility
	server.handlers["vote_timer"] = server.handleVoteTimer
	server.handlers["player_done"] = server.handlePlayerDone
	server.handlers["end_turn"] = server.handleEndTurn
	server.handlers["player_tile_selection"] = server.handleTileSelection
	server.handlers["get_room_info"] = server.handleRoomInfo

	return server
}

// Start - starts the WebSocket server.
func (that *Server) Start(ctx context.Context, port string) error {
	serveMux := http.NewServeMux()
	serveMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		that.serveWS(ctx, w, r)
	})

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     serveMux,
		ReadTimeout: 10 * time.Second,
		IdleTimeout: 30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// serveWS - upgrades the connection and runs its read loop.
func (that *Server) serveWS(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "serveWS")

	sessionID := that.sessionID(writer, req)

	conn, err := that.upgrader.Upgrade(writer, req, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	cl := &client{
		sessionID: sessionID,
		send:      make(chan []byte, sendBufferSize),
	}

	log.Info("WebSocket connection established")

	go that.writePump(conn, cl)
	that.readPump(ctx, conn, cl)
}

// sessionID - reads the session cookie, minting a new session when the
// client arrives without one.
func (that *Server) sessionID(writer http.ResponseWriter, req *http.Request) string {
	log := that.logger.With("method", "sessionID")

	cookie, err := req.Cookie(sessionCookieName)
	if err != nil {
		cookie = &http.Cookie{
			Name:    sessionCookieName,
			Value:   pkg.GenerateNewSessionID(),
			Expires: time.Now().Add(sessionCookieTTL),
			Path:    "/ws",
		}
		http.SetCookie(writer, cookie)
		log.Info("session cookie not found, new one created")
	}

	return cookie.Value
}

// readPump - processes messages from the client until the connection drops,
// then releases the player's seat bindings.
func (that *Server) readPump(ctx context.Context, conn *websocket.Conn, cl *client) {
	log := that.logger.With("method", "readPump")

	defer func() {
		that.hub.Unbind(cl)
		that.rooms.Disconnect(ctx, cl.sessionID)
		close(cl.send)
		_ = conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("unexpected close", "error", err)
			}
			return
		}

		var message Message
		if err = json.Unmarshal(data, &message); err != nil {
			log.Error("failed to unmarshal message", "error", err)
			continue
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Warn("unknown action", "action", message.Action)
			that.sendErrorResponse(cl, message.Action, "unknown action")
			continue
		}

		if err = handler(ctx, cl, &message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// writePump - drains the client's send buffer onto the wire and keeps the
// connection alive with pings.
func (that *Server) writePump(conn *websocket.Conn, cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case data, ok := <-cl.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (that *Server) sendMessage(cl *client, action string, payload any) error {
	data, err := encodeEvent(action, payload)
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	cl.trySend(data)

	return nil
}

func (that *Server) sendErrorResponse(cl *client, action, errorMsg string) {
	if err := that.sendMessage(cl, "error", errorResponse{Action: action, Error: errorMsg}); err != nil {
		that.logger.Error("failed to send error response", "error", err)
	}
}
