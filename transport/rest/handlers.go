package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/baiyoke1207/spellcast-backend/internal/apperror"
	"github.com/baiyoke1207/spellcast-backend/internal/entity"
)

type Handlers interface {
	PingHandler(w http.ResponseWriter, _ *http.Request)
	RoomHandler(w http.ResponseWriter, r *http.Request)
}

type roomService interface {
	GetRoomByCode(ctx context.Context, code string) (*entity.Room, error)
}

type handlers struct {
	logger *slog.Logger
	rooms  roomService
}

func NewHandlers(logger *slog.Logger, rooms roomService) Handlers {
	return &handlers{
		logger: logger,
		rooms:  rooms,
	}
}

func (that *handlers) PingHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("pong")); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
}

// RoomHandler - GET /rooms/{code}: a read-only room snapshot, mostly for
// lobby pages checking whether a code is joinable.
func (that *handlers) RoomHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "RoomHandler")

	code := mux.Vars(r)["code"]

	room, err := that.rooms.GetRoomByCode(r.Context(), code)
	if errors.Is(err, apperror.ErrRoomNotFound) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Error("failed to get room", "roomCode", code, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err = json.NewEncoder(w).Encode(room); err != nil {
		log.Error("failed to encode room", "roomCode", code, "error", err)
	}
}
