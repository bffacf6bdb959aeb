package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/baiyoke1207/spellcast-backend/internal/entity"
)

var ErrSnapshotNotFound = errors.New("room snapshot not found")

// snapshotTTL - snapshots only exist so a late get_room_info can resync a
// client; stale rooms age out on their own.
const snapshotTTL = 24 * time.Hour

// RoomSnapshotRepository - the latest full state of every room, refreshed
// after each applied mutation.
type RoomSnapshotRepository interface {
	CreateOrUpdate(ctx context.Context, room *entity.Room) error
	GetByCode(ctx context.Context, code string) (*entity.Room, error)
	DeleteByCode(ctx context.Context, code string) error
}

type dbRoomSnapshot struct {
	client *redis.Client
}

func NewRoomSnapshotRepository(client *redis.Client) RoomSnapshotRepository {
	return &dbRoomSnapshot{
		client: client,
	}
}

func (that *dbRoomSnapshot) CreateOrUpdate(ctx context.Context, room *entity.Room) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	roomKey := "room:" + room.Code
	if err = that.client.Set(ctx, roomKey, roomJSON, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to set room snapshot: %w", err)
	}

	return nil
}

func (that *dbRoomSnapshot) GetByCode(ctx context.Context, code string) (*entity.Room, error) {
	roomKey := "room:" + code

	response, err := that.client.Get(ctx, roomKey).Result()

	if errors.Is(err, redis.Nil) {
		return nil, ErrSnapshotNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room snapshot by code: %w", err)
	}

	var existingRoom entity.Room
	if err = json.Unmarshal([]byte(response), &existingRoom); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &existingRoom, nil
}

func (that *dbRoomSnapshot) DeleteByCode(ctx context.Context, code string) error {
	roomKey := "room:" + code

	if err := that.client.Del(ctx, roomKey).Err(); err != nil {
		return fmt.Errorf("failed to delete room snapshot by code: %w", err)
	}

	return nil
}
