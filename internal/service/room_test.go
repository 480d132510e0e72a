package service

import (
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/snake-arena-backend/internal/apperror"
	"github.com/rocketscienceinc/snake-arena-backend/internal/snake"
)

func newTestRoomService(t *testing.T) *RoomService {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	rooms := NewRoomService(logger, snake.DefaultConfig(), nil, nil)
	t.Cleanup(rooms.Close)

	return rooms
}

func TestRoomService_Join(t *testing.T) {
	t.Run("First join creates a room", func(t *testing.T) {
		// Given: an empty registry
		rooms := newTestRoomService(t)

		// When: one player joins
		room, player, err := rooms.Join(JoinRequest{PlayerName: "alice"})

		// Then: a room exists holding that player
		require.NoError(t, err)
		require.NotNil(t, room)
		assert.NotEmpty(t, player.ID)
		assert.Equal(t, 1, room.HumanCount())
		assert.Len(t, rooms.Rooms(), 1)
	})

	t.Run("Players pack into the first room with a vacancy", func(t *testing.T) {
		// Given: a registry with one partially filled room
		rooms := newTestRoomService(t)
		first, _, err := rooms.Join(JoinRequest{PlayerName: "alice"})
		require.NoError(t, err)

		// When: a second player joins
		second, _, err := rooms.Join(JoinRequest{PlayerName: "bob"})

		// Then: both share the same room
		require.NoError(t, err)
		assert.Equal(t, first.ID(), second.ID())
		assert.Len(t, rooms.Rooms(), 1)
	})

	t.Run("A full room overflows into a new one", func(t *testing.T) {
		// Given: a room filled to capacity
		rooms := newTestRoomService(t)

		capacity := snake.DefaultConfig().RoomCapacity
		var firstID string
		for i := 0; i < capacity; i++ {
			room, _, err := rooms.Join(JoinRequest{PlayerName: fmt.Sprintf("p%d", i)})
			require.NoError(t, err)
			firstID = room.ID()
		}

		// When: one more player joins
		overflow, _, err := rooms.Join(JoinRequest{PlayerName: "late"})

		// Then: they land in a second room
		require.NoError(t, err)
		assert.NotEqual(t, firstID, overflow.ID())
		assert.Len(t, rooms.Rooms(), 2)
		assert.Equal(t, 1, overflow.HumanCount())
	})

	t.Run("CPU games get a private room with a CPU opponent", func(t *testing.T) {
		// Given: an empty registry
		rooms := newTestRoomService(t)

		// When: a player requests a CPU game
		cpuRoom, _, err := rooms.Join(JoinRequest{PlayerName: "alice", IsCPUGame: true})
		require.NoError(t, err)

		// Then: the room holds one human and one CPU player
		assert.Equal(t, 1, cpuRoom.HumanCount())
		assert.Equal(t, 2, cpuRoom.PlayerCount())

		// And: the next multiplayer join never lands in it
		other, _, err := rooms.Join(JoinRequest{PlayerName: "bob"})
		require.NoError(t, err)
		assert.NotEqual(t, cpuRoom.ID(), other.ID())
	})
}

func TestRoomService_RemovePlayer(t *testing.T) {
	t.Run("Removing the last human tears the room down", func(t *testing.T) {
		// Given: a room with a single player
		rooms := newTestRoomService(t)
		room, player, err := rooms.Join(JoinRequest{PlayerName: "alice"})
		require.NoError(t, err)

		// When: that player leaves
		require.NoError(t, rooms.RemovePlayer(room.ID(), player.ID))

		// Then: the room is gone from the registry
		_, ok := rooms.Room(room.ID())
		assert.False(t, ok)
		assert.Empty(t, rooms.Rooms())
	})

	t.Run("The room survives while other humans remain", func(t *testing.T) {
		// Given: a room with two players
		rooms := newTestRoomService(t)
		room, alice, err := rooms.Join(JoinRequest{PlayerName: "alice"})
		require.NoError(t, err)
		_, _, err = rooms.Join(JoinRequest{PlayerName: "bob"})
		require.NoError(t, err)

		// When: one of them leaves
		require.NoError(t, rooms.RemovePlayer(room.ID(), alice.ID))

		// Then: the room stays up for the other
		_, ok := rooms.Room(room.ID())
		assert.True(t, ok)
		assert.Equal(t, 1, room.HumanCount())
	})

	t.Run("A CPU opponent does not keep an abandoned room alive", func(t *testing.T) {
		// Given: a CPU game
		rooms := newTestRoomService(t)
		room, player, err := rooms.Join(JoinRequest{PlayerName: "alice", IsCPUGame: true})
		require.NoError(t, err)

		// When: the human leaves
		require.NoError(t, rooms.RemovePlayer(room.ID(), player.ID))

		// Then: the room is torn down, CPU and all
		_, ok := rooms.Room(room.ID())
		assert.False(t, ok)
	})

	t.Run("An unknown room id is a hard error", func(t *testing.T) {
		rooms := newTestRoomService(t)

		err := rooms.RemovePlayer("no-such-room", "whoever")

		require.ErrorIs(t, err, apperror.ErrRoomNotFound)
	})
}

func TestRoomService_Sweep(t *testing.T) {
	t.Run("The sweep removes rooms that lost every human", func(t *testing.T) {
		// Given: a room emptied behind the registry's back
		rooms := newTestRoomService(t)
		room, player, err := rooms.Join(JoinRequest{PlayerName: "alice"})
		require.NoError(t, err)
		require.NoError(t, room.Leave(player.ID))

		require.Len(t, rooms.Rooms(), 1)

		// When: the sweep runs
		rooms.sweepEmptyRooms()

		// Then: the empty room is gone
		assert.Empty(t, rooms.Rooms())
	})

	t.Run("The periodic sweep fires on its own", func(t *testing.T) {
		// Given: a sweeping registry with an orphaned room
		rooms := newTestRoomService(t)
		room, player, err := rooms.Join(JoinRequest{PlayerName: "alice"})
		require.NoError(t, err)
		require.NoError(t, room.Leave(player.ID))

		rooms.StartSweep(10 * time.Millisecond)

		// Then: the room disappears shortly after
		assert.Eventually(t, func() bool {
			return len(rooms.Rooms()) == 0
		}, time.Second, 10*time.Millisecond)
	})
}
