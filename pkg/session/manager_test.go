package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maugame/mau/pkg/mau"
)

func testManager() (*Manager, *mau.MemorySink) {
	sink := &mau.MemorySink{}
	return NewManager(Config{
		Sink: sink,
		Game: mau.GameConfig{Seed: 5},
	}), sink
}

func TestCreateAndGet(t *testing.T) {
	m, sink := testManager()
	g, err := m.Create("room-1", mau.User{ID: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "room-1", g.RoomID())
	assert.Equal(t, "alice", g.OwnerID())
	assert.Equal(t, 1, g.PlayerCount())

	got, err := m.Get("room-1")
	require.NoError(t, err)
	assert.Same(t, g, got)

	_, err = m.Get("room-2")
	assert.ErrorIs(t, err, mau.ErrNoGameInChat)

	_, err = m.Create("room-1", mau.User{ID: "bob"})
	assert.ErrorIs(t, err, mau.ErrRoomExists)

	events := sink.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, mau.EventSessionStart, events[0].Kind)
	assert.Equal(t, "room-1", events[0].GameID)
}

func TestJoinTracksUserRoom(t *testing.T) {
	m, _ := testManager()
	_, err := m.Create("room-1", mau.User{ID: "alice"})
	require.NoError(t, err)

	p, err := m.Join("room-1", mau.User{ID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "bob", p.User.ID)
	assert.Equal(t, "room-1", m.RoomOf("bob"))

	g, err := m.GameOf("bob")
	require.NoError(t, err)
	assert.Equal(t, "room-1", g.RoomID())

	_, err = m.Join("room-1", mau.User{ID: "bob"})
	assert.ErrorIs(t, err, mau.ErrAlreadyJoined)

	_, err = m.Join("missing", mau.User{ID: "carol"})
	assert.ErrorIs(t, err, mau.ErrNoGameInChat)
}

func TestJoinSecondRoomLeavesFirst(t *testing.T) {
	m, _ := testManager()
	_, err := m.Create("room-1", mau.User{ID: "alice"})
	require.NoError(t, err)
	_, err = m.Create("room-2", mau.User{ID: "dave"})
	require.NoError(t, err)

	_, err = m.Join("room-1", mau.User{ID: "bob"})
	require.NoError(t, err)
	_, err = m.Join("room-1", mau.User{ID: "carol"})
	require.NoError(t, err)

	_, err = m.Join("room-2", mau.User{ID: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "room-2", m.RoomOf("bob"))

	g1, err := m.Get("room-1")
	require.NoError(t, err)
	assert.Nil(t, g1.GetPlayer("bob"))
	assert.Equal(t, 2, g1.PlayerCount())
}

func TestLeaveBelowTwoTearsRoomDown(t *testing.T) {
	m, sink := testManager()
	g, err := m.Create("room-1", mau.User{ID: "alice"})
	require.NoError(t, err)
	_, err = m.Join("room-1", mau.User{ID: "bob"})
	require.NoError(t, err)
	require.NoError(t, g.Start())

	require.NoError(t, m.Leave("bob"))
	assert.Equal(t, mau.StateEnd, g.State())
	_, err = m.Get("room-1")
	assert.ErrorIs(t, err, mau.ErrNoGameInChat)
	assert.Empty(t, m.RoomOf("alice"))

	kinds := []mau.EventKind{}
	for _, e := range sink.Events() {
		kinds = append(kinds, e.Kind)
	}
	assert.Contains(t, kinds, mau.EventGameEnd)
}

func TestLeaveKeepsBiggerGameRunning(t *testing.T) {
	m, _ := testManager()
	g, err := m.Create("room-1", mau.User{ID: "alice"})
	require.NoError(t, err)
	_, err = m.Join("room-1", mau.User{ID: "bob"})
	require.NoError(t, err)
	_, err = m.Join("room-1", mau.User{ID: "carol"})
	require.NoError(t, err)
	require.NoError(t, g.Start())

	require.NoError(t, m.Leave("bob"))
	assert.True(t, g.Started())
	assert.Equal(t, 2, g.PlayerCount())
	got, err := m.Get("room-1")
	require.NoError(t, err)
	assert.Same(t, g, got)
}

func TestKick(t *testing.T) {
	m, _ := testManager()
	_, err := m.Create("room-1", mau.User{ID: "alice"})
	require.NoError(t, err)
	_, err = m.Join("room-1", mau.User{ID: "bob"})
	require.NoError(t, err)
	_, err = m.Join("room-1", mau.User{ID: "carol"})
	require.NoError(t, err)

	require.NoError(t, m.Kick("room-1", "bob"))
	assert.Empty(t, m.RoomOf("bob"))
	assert.ErrorIs(t, m.Kick("room-1", "bob"), mau.ErrNoGameInChat)
	assert.ErrorIs(t, m.Kick("missing", "bob"), mau.ErrNoGameInChat)
}

func TestRemoveClearsIndex(t *testing.T) {
	m, _ := testManager()
	_, err := m.Create("room-1", mau.User{ID: "alice"})
	require.NoError(t, err)
	_, err = m.Join("room-1", mau.User{ID: "bob"})
	require.NoError(t, err)

	require.NoError(t, m.Remove("room-1"))
	assert.Empty(t, m.RoomOf("alice"))
	assert.Empty(t, m.RoomOf("bob"))
	assert.Empty(t, m.Rooms())
	assert.ErrorIs(t, m.Remove("room-1"), mau.ErrNoGameInChat)
}

func TestCloseEndsEverything(t *testing.T) {
	m, _ := testManager()
	g1, err := m.Create("room-1", mau.User{ID: "alice"})
	require.NoError(t, err)
	g2, err := m.Create("room-2", mau.User{ID: "bob"})
	require.NoError(t, err)

	m.Close()
	assert.Equal(t, mau.StateEnd, g1.State())
	assert.Equal(t, mau.StateEnd, g2.State())
	assert.Empty(t, m.Rooms())
}
