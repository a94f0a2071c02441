// Package session multiplexes many concurrent rooms onto one engine: it owns
// the room registry, the user to room index, and the worker pool that fans
// journal events out to adapter handlers.
package session

import (
	"sync"

	"github.com/decred/slog"

	"github.com/maugame/mau/pkg/mau"
)

// Config holds manager construction options.
type Config struct {
	Log  slog.Logger    // defaults to slog.Disabled
	Sink mau.Sink       // journal sink shared by every room, may be nil
	Game mau.GameConfig // template for new games; Seed 0 keeps games independent
}

// Manager tracks one game per room and which room each user plays in. A user
// is in at most one room at a time: joining a second room leaves the first.
type Manager struct {
	mu         sync.RWMutex
	log        slog.Logger
	cfg        Config
	games      map[string]*mau.Game
	userToRoom map[string]string
}

// NewManager creates an empty room registry.
func NewManager(cfg Config) *Manager {
	if cfg.Log == nil {
		cfg.Log = slog.Disabled
	}
	return &Manager{
		log:        cfg.Log,
		cfg:        cfg,
		games:      make(map[string]*mau.Game),
		userToRoom: make(map[string]string),
	}
}

// Create starts a new lobby in a room with the owner seated. A room holds at
// most one game at a time.
func (m *Manager) Create(roomID string, owner mau.User) (*mau.Game, error) {
	if prev := m.roomOf(owner.ID); prev != "" && prev != roomID {
		if err := m.Leave(owner.ID); err != nil && err != mau.ErrNoGameInChat {
			return nil, err
		}
	}

	m.mu.Lock()
	if _, ok := m.games[roomID]; ok {
		m.mu.Unlock()
		return nil, mau.ErrRoomExists
	}
	journal := mau.NewJournal(roomID, m.cfg.Sink)
	g := mau.NewGame(journal, roomID, owner, m.cfg.Game)
	m.games[roomID] = g
	m.userToRoom[owner.ID] = roomID
	m.mu.Unlock()

	m.log.Infof("session: created room %s for %s", roomID, owner.ID)
	return g, nil
}

// Get returns the room's game.
func (m *Manager) Get(roomID string) (*mau.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[roomID]
	if !ok {
		return nil, mau.ErrNoGameInChat
	}
	return g, nil
}

// GameOf returns the game the user currently plays in.
func (m *Manager) GameOf(userID string) (*mau.Game, error) {
	m.mu.RLock()
	roomID, ok := m.userToRoom[userID]
	g := m.games[roomID]
	m.mu.RUnlock()
	if !ok || g == nil {
		return nil, mau.ErrNoGameInChat
	}
	return g, nil
}

// GetPlayer returns the game the user plays in together with their seat.
func (m *Manager) GetPlayer(userID string) (*mau.Game, *mau.Player, error) {
	g, err := m.GameOf(userID)
	if err != nil {
		return nil, nil, err
	}
	p := g.GetPlayer(userID)
	if p == nil {
		return nil, nil, mau.ErrNoGameInChat
	}
	return g, p, nil
}

// RoomOf returns the room the user currently plays in, or "".
func (m *Manager) RoomOf(userID string) string {
	return m.roomOf(userID)
}

func (m *Manager) roomOf(userID string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.userToRoom[userID]
}

// Join seats a user in a room's game. Joining while seated elsewhere leaves
// the previous room first.
func (m *Manager) Join(roomID string, user mau.User) (*mau.Player, error) {
	if prev := m.roomOf(user.ID); prev != "" && prev != roomID {
		if err := m.Leave(user.ID); err != nil && err != mau.ErrNoGameInChat {
			return nil, err
		}
	}

	g, err := m.Get(roomID)
	if err != nil {
		return nil, err
	}
	p, err := g.AddPlayer(user)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.userToRoom[user.ID] = roomID
	m.mu.Unlock()
	return p, nil
}

// Leave removes the user from their game. When fewer than two players remain
// the game ends and the room is torn down.
func (m *Manager) Leave(userID string) error {
	g, err := m.GameOf(userID)
	if err != nil {
		return err
	}
	return m.removeFrom(g, userID)
}

// Kick removes a user from a specific room, the owner-driven variant of
// Leave.
func (m *Manager) Kick(roomID, userID string) error {
	g, err := m.Get(roomID)
	if err != nil {
		return err
	}
	return m.removeFrom(g, userID)
}

func (m *Manager) removeFrom(g *mau.Game, userID string) error {
	if err := g.RemovePlayer(userID); err != nil {
		return err
	}
	m.mu.Lock()
	if m.userToRoom[userID] == g.RoomID() {
		delete(m.userToRoom, userID)
	}
	m.mu.Unlock()

	if g.PlayerCount() <= 1 {
		g.End()
		if err := m.Remove(g.RoomID()); err != nil {
			return err
		}
	}
	return nil
}

// Remove tears a room down: the game is dropped from the registry and every
// index entry pointing at the room is cleared. Adapters call it from their
// GAME_END handler.
func (m *Manager) Remove(roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[roomID]; !ok {
		return mau.ErrNoGameInChat
	}
	delete(m.games, roomID)
	for userID, room := range m.userToRoom {
		if room == roomID {
			delete(m.userToRoom, userID)
		}
	}
	m.log.Infof("session: removed room %s", roomID)
	return nil
}

// Rooms returns the ids of every room with a game.
func (m *Manager) Rooms() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.games))
	for roomID := range m.games {
		out = append(out, roomID)
	}
	return out
}

// Close ends every game and clears the registry.
func (m *Manager) Close() {
	m.mu.Lock()
	games := make([]*mau.Game, 0, len(m.games))
	for _, g := range m.games {
		games = append(games, g)
	}
	m.games = make(map[string]*mau.Game)
	m.userToRoom = make(map[string]string)
	m.mu.Unlock()

	for _, g := range games {
		g.End()
	}
}
