package mau

import "errors"

// Typed errors surfaced to adapters. Validation failures are synchronous and
// leave the game state untouched; no event is emitted for a rejected command.
var (
	// ErrNoGameInChat is returned when the addressed room has no game, or the
	// user is not part of any game.
	ErrNoGameInChat = errors.New("mau: no game in this chat")

	// ErrRoomExists is returned when creating a game in a room that already
	// has one.
	ErrRoomExists = errors.New("mau: room already has a game")

	// ErrLobbyClosed is returned when joining a room whose lobby is closed.
	ErrLobbyClosed = errors.New("mau: lobby is closed")

	// ErrAlreadyJoined is returned when a user is already a player in the game.
	ErrAlreadyJoined = errors.New("mau: user already joined")

	// ErrDeckEmpty is returned when a draw is requested but the draw pile plus
	// the reshuffleable discard cannot satisfy it.
	ErrDeckEmpty = errors.New("mau: deck is empty")

	// ErrNotEnoughPlayers is returned when starting a game below the minimum
	// player count.
	ErrNotEnoughPlayers = errors.New("mau: not enough players")

	// ErrNotYourTurn is returned when a command arrives from a player other
	// than the current one and no rule allows it.
	ErrNotYourTurn = errors.New("mau: not your turn")

	// ErrIllegalMove is returned for moves that are invalid in the current
	// state: a card that cannot cover the top, a color choice outside the
	// choose-color window, and so on.
	ErrIllegalMove = errors.New("mau: illegal move")

	// ErrGameNotStarted is returned for in-game commands before start.
	ErrGameNotStarted = errors.New("mau: game not started")

	// ErrGameAlreadyStarted is returned when starting a running game.
	ErrGameAlreadyStarted = errors.New("mau: game already started")

	// ErrUnknownRule is returned when setting or loading a rule key that is
	// not part of the enumerated rule set.
	ErrUnknownRule = errors.New("mau: unknown rule")
)
