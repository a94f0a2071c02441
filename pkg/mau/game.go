package mau

import (
	"encoding/json"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/decred/slog"

	"github.com/maugame/mau/pkg/statemachine"
)

// State enumerates the phases of a game.
type State string

const (
	// StateLobby is the pre-start phase: players join and leave freely.
	StateLobby State = "LOBBY"
	// StateNext awaits a play or a draw from the current player.
	StateNext State = "NEXT"
	// StateChooseColor awaits a color choice after a wild.
	StateChooseColor State = "CHOOSE_COLOR"
	// StateTwistHand awaits the target of a hand swap.
	StateTwistHand State = "TWIST_HAND"
	// StateShotgun awaits a shoot-or-submit decision on a stacked counter.
	StateShotgun State = "SHOTGUN"
	// StateEnd is terminal.
	StateEnd State = "END"
)

// gameTransitions declares the legal state graph. Self-loops are implicit.
func gameTransitions() map[State][]State {
	return map[State][]State{
		StateLobby:       {StateNext, StateEnd},
		StateNext:        {StateChooseColor, StateTwistHand, StateShotgun, StateEnd},
		StateChooseColor: {StateNext, StateEnd},
		StateTwistHand:   {StateNext, StateEnd},
		StateShotgun:     {StateNext, StateEnd},
	}
}

// firstHandSize is the number of cards dealt to each player.
const firstHandSize = 7

// GameConfig holds construction options for a game.
type GameConfig struct {
	Log        slog.Logger // defaults to slog.Disabled
	MinPlayers int         // defaults to 2
	Seed       int64       // deterministic RNG seed, 0 for a fresh one
	CustomDeck []Card      // composition for the custom deck preset
}

// Game is one room's card game: the deck, the seated players, the rule
// matrix and the turn state machine. Every exported command locks the game,
// validates, mutates, appends its events and flushes them, so commands on one
// game are serialised and their event batches contiguous.
type Game struct {
	mu  sync.Mutex
	log slog.Logger
	cfg GameConfig
	rng *rand.Rand

	journal *Journal
	roomID  string
	ownerID string

	players   []*Player
	current   int
	direction int
	deck      *Deck
	rules     *Rules
	machine   *statemachine.Machine[State]

	takeCounter    int
	colorOverride  *Color  // pre-selected color awaiting confirmation
	bluffPlayer    *Player // player of the top TakeFour, challengeable
	shotgunCurrent int     // shared chamber for the single_shotgun rule
	pendingAdvance int     // seats the finished turn moves, set by card effects
	lastTopColor   Color   // top color before the card in flight was placed

	gameStart time.Time
	turnStart time.Time

	winners []*Player
	losers  []*Player
	scores  map[string]int

	open    bool
	started bool
}

// NewGame creates a game bound to a room, with the owner seated as its first
// player, and emits SESSION_START through the journal.
func NewGame(journal *Journal, roomID string, owner User, cfg GameConfig) *Game {
	if cfg.Log == nil {
		cfg.Log = slog.Disabled
	}
	if cfg.MinPlayers == 0 {
		cfg.MinPlayers = 2
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if journal == nil {
		journal = NewJournal(roomID, nil)
	}
	g := &Game{
		log:       cfg.Log,
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(seed)),
		journal:   journal,
		roomID:    roomID,
		ownerID:   owner.ID,
		players:   []*Player{{User: owner}},
		direction: 1,
		rules:     NewRules(),
		machine:   statemachine.New(StateLobby, gameTransitions()),
		scores:    make(map[string]int),
		open:      true,
	}
	g.emit(EventSessionStart, owner.ID, "")
	g.journal.Send()
	return g
}

// Accessors
// =========

// RoomID returns the room this game is bound to.
func (g *Game) RoomID() string { return g.roomID }

// OwnerID returns the user id of the room owner.
func (g *Game) OwnerID() string { return g.ownerID }

// State returns the current phase.
func (g *Game) State() State { return g.machine.Current() }

// Started reports whether the game is running.
func (g *Game) Started() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.started
}

// IsOpen reports whether the lobby admits new players.
func (g *Game) IsOpen() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.open
}

// Rules returns the game's rule matrix. Toggle flags through SetRule so the
// change is serialised with the game's commands.
func (g *Game) Rules() *Rules { return g.rules }

// PlayerCount returns the number of active players.
func (g *Game) PlayerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players)
}

// Players returns the active players in seat order.
func (g *Game) Players() []*Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Player, len(g.players))
	copy(out, g.players)
	return out
}

// CurrentPlayer returns the player whose turn it is, or nil before start.
func (g *Game) CurrentPlayer() *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started || len(g.players) == 0 {
		return nil
	}
	return g.players[g.current]
}

// GetPlayer returns the active player with the given user id, or nil.
func (g *Game) GetPlayer(userID string) *Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, p := g.findPlayer(userID)
	return p
}

// Top returns the current top card.
func (g *Game) Top() (Card, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.deck == nil {
		return Card{}, false
	}
	return g.deck.Top()
}

// TakeCounter returns the pending forced-draw amount.
func (g *Game) TakeCounter() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.takeCounter
}

// Direction returns +1 or -1.
func (g *Game) Direction() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.direction
}

// Winners returns the players that emptied their hands, in finishing order.
func (g *Game) Winners() []*Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Player, len(g.winners))
	copy(out, g.winners)
	return out
}

// Losers returns the eliminated players, in elimination order.
func (g *Game) Losers() []*Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Player, len(g.losers))
	copy(out, g.losers)
	return out
}

// Scores returns the hand cost each eliminated player was left holding.
func (g *Game) Scores() map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]int, len(g.scores))
	for id, score := range g.scores {
		out[id] = score
	}
	return out
}

// GameStart returns when the game started.
func (g *Game) GameStart() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gameStart
}

// TurnStart returns when the current turn started.
func (g *Game) TurnStart() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.turnStart
}

// Hand returns a sorted copy of a player's hand.
func (g *Game) Hand(userID string) ([]Card, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, p := g.findPlayer(userID)
	if p == nil {
		return nil, ErrNoGameInChat
	}
	return p.Hand(), nil
}

// CoverCards splits a player's hand into cards that cover the current top and
// cards that do not, under the current counter and rules.
func (g *Game) CoverCards(userID string) (SortedCards, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, p := g.findPlayer(userID)
	if p == nil {
		return SortedCards{}, ErrNoGameInChat
	}
	if !g.started {
		return SortedCards{}, ErrGameNotStarted
	}
	return p.coverCards(g), nil
}

// Lobby commands
// ==============

// SetRule toggles a rule flag. Mid-game toggles are permitted and take effect
// at the next transition that consults the flag.
func (g *Game) SetRule(key RuleKey, active bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rules.Set(key, active)
}

// SetDeckPreset selects the deck composition used at start.
func (g *Game) SetDeckPreset(p DeckPreset) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started {
		return ErrGameAlreadyStarted
	}
	return g.rules.SetPreset(p)
}

// Open admits new players to the room.
func (g *Game) Open() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = true
}

// Close stops admitting new players.
func (g *Game) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = false
}

// AddPlayer seats a new player. Joining a started game deals a first hand
// immediately.
func (g *Game) AddPlayer(user User) (*Player, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.machine.Is(StateEnd) || !g.open {
		return nil, ErrLobbyClosed
	}
	if _, existing := g.findPlayer(user.ID); existing != nil {
		return nil, ErrAlreadyJoined
	}
	p := &Player{User: user}
	if g.started {
		if err := g.dealFirstHand(p); err != nil {
			return nil, err
		}
	}
	g.players = append(g.players, p)
	g.log.Debugf("game %s: %s joined (%d players)", g.roomID, user.ID, len(g.players))
	g.emit(EventGameJoin, user.ID, "")
	g.journal.Send()
	return p, nil
}

// RemovePlayer removes a player: a voluntary leave or an owner kick. The hand
// returns to the discard pile, the turn passes on if it was theirs, and the
// game ends once fewer than two active players remain.
func (g *Game) RemovePlayer(userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx, p := g.findPlayer(userID)
	if p == nil {
		return ErrNoGameInChat
	}
	won := g.started && len(p.hand) == 0
	wasCurrent := g.started && idx == g.current
	if wasCurrent {
		g.resolveColorWindow(p)
	}
	g.removeActive(idx, won)
	if g.started && wasCurrent {
		g.advance(0)
	}
	g.journal.Send()
	return nil
}

// Start shuffles the seats, builds the deck from the selected preset, picks
// the opening number card, deals the hands and hands the first turn to a
// random player.
func (g *Game) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.started || g.machine.Is(StateEnd) {
		return ErrGameAlreadyStarted
	}
	if len(g.players) < g.cfg.MinPlayers {
		return ErrNotEnoughPlayers
	}

	composition, err := Composition(g.rules.Preset(), g.cfg.CustomDeck)
	if err != nil {
		return err
	}
	g.deck = NewDeck(composition, g.rng)
	if err := g.placeStartCard(composition); err != nil {
		g.deck = nil
		return err
	}
	g.rng.Shuffle(len(g.players), func(i, j int) {
		g.players[i], g.players[j] = g.players[j], g.players[i]
	})
	for _, p := range g.players {
		p.hand = nil
		if err := g.dealFirstHand(p); err != nil {
			for _, q := range g.players {
				q.hand = nil
			}
			g.deck = nil
			return err
		}
	}

	g.takeCounter = 0
	g.direction = 1
	g.shotgunCurrent = 0
	g.current = g.rng.Intn(len(g.players))
	g.started = true
	g.gameStart = time.Now()
	g.turnStart = g.gameStart
	g.setState(StateNext)

	top, _ := g.deck.Top()
	g.log.Infof("game %s: started with %d players, top %s", g.roomID, len(g.players), top)
	g.emit(EventGameStart, g.ownerID, top.String())
	g.emit(EventGameTurn, g.players[g.current].User.ID, "")
	g.journal.Send()
	return nil
}

// End force-ends the game: remaining active players are recorded as losers
// and GAME_END is emitted. Idempotent.
func (g *Game) End() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.machine.Is(StateEnd) {
		return
	}
	g.endGame()
	g.journal.Send()
}

// Turn commands
// =============

// PutCard plays the card at the given hand index of the player.
func (g *Game) PutCard(userID string, index int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.putCard(userID, func(p *Player) int { return index })
}

// PutCardID plays the first card in hand matching the compact identity
// string, the form adapters receive from inline keyboards.
func (g *Game) PutCardID(userID, cardID string) error {
	card, err := ParseCard(cardID)
	if err != nil {
		return ErrIllegalMove
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.putCard(userID, func(p *Player) int {
		for i, c := range p.hand {
			if c == card {
				return i
			}
		}
		return -1
	})
}

func (g *Game) putCard(userID string, pick func(*Player) int) error {
	if !g.started {
		return ErrGameNotStarted
	}
	idx, p := g.findPlayer(userID)
	if p == nil {
		return ErrNoGameInChat
	}
	if idx != g.current {
		return ErrNotYourTurn
	}
	if !g.machine.Is(StateNext) {
		return ErrIllegalMove
	}
	card, ok := p.removeAt(pick(p))
	if !ok {
		return ErrIllegalMove
	}
	if err := g.processTurn(idx, card); err != nil {
		p.hand = append(p.hand, card)
		return err
	}
	g.journal.Send()
	return nil
}

// TakeCards resolves a draw: the pending counter, a take-until-cover run or a
// single card. With a shotgun rule active and more than two cards pending the
// player is first offered the revolver instead.
func (g *Game) TakeCards(userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started {
		return ErrGameNotStarted
	}
	_, p, err := g.actingPlayer(userID)
	if err != nil {
		return err
	}
	if s := g.machine.Current(); s != StateNext && s != StateShotgun {
		return ErrIllegalMove
	}

	pending := g.takeCounter
	if g.rules.Active(RuleTakeUntilCover) && pending == 0 {
		pending = g.deck.CountUntilCover(g)
	}
	// One voluntary draw per turn. Forced draws are always honored.
	if pending == 0 && p.tookCard {
		return ErrIllegalMove
	}
	shotgunable := g.rules.Active(RuleShotgun) || g.rules.Active(RuleSingleShotgun)
	if shotgunable && pending > 2 && !g.machine.Is(StateShotgun) {
		g.takeCounter = pending
		g.setState(StateShotgun)
		g.emit(EventGameState, p.User.ID, "shotgun")
		g.journal.Send()
		return nil
	}

	stacked := g.takeCounter > 0
	n := pending
	if n == 0 {
		n = 1
	}
	cards, err := g.deck.Take(n)
	if err != nil {
		return err
	}
	p.addCards(cards)
	g.takeCounter = 0
	g.bluffPlayer = nil
	p.tookCard = true
	g.log.Debugf("game %s: %s takes %d cards", g.roomID, p.User.ID, n)
	g.emit(EventGameTake, p.User.ID, strconv.Itoa(n))

	top, _ := g.deck.Top()
	if stacked && (top.Kind == KindTake || top.Kind == KindTakeFour) {
		g.advance(1)
	} else {
		// A voluntary draw keeps the turn: the player may play the card they
		// just took, or pass.
		g.setState(StateNext)
	}
	g.journal.Send()
	g.checkDeckDrained()
	return nil
}

// ChooseColor resolves the choose-color window after a wild.
func (g *Game) ChooseColor(userID string, color Color) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started {
		return ErrGameNotStarted
	}
	idx, p := g.findPlayer(userID)
	if p == nil {
		return ErrNoGameInChat
	}
	if idx != g.current {
		return ErrNotYourTurn
	}
	if !g.machine.Is(StateChooseColor) || color == ColorWild {
		return ErrIllegalMove
	}
	g.deck.PaintTop(color)
	g.colorOverride = nil
	g.emit(EventSelectColor, p.User.ID, color.String())
	g.advance(g.pendingAdvance)
	g.journal.Send()
	return nil
}

// CallBluff challenges the player of the top TakeFour. A caught bluffer draws
// the counter; a wrong challenge costs the counter plus two.
func (g *Game) CallBluff(userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started {
		return ErrGameNotStarted
	}
	idx, p := g.findPlayer(userID)
	if p == nil {
		return ErrNoGameInChat
	}
	if idx != g.current {
		return ErrNotYourTurn
	}
	top, ok := g.deck.Top()
	if !ok || !g.machine.Is(StateNext) ||
		top.Kind != KindTakeFour || g.takeCounter == 0 || g.bluffPlayer == nil {
		return ErrIllegalMove
	}

	accused := g.bluffPlayer
	if accused.bluffing {
		cards, err := g.deck.Take(g.takeCounter)
		if err != nil {
			return err
		}
		accused.addCards(cards)
		g.takeCounter = 0
		g.emit(EventGameBluff, p.User.ID, "true;"+strconv.Itoa(len(cards)))
		g.emit(EventGameTake, accused.User.ID, strconv.Itoa(len(cards)))
	} else {
		n := g.takeCounter + 2
		cards, err := g.deck.Take(n)
		if err != nil {
			return err
		}
		p.addCards(cards)
		g.takeCounter = 0
		p.tookCard = true
		g.emit(EventGameBluff, p.User.ID, "false;"+strconv.Itoa(n))
		g.emit(EventGameTake, p.User.ID, strconv.Itoa(n))
	}
	g.bluffPlayer = nil
	g.advance(1)
	g.journal.Send()
	return nil
}

// Shotgun spins the revolver instead of drawing the stacked counter. A miss
// grows the counter by half and passes the offer on; a hit eliminates the
// player.
func (g *Game) Shotgun(userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started {
		return ErrGameNotStarted
	}
	idx, p, err := g.actingPlayer(userID)
	if err != nil {
		return err
	}
	// Being in SHOTGUN is authorization enough: the state is only reachable
	// with a shotgun rule active, and a mid-window toggle must not strand the
	// player.
	if !g.machine.Is(StateShotgun) {
		return ErrIllegalMove
	}

	chamber := &p.shotgunCurrent
	if g.rules.Active(RuleSingleShotgun) {
		chamber = &g.shotgunCurrent
	}
	*chamber++
	fired := g.rng.Intn(8) < *chamber
	g.log.Debugf("game %s: %s shoots, chamber %d/8, fired=%v",
		g.roomID, p.User.ID, *chamber, fired)
	if !fired {
		g.takeCounter = int(math.Round(float64(g.takeCounter) * 1.5))
		g.advance(1)
		g.setState(StateShotgun)
		g.emit(EventGameState, g.players[g.current].User.ID, "shotgun")
	} else {
		g.removeActive(idx, false)
		if g.started {
			g.advance(0)
		}
	}
	g.journal.Send()
	return nil
}

// TwistHand swaps the current player's hand with a chosen target after a
// seven, resolving the TWIST_HAND state.
func (g *Game) TwistHand(userID, targetID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started {
		return ErrGameNotStarted
	}
	idx, p := g.findPlayer(userID)
	if p == nil {
		return ErrNoGameInChat
	}
	if idx != g.current {
		return ErrNotYourTurn
	}
	if !g.machine.Is(StateTwistHand) {
		return ErrIllegalMove
	}
	targetIdx, target := g.findPlayer(targetID)
	if target == nil {
		return ErrNoGameInChat
	}
	if targetIdx == idx {
		return ErrIllegalMove
	}
	p.hand, target.hand = target.hand, p.hand
	g.emit(EventSelectPlayer, p.User.ID, targetID)
	g.advance(g.pendingAdvance)
	g.journal.Send()
	return nil
}

// NextTurn passes the turn. A player may pass after drawing; with a
// pre-selected color pending it accepts the pre-selection. An empty userID is
// an engine-internal advance.
func (g *Game) NextTurn(userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started {
		return ErrGameNotStarted
	}
	if userID != "" {
		idx, p := g.findPlayer(userID)
		if p == nil {
			return ErrNoGameInChat
		}
		if idx != g.current {
			return ErrNotYourTurn
		}
	}
	switch g.machine.Current() {
	case StateNext:
	case StateChooseColor:
		if g.colorOverride == nil {
			return ErrIllegalMove
		}
		g.colorOverride = nil
	default:
		return ErrIllegalMove
	}
	g.advance(1)
	g.journal.Send()
	return nil
}

// SkipPlayer penalises an unresponsive current player: one extra card on the
// counter, a forced draw and the turn passes. Driven by the room owner.
func (g *Game) SkipPlayer() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started {
		return ErrGameNotStarted
	}
	p := g.players[g.current]
	n := g.takeCounter + 1
	cards, err := g.deck.Take(n)
	if err != nil {
		return err
	}
	p.addCards(cards)
	g.takeCounter = 0
	g.emit(EventGameTake, p.User.ID, strconv.Itoa(n))
	g.advance(1)
	g.journal.Send()
	return nil
}

// SetCurrentPlayer reassigns the turn, the primitive behind ahead_of_curve
// interception.
func (g *Game) SetCurrentPlayer(userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.started {
		return ErrGameNotStarted
	}
	idx, p := g.findPlayer(userID)
	if p == nil {
		return ErrNoGameInChat
	}
	g.current = idx
	return nil
}

// Internals. Every helper below assumes the game lock is held.
// ============================================================

// emit appends an event to the journal without flushing it.
func (g *Game) emit(kind EventKind, playerID, data string) {
	g.journal.Add(kind, playerID, data)
}

// setState transitions the machine. An undeclared transition is an engine
// bug, not a user error.
func (g *Game) setState(s State) {
	if err := g.machine.Transition(s); err != nil {
		panic(err)
	}
}

func (g *Game) findPlayer(userID string) (int, *Player) {
	for i, p := range g.players {
		if p.User.ID == userID {
			return i, p
		}
	}
	return -1, nil
}

// actingPlayer resolves the player a draw-side command acts for. With the
// ahead_of_curve rule any player may absorb a pending counter, which moves
// the turn to them first.
func (g *Game) actingPlayer(userID string) (int, *Player, error) {
	idx, p := g.findPlayer(userID)
	if p == nil {
		return -1, nil, ErrNoGameInChat
	}
	if idx != g.current {
		if !g.rules.Active(RuleAheadOfCurve) || g.takeCounter == 0 {
			return -1, nil, ErrNotYourTurn
		}
		g.current = idx
	}
	return idx, p, nil
}

func (g *Game) wrap(i int) int {
	n := len(g.players)
	return ((i % n) + n) % n
}

// advance moves the turn n seats in the play direction and opens the new
// player's turn. n of zero re-opens the turn for the seat the current index
// already points at, which is how removals hand the turn to the successor.
func (g *Game) advance(n int) {
	for i := 0; i < n; i++ {
		g.current = g.wrap(g.current + g.direction)
	}
	g.finishTurn()
}

func (g *Game) finishTurn() {
	p := g.players[g.current]
	p.tookCard = false
	g.turnStart = time.Now()
	g.setState(StateNext)
	g.emit(EventGameTurn, p.User.ID, "")
}

// dealFirstHand draws the opening hand for one player. Under debug_cards the
// hand is a fixed set, so tests can script exact situations.
func (g *Game) dealFirstHand(p *Player) error {
	if g.rules.Active(RuleDebugCards) {
		p.hand = debugHand()
		return nil
	}
	cards, err := g.deck.Take(firstHandSize)
	if err != nil {
		return err
	}
	p.addCards(cards)
	return nil
}

// placeStartCard opens the discard pile with a number card, returning wilds
// and action cards to the pile. A composition without numbers opens with
// whatever comes up first.
func (g *Game) placeStartCard(composition []Card) error {
	hasNumber := false
	for _, c := range composition {
		if c.Kind == KindNumber {
			hasNumber = true
			break
		}
	}
	var rejected []Card
	for {
		c, err := g.deck.TakeOne()
		if err != nil {
			return err
		}
		if !hasNumber || c.Kind == KindNumber {
			g.deck.Put(c)
			break
		}
		rejected = append(rejected, c)
	}
	for _, c := range rejected {
		g.deck.putBottomDraw(c)
	}
	g.deck.Shuffle()
	return nil
}

// processTurn applies a played card: cover check, placement, the card's own
// effect, the rule-conditioned extras and the turn hand-off.
func (g *Game) processTurn(idx int, card Card) error {
	p := g.players[idx]
	top, ok := g.deck.Top()
	if !ok || !card.CanCover(top, g) {
		return ErrIllegalMove
	}
	if card.Kind == KindTakeFour {
		// The bluff predicate looks at the hand left behind and the color
		// that was on top before the +4 landed.
		p.bluffing = p.holdsColor(top.Color)
	}
	g.lastTopColor = top.Color
	g.bluffPlayer = nil
	g.deck.Put(card)
	g.pendingAdvance = 1
	g.log.Debugf("game %s: %s plays %s on %s", g.roomID, p.User.ID, card, top)
	behaviors[card.Kind].play(g, p, card)

	if card.Kind == KindNumber && card.Value == 0 &&
		g.rules.Active(RuleRotateCards) && len(p.hand) > 0 {
		g.rotateHands(p)
	}
	if card.Kind == KindNumber && card.Value == 7 &&
		g.rules.Active(RuleTwistHand) && len(p.hand) > 0 {
		g.setState(StateTwistHand)
		g.emit(EventGameState, p.User.ID, "twist_hand")
	}

	switch len(p.hand) {
	case 1:
		g.emit(EventGameUno, p.User.ID, "")
	case 0:
		g.resolveWin(idx)
		return nil
	}
	if g.machine.Is(StateNext) {
		g.advance(g.pendingAdvance)
	}
	return nil
}

// enterChooseColor resolves what happens to the top color after a wild,
// per the color rule precedence: random_color over auto_choose_color over
// choose_random_color over the interactive window. With wild_color off the
// wild inherits the color it landed on and no window opens.
func (g *Game) enterChooseColor(p *Player) {
	if !g.rules.Active(RuleWildColor) {
		g.deck.PaintTop(g.lastTopColor)
		return
	}
	switch {
	case g.rules.Active(RuleRandomColor):
		color := chooseableColors[g.rng.Intn(len(chooseableColors))]
		g.deck.PaintTop(color)
		g.emit(EventSelectColor, p.User.ID, color.String())
	case g.rules.Active(RuleAutoChooseColor):
		color := p.mostFrequentColor(g)
		g.deck.PaintTop(color)
		g.emit(EventSelectColor, p.User.ID, color.String())
	case g.rules.Active(RuleChooseRandomColor):
		color := chooseableColors[g.rng.Intn(len(chooseableColors))]
		g.deck.PaintTop(color)
		g.colorOverride = &color
		g.setState(StateChooseColor)
		g.emit(EventSelectColor, p.User.ID, color.String())
		g.emit(EventGameState, p.User.ID, "choose_color")
	default:
		g.setState(StateChooseColor)
		g.emit(EventGameState, p.User.ID, "choose_color")
	}
}

// rotateHands passes every hand one seat along the play direction.
func (g *Game) rotateHands(by *Player) {
	hands := make([][]Card, len(g.players))
	for i, p := range g.players {
		hands[i] = p.hand
	}
	for i := range g.players {
		g.players[g.wrap(i+g.direction)].hand = hands[i]
	}
	g.emit(EventGameRotate, by.User.ID, "")
}

// resolveWin retires a player whose hand just emptied. A pending color choice
// resolves randomly, the winning TakeFour stays on the counter but is not
// challengeable, and the turn settles on the seat the played card pointed at.
func (g *Game) resolveWin(idx int) {
	p := g.players[idx]
	g.resolveColorWindow(p)
	g.bluffPlayer = nil
	extra := g.pendingAdvance - 1
	g.removeActive(idx, true)
	if !g.started {
		return
	}
	g.advance(extra)
}

// resolveColorWindow closes a pending color choice with a random color when
// the chooser leaves play before resolving it.
func (g *Game) resolveColorWindow(p *Player) {
	if !g.machine.Is(StateChooseColor) {
		return
	}
	color := chooseableColors[g.rng.Intn(len(chooseableColors))]
	g.deck.PaintTop(color)
	g.colorOverride = nil
	g.emit(EventSelectColor, p.User.ID, color.String())
	g.setState(StateNext)
}

// removeActive takes a player out of the active list, records them as winner
// or loser, returns a loser's hand to the discard pile unless they are the
// last player, fixes the current index and ends the game below two actives.
// A pending challenge against the player dies with them.
func (g *Game) removeActive(idx int, won bool) {
	p := g.players[idx]
	if g.bluffPlayer == p {
		g.bluffPlayer = nil
	}
	switch {
	case won:
		g.winners = append(g.winners, p)
		g.emit(EventGameLeave, p.User.ID, "win")
	case g.started:
		g.losers = append(g.losers, p)
		g.scores[p.User.ID] = p.HandCost()
		if len(g.players) > 1 {
			for _, c := range p.hand {
				g.deck.PutUnder(c)
			}
		}
		p.hand = nil
		g.emit(EventGameLeave, p.User.ID, "lose")
	default:
		// A lobby leave carries no result.
		g.emit(EventGameLeave, p.User.ID, "")
	}
	g.players = append(g.players[:idx], g.players[idx+1:]...)

	n := len(g.players)
	if n == 0 {
		g.endGame()
		return
	}
	switch {
	case idx < g.current:
		g.current--
	case idx == g.current:
		if g.direction > 0 {
			g.current = idx % n
		} else {
			g.current = ((idx - 1) + n) % n
		}
	case g.current >= n:
		g.current = 0
	}
	if g.started && n <= 1 {
		g.endGame()
	}
}

// endGame retires the remaining active players as losers, in seat order, and
// emits GAME_END with the final score tally.
func (g *Game) endGame() {
	if g.started {
		for _, p := range g.players {
			g.losers = append(g.losers, p)
			g.scores[p.User.ID] = p.HandCost()
		}
	}
	g.players = g.players[:0]
	g.current = 0
	g.started = false
	g.setState(StateEnd)
	data, _ := json.Marshal(g.scores)
	g.log.Infof("game %s: ended, %d winners, %d losers",
		g.roomID, len(g.winners), len(g.losers))
	g.emit(EventGameEnd, "", string(data))
}

// checkDeckDrained logs when the piles run dry after a draw; the game keeps
// going and the counter refills the deck through later plays.
func (g *Game) checkDeckDrained() {
	if g.deck != nil && g.deck.DrawCount() == 0 && g.deck.DiscardCount() <= 1 {
		g.log.Warnf("game %s: deck drained", g.roomID)
	}
}
