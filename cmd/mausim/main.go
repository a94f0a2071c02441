// mausim plays full games against the engine with scripted players: a smoke
// harness for rule combinations and a demonstration of the adapter wiring.
package main

import (
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/decred/slog"
	"github.com/google/uuid"

	"github.com/maugame/mau/pkg/mau"
	"github.com/maugame/mau/pkg/session"
)

// maxMoves caps one game so a pathological rule combination cannot spin the
// simulator forever.
const maxMoves = 10000

func main() {
	var (
		rooms      int
		players    int
		seed       int64
		debugLevel string
		trace      bool
	)
	flag.IntVar(&rooms, "rooms", 1, "Number of rooms to simulate")
	flag.IntVar(&players, "players", 4, "Players per room")
	flag.Int64Var(&seed, "seed", 0, "Deterministic RNG seed (0 = random)")
	flag.StringVar(&debugLevel, "debuglevel", "info", "Logging level: trace, debug, info, warn, error")
	flag.BoolVar(&trace, "trace", false, "Dump final game state per room")
	flag.Parse()

	backend := slog.NewBackend(os.Stderr)
	log := backend.Logger("SIM")
	level, _ := slog.LevelFromString(debugLevel)
	log.SetLevel(level)

	if players < 2 {
		fmt.Fprintln(os.Stderr, "need at least 2 players per room")
		os.Exit(1)
	}

	processor := session.NewProcessor(log, 1024, 4)
	eventLog := backend.Logger("EVNT")
	eventLog.SetLevel(level)
	processor.Register(session.HandlerFunc(func(e mau.Event) {
		eventLog.Debugf("%s game=%s player=%s data=%q", e.Kind, e.GameID, e.PlayerID, e.Data)
	}))
	processor.Start()
	defer processor.Stop()

	mgr := session.NewManager(session.Config{
		Log:  log,
		Sink: processor,
	})
	defer mgr.Close()

	rng := rand.New(rand.NewSource(seed))
	if seed == 0 {
		rng = rand.New(rand.NewSource(int64(uuid.New().ID())))
	}

	for i := 0; i < rooms; i++ {
		roomID := fmt.Sprintf("room-%d", i)
		if err := runRoom(mgr, log, rng, roomID, players, trace); err != nil {
			log.Errorf("room %s failed: %v", roomID, err)
			os.Exit(1)
		}
	}
}

// runRoom builds one room, flips a random subset of rules on and plays the
// game to the end with legal scripted moves.
func runRoom(mgr *session.Manager, log slog.Logger, rng *rand.Rand, roomID string, players int, trace bool) error {
	ids := make([]string, players)
	for i := range ids {
		ids[i] = uuid.New().String()
	}
	g, err := mgr.Create(roomID, mau.User{ID: ids[0], Name: "bot-0"})
	if err != nil {
		return err
	}
	for i := 1; i < players; i++ {
		if _, err := mgr.Join(roomID, mau.User{ID: ids[i], Name: fmt.Sprintf("bot-%d", i)}); err != nil {
			return err
		}
	}

	for _, rule := range g.Rules().List() {
		if rule.Key == mau.RuleDebugCards {
			continue
		}
		if rng.Intn(3) == 0 {
			if err := g.SetRule(rule.Key, !rule.Active); err != nil {
				return err
			}
		}
	}
	log.Infof("room %s: %d players, rules %v", roomID, players, activeRules(g))

	if err := g.Start(); err != nil {
		return err
	}

	moves := 0
	for g.State() != mau.StateEnd {
		moves++
		if moves > maxMoves {
			log.Warnf("room %s: move cap reached, ending game", roomID)
			g.End()
			break
		}
		if err := playOne(g, rng); err != nil {
			if errors.Is(err, mau.ErrDeckEmpty) {
				log.Warnf("room %s: deck exhausted, ending game", roomID)
				g.End()
				break
			}
			return err
		}
	}

	log.Infof("room %s: finished after %d moves, winners=%d losers=%d scores=%v",
		roomID, moves, len(g.Winners()), len(g.Losers()), g.Scores())
	if trace {
		spew.Fdump(os.Stderr, g.Scores(), g.Winners(), g.Losers())
	}
	if err := mgr.Remove(roomID); err != nil && !errors.Is(err, mau.ErrNoGameInChat) {
		return err
	}
	return nil
}

// playOne makes one legal move for the current player.
func playOne(g *mau.Game, rng *rand.Rand) error {
	p := g.CurrentPlayer()
	if p == nil {
		g.End()
		return nil
	}
	id := p.User.ID

	switch g.State() {
	case mau.StateChooseColor:
		return g.ChooseColor(id, dominantColor(g, id, rng))

	case mau.StateTwistHand:
		var target string
		others := 0
		for _, q := range g.Players() {
			if q.User.ID == id {
				continue
			}
			others++
			if rng.Intn(others) == 0 {
				target = q.User.ID
			}
		}
		return g.TwistHand(id, target)

	case mau.StateShotgun:
		if rng.Intn(2) == 0 {
			return g.Shotgun(id)
		}
		return g.TakeCards(id)

	case mau.StateNext:
		if top, ok := g.Top(); ok &&
			top.Kind == mau.KindTakeFour && g.TakeCounter() > 0 && rng.Intn(3) == 0 {
			if err := g.CallBluff(id); err == nil {
				return nil
			}
		}
		sorted, err := g.CoverCards(id)
		if err != nil {
			return err
		}
		if len(sorted.Cover) > 0 {
			card := sorted.Cover[rng.Intn(len(sorted.Cover))]
			return g.PutCardID(id, card.String())
		}
		if !p.TookCard() {
			return g.TakeCards(id)
		}
		return g.NextTurn(id)

	default:
		return fmt.Errorf("unexpected state %s", g.State())
	}
}

// dominantColor picks the most frequent concrete color of the hand, falling
// back to a random one.
func dominantColor(g *mau.Game, userID string, rng *rand.Rand) mau.Color {
	hand, err := g.Hand(userID)
	if err != nil {
		return mau.ColorRed
	}
	counts := map[mau.Color]int{}
	best, bestCount := mau.ColorWild, 0
	for _, c := range hand {
		if c.IsWild() {
			continue
		}
		counts[c.Color]++
		if counts[c.Color] > bestCount {
			best, bestCount = c.Color, counts[c.Color]
		}
	}
	if best == mau.ColorWild {
		colors := []mau.Color{mau.ColorRed, mau.ColorYellow, mau.ColorGreen, mau.ColorBlue}
		return colors[rng.Intn(len(colors))]
	}
	return best
}

// activeRules renders the active rule keys for the room banner.
func activeRules(g *mau.Game) []mau.RuleKey {
	var keys []mau.RuleKey
	for _, rule := range g.Rules().List() {
		if rule.Active {
			keys = append(keys, rule.Key)
		}
	}
	return keys
}
