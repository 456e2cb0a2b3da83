// Package game implements a No-Limit Texas Hold'em table engine.
//
// The main type is Game, which owns one table's state and serialises every
// command (join, leave, start hand, act, check timeouts) behind a mutex.
//
// # Basic Usage
//
//	g := game.New(game.Config{SmallBlind: 10, BigBlind: 20, MaxPlayers: 6})
//	_ = g.Join(game.NewPlayer("alice", "Alice", 1000))
//	_ = g.Join(game.NewPlayer("bob", "Bob", 1000))
//	_ = g.StartHand()
//	_ = g.PerformAction("alice", game.ActionCall, 0)
//
// Engine activity is published synchronously on the game's event bus:
//
//	g.Subscribe(game.SubscriberFunc(func(e game.Event) {
//	    fmt.Println(e.EventType())
//	}))
//
// # Deterministic Testing
//
// A stacked deck fixes every card dealt and a mock clock drives timeouts:
//
//	deck := poker.NewStackedDeck(poker.MustParseCards("As Ks Qh Qd")...)
//	g := game.New(cfg, game.WithDeck(deck), game.WithClock(quartz.NewMock(t)))
//
// # Architecture
//
// Game delegates to small components that share a *GameState:
//   - RuleEngine: legal actions, action validation, street completion
//   - ActionHandler: moves chips and updates statuses
//   - RoundLifecycle: dealing, blinds, turn order and street transitions
//   - PayoutCalculator: side-pot layering, rake and odd chips at showdown
//   - TimeoutManager: decides when to force a check or fold
//   - TableManager: seating and the waiting list
package game
