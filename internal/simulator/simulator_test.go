package simulator

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/internal/config"
	"github.com/lox/holdem-engine/internal/game"
	"github.com/lox/holdem-engine/internal/store"
)

func testTable(name string) config.TableConfig {
	return config.TableConfig{
		Name:          name,
		SmallBlind:    10,
		BigBlind:      20,
		MaxPlayers:    6,
		ActionTimeout: "0s",
		StartingStack: 2000,
		Betting:       config.BettingNoLimit,
	}
}

func testBots(strategies ...string) []config.BotConfig {
	bots := make([]config.BotConfig, len(strategies))
	for i, s := range strategies {
		bots[i] = config.BotConfig{Name: s, Strategy: s}
	}
	return bots
}

func TestRunPlaysEveryTable(t *testing.T) {
	t.Parallel()

	repo := store.NewMemory()
	var out bytes.Buffer
	sim := New(Config{
		Tables:     []config.TableConfig{testTable("alpha"), testTable("beta")},
		Bots:       testBots("call", "random", "aggressive", "chart"),
		Hands:      40,
		Copies:     2,
		Seed:       7,
		Rebuy:      true,
		Repository: repo,
		Output:     &out,
	})
	assert.Equal(t, int64(7), sim.Seed())

	res, err := sim.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Tables, 4)

	names := make([]string, 0, len(res.Tables))
	for _, tr := range res.Tables {
		names = append(names, tr.Name)
		assert.Equal(t, 40, tr.Hands, tr.Name)
		assert.Len(t, tr.Stats, 4)

		snap, err := repo.Load(context.Background(), tr.GameID)
		require.NoError(t, err, "table %s saved", tr.Name)
		assert.Equal(t, 40, snap.HandNumber)
		assert.Equal(t, game.PhaseHandEnded, snap.Phase)
	}
	assert.Equal(t, []string{"alpha-1", "alpha-2", "beta-1", "beta-2"}, names)

	require.Len(t, res.Players, 4)
	var net float64
	for name, st := range res.Players {
		assert.NoError(t, st.Validate(), name)
		assert.Equal(t, 160, st.Hands, name)
		net += st.SumBB
	}
	assert.InDelta(t, 0, net, 1e-9, "without rake every chip won is a chip lost")

	history := out.String()
	assert.Contains(t, history, "[alpha-1]")
	assert.Contains(t, history, "[beta-2]")
	assert.Contains(t, history, "posts small blind $10")
	assert.Contains(t, history, "Complete")
}

func TestRunIsReproducible(t *testing.T) {
	t.Parallel()

	run := func() *Results {
		res, err := New(Config{
			Tables: []config.TableConfig{testTable("main")},
			Bots:   testBots("random", "aggressive", "call"),
			Hands:  30,
			Copies: 3,
			Seed:   99,
			Rebuy:  true,
		}).Run(context.Background())
		require.NoError(t, err)
		return res
	}

	a, b := run(), run()
	assert.Equal(t, a.Players, b.Players)
	for i := range a.Tables {
		assert.Equal(t, a.Tables[i].Stats, b.Tables[i].Stats)
	}
}

func TestRunStopsWhenTableBreaks(t *testing.T) {
	t.Parallel()

	tc := testTable("short")
	tc.StartingStack = 100
	res, err := New(Config{
		Tables: []config.TableConfig{tc},
		Bots:   testBots("aggressive", "call"),
		Hands:  1000,
		Seed:   3,
	}).Run(context.Background())
	require.NoError(t, err)

	tr := res.Tables[0]
	assert.Less(t, tr.Hands, 1000)
	assert.Positive(t, tr.Hands)
	assert.Equal(t, tr.Hands, tr.Stats["aggressive"].Hands)
	assert.InDelta(t, 0, tr.Stats["aggressive"].SumBB+tr.Stats["call"].SumBB, 1e-9)
}

func TestRunWithRake(t *testing.T) {
	t.Parallel()

	tc := testTable("raked")
	tc.Rake = &config.RakeConfig{Percent: 0.05}
	res, err := New(Config{
		Tables: []config.TableConfig{tc},
		Bots:   testBots("call", "call"),
		Hands:  20,
		Seed:   11,
	}).Run(context.Background())
	require.Error(t, err, "two bots with one name clash")
	assert.Nil(t, res)

	bots := []config.BotConfig{
		{Name: "c1", Strategy: "call"},
		{Name: "c2", Strategy: "call"},
		{Name: "c3", Strategy: "call"},
	}
	res, err = New(Config{Tables: []config.TableConfig{tc}, Bots: bots, Hands: 20, Seed: 11}).Run(context.Background())
	require.NoError(t, err)

	var net float64
	for _, st := range res.Players {
		net += st.SumBB
	}
	assert.Negative(t, net, "calling stations see showdowns and pay rake")
}

func TestRunAbsentBotsTimeOut(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clock := quartz.NewMock(t)
	tc := testTable("slow")
	tc.ActionTimeout = "1s"
	sim := New(Config{
		Tables:       []config.TableConfig{tc},
		Bots:         testBots("call", "fold"),
		Absent:       []string{"fold"},
		Hands:        4,
		Seed:         5,
		Clock:        clock,
		PollInterval: 100 * time.Millisecond,
	})

	type outcome struct {
		res *Results
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := sim.Run(ctx)
		done <- outcome{res, err}
	}()

	for {
		select {
		case o := <-done:
			require.NoError(t, o.err)
			assert.Equal(t, 4, o.res.Tables[0].Hands)
			assert.Equal(t, 4, o.res.Players["fold"].Hands)
			return
		case <-ctx.Done():
			t.Fatal("simulation did not finish")
		default:
			clock.Advance(100 * time.Millisecond).MustWait(ctx)
		}
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	_, err := New(Config{Tables: []config.TableConfig{testTable("t")}, Bots: testBots("call", "fold")}).Run(ctx)
	assert.ErrorContains(t, err, "hands must be positive")

	_, err = New(Config{Hands: 1}).Run(ctx)
	assert.ErrorContains(t, err, "no tables")

	_, err = New(Config{
		Tables: []config.TableConfig{testTable("t")},
		Bots:   testBots("call", "fold"),
		Absent: []string{"fold"},
		Hands:  1,
	}).Run(ctx)
	assert.ErrorContains(t, err, "needs an action timeout")

	_, err = New(Config{
		Tables: []config.TableConfig{testTable("t")},
		Bots:   []config.BotConfig{{Name: "x", Strategy: "bluff"}},
		Hands:  1,
	}).Run(ctx)
	assert.ErrorContains(t, err, "unknown bot strategy")
}

func TestRunWithOneBotEndsImmediately(t *testing.T) {
	t.Parallel()

	res, err := New(Config{
		Tables: []config.TableConfig{testTable("lonely")},
		Bots:   testBots("call"),
		Hands:  5,
		Seed:   1,
	}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Tables[0].Hands)
	assert.Equal(t, 0, res.Players["call"].Hands)
}
