package game

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statbars/internal/config"
	"statbars/internal/ecs"
	"statbars/internal/feed"
	"statbars/internal/savedata"
	"statbars/internal/stats"
	"statbars/internal/system"
)

// newSimScreen creates an initialized 80×24 simulation screen.
func newSimScreen(t *testing.T) tcell.Screen {
	t.Helper()
	ss := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, ss.Init())
	ss.SetSize(80, 24)
	t.Cleanup(ss.Fini)
	return ss
}

func newTestGame(t *testing.T, mutate func(*Options)) *Game {
	t.Helper()
	opts := Options{Config: config.Default(), Name: "Ada", Seed: 7}
	if mutate != nil {
		mutate(&opts)
	}
	g, err := New(context.Background(), newSimScreen(t), opts)
	require.NoError(t, err)
	return g
}

// started returns a game whose stats components have begun play.
func started(t *testing.T, mutate func(*Options)) *Game {
	t.Helper()
	g := newTestGame(t, mutate)
	g.Step(stats.DefaultBeginPlayDelay)
	return g
}

func stat(t *testing.T, g *Game, id ecs.EntityID, key stats.Stat) stats.StatData {
	t.Helper()
	d, ok := system.StatsOf(g.world, id).Stat(key)
	require.True(t, ok)
	return d
}

func lastMessage(g *Game) string {
	if len(g.messages) == 0 {
		return ""
	}
	return g.messages[len(g.messages)-1]
}

func TestBarsBindOnBeginPlay(t *testing.T) {
	g := newTestGame(t, nil)
	assert.Empty(t, g.bars, "bars wait for the begin delay")

	g.Step(stats.DefaultBeginPlayDelay)
	require.Len(t, g.bars, 2)
	assert.Len(t, g.bars[g.playerID], 4)
	assert.Len(t, g.bars[g.dummyID], 1)
	assert.Equal(t, 1.0, g.bars[g.dummyID][stats.StatHealth].Fill)
	assert.Contains(t, lastMessage(g), "bars are live")
}

func TestAttackDamagesDummy(t *testing.T) {
	g := started(t, nil)
	g.Do(context.Background(), ActionAttack)

	hp := stat(t, g, g.dummyID, stats.StatHealth)
	assert.Less(t, hp.Current, 200.0)
	assert.True(t, hp.IsAnimating)
	assert.Equal(t, 105.0, stat(t, g, g.playerID, stats.StatStamina).Current)
	assert.Contains(t, lastMessage(g), "You hit the dummy")
	assert.Equal(t, 1, g.Log().Attacks)
	assert.Equal(t, int(200-hp.Current), g.Log().DamageDealt)
}

func TestAttackWhenExhausted(t *testing.T) {
	g := started(t, nil)
	for i := 0; i < 5; i++ {
		g.Do(context.Background(), ActionSprint)
	}
	require.Equal(t, 0.0, stat(t, g, g.playerID, stats.StatStamina).Current)

	g.Do(context.Background(), ActionSprint)
	assert.Contains(t, lastMessage(g), "too winded")
	g.Do(context.Background(), ActionAttack)
	assert.Contains(t, lastMessage(g), "too exhausted")
	assert.Equal(t, 200.0, stat(t, g, g.dummyID, stats.StatHealth).Current)
}

func TestHealMessages(t *testing.T) {
	g := started(t, nil)
	g.Do(context.Background(), ActionHeal)
	assert.Contains(t, lastMessage(g), "already at full health")

	system.StatsOf(g.world, g.playerID).Modify(stats.StatHealth, -50, false)
	g.Do(context.Background(), ActionHeal)
	assert.Equal(t, "You heal for 25.", lastMessage(g))
	assert.Equal(t, 60.0, stat(t, g, g.playerID, stats.StatMana).Current)
}

func TestStudyGrantsExperience(t *testing.T) {
	g := started(t, nil)
	g.Do(context.Background(), ActionStudy)
	xp := stat(t, g, g.playerID, stats.StatExperience)
	assert.Equal(t, float64(studyXP), xp.Current)
	assert.True(t, xp.IsAnimating)
}

func TestDummyStrikesBack(t *testing.T) {
	g := started(t, func(o *Options) { o.Config.Dummy.AttackInterval = 100 * time.Millisecond })
	g.Step(50 * time.Millisecond)

	hp := stat(t, g, g.playerID, stats.StatHealth)
	assert.Equal(t, 88.0, hp.Current)
	assert.Equal(t, "The dummy hits you for 12.", lastMessage(g))
	assert.False(t, system.StatsOf(g.world, g.playerID).RegenActive(stats.StatHealth), "regen pauses while the hit animates")
	assert.Equal(t, 12, g.Log().DamageTaken)
}

func TestPlayerCollapsesAndRecovers(t *testing.T) {
	g := started(t, func(o *Options) {
		o.Config.Dummy.AttackInterval = 100 * time.Millisecond
		o.Config.Dummy.Damage = 500
	})
	g.Step(50 * time.Millisecond)

	assert.Contains(t, lastMessage(g), "You collapse")
	assert.Equal(t, 1, g.Log().Collapses)
	assert.Equal(t, 100.0, stat(t, g, g.playerID, stats.StatHealth).Current, "revive restores the target at once")
}

func TestKillAndReviveDummy(t *testing.T) {
	g := started(t, func(o *Options) { o.Config.Dummy.Health = 1 })
	g.Do(context.Background(), ActionAttack)

	assert.Contains(t, lastMessage(g), "It falls!")
	assert.Equal(t, 1, g.Log().Kills)
	assert.Equal(t, 160.0, stat(t, g, g.playerID, stats.StatExperience).Current)

	g.Do(context.Background(), ActionAttack)
	assert.Equal(t, "The dummy is already down.", lastMessage(g))

	g.Step(reviveDelay)
	assert.Equal(t, 1.0, stat(t, g, g.dummyID, stats.StatHealth).Current)
	assert.Contains(t, g.messages, "The dummy creaks back upright.")
}

func TestRearmRegeneration(t *testing.T) {
	g := started(t, nil)
	// Full bars stop regenerating on their first tick.
	g.Step(time.Second)
	g.Do(context.Background(), ActionRearm)
	assert.Equal(t, "Regeneration re-armed on 3 bar(s).", lastMessage(g))
}

func TestSaveDisabled(t *testing.T) {
	g := started(t, nil)
	g.Do(context.Background(), ActionSave)
	assert.Equal(t, "Saving is disabled.", lastMessage(g))
}

func TestSaveAndRestore(t *testing.T) {
	store, err := savedata.Open(filepath.Join(t.TempDir(), "saves.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	withStore := func(o *Options) { o.Store = store }

	g := started(t, withStore)
	g.Do(context.Background(), ActionSprint)
	g.Do(context.Background(), ActionSave)
	require.Equal(t, "Saved.", lastMessage(g))

	again := newTestGame(t, withStore)
	assert.Contains(t, again.messages, "Welcome back.")
	assert.Equal(t, 95.0, stat(t, again, again.playerID, stats.StatStamina).Current)

	other := newTestGame(t, func(o *Options) { o.Store = store; o.Name = "Bob" })
	assert.NotContains(t, other.messages, "Welcome back.")
	assert.Equal(t, 120.0, stat(t, other, other.playerID, stats.StatStamina).Current)
}

func TestForgetDeletesSave(t *testing.T) {
	store, err := savedata.Open(filepath.Join(t.TempDir(), "saves.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	withStore := func(o *Options) { o.Store = store }

	g := started(t, withStore)
	g.Do(context.Background(), ActionSave)
	g.Do(context.Background(), ActionForget)
	assert.Equal(t, "Your saved bars are forgotten.", lastMessage(g))

	_, err = store.LoadSheet(context.Background(), "Ada")
	assert.ErrorIs(t, err, savedata.ErrNoSheet)
	assert.NotContains(t, newTestGame(t, withStore).messages, "Welcome back.")

	noStore := started(t, nil)
	noStore.Do(context.Background(), ActionForget)
	assert.Equal(t, "Saving is disabled.", lastMessage(noStore))
}

func TestRunQuitsOnKey(t *testing.T) {
	dataHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	g := newTestGame(t, nil)

	done := make(chan error, 1)
	go func() { done <- g.Run(context.Background()) }()
	require.NoError(t, g.screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after q")
	}

	data, err := os.ReadFile(filepath.Join(dataHome, "statbars", "sessions.jsonl"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"player":"Ada"`)
}

func TestRunStopsOnCancel(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	g := newTestGame(t, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- g.Run(ctx) }()
	time.Sleep(300 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, g.bars[g.playerID] != nil, "the frame loop advanced the begin delay")
}

func TestKeyToAction(t *testing.T) {
	runes := map[rune]Action{
		'a': ActionAttack, ' ': ActionAttack, 'h': ActionHeal, 'S': ActionSprint,
		'x': ActionStudy, 'r': ActionRearm, 'p': ActionSave, 'f': ActionForget, 'q': ActionQuit, 'z': ActionNone,
	}
	for r, want := range runes {
		assert.Equal(t, want, keyToAction(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)), string(r))
	}
	assert.Equal(t, ActionQuit, keyToAction(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.Equal(t, ActionAttack, keyToAction(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone)))
}

func TestMessageLogIsBounded(t *testing.T) {
	g := newTestGame(t, nil)
	for i := 0; i < maxMessages+10; i++ {
		g.addMessage(strings.Repeat("x", i))
	}
	assert.Len(t, g.Messages(), maxMessages)
	assert.Equal(t, strings.Repeat("x", maxMessages+9), lastMessage(g))
}

func TestBarsAreMirroredToFeed(t *testing.T) {
	hub := feed.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	g := started(t, func(o *Options) { o.Hub = hub })
	g.Do(context.Background(), ActionAttack)

	seen := map[string]bool{}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for !seen["Training Dummy/health"] {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		f, err := feed.DecodeFrame(raw)
		require.NoError(t, err)
		seen[f.Actor+"/"+f.Stat] = true
	}
	assert.True(t, seen["Ada/health"] || seen["Ada/mana"] || seen["Ada/stamina"] || seen["Ada/experience"])
	assert.NotNil(t, g.bars[g.dummyID][stats.StatHealth], "terminal bars keep working alongside the feed")
}

func TestSessionsSharingFeedStayApart(t *testing.T) {
	hub := feed.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	srv := httptest.NewServer(hub)
	t.Cleanup(srv.Close)

	alice := started(t, func(o *Options) { o.Hub = hub; o.Name = "alice" })
	bob := started(t, func(o *Options) { o.Hub = hub; o.Name = "bob" })
	require.NotEqual(t, alice.Session(), bob.Session())

	alice.Do(context.Background(), ActionAttack)
	alice.Step(100 * time.Millisecond)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	dummy := map[string]float64{}
	hurt := func() bool { f, ok := dummy[alice.Session()]; return ok && f < 1 }
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for len(dummy) < 2 || !hurt() {
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		f, err := feed.DecodeFrame(raw)
		require.NoError(t, err)
		if f.Actor == "Training Dummy" && f.Stat == "health" {
			dummy[f.Session] = f.Fill
		}
	}
	require.Contains(t, dummy, bob.Session())
	assert.Equal(t, 1.0, dummy[bob.Session()], "bob's dummy was never hit")
}
