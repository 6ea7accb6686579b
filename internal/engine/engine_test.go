package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tatianab/pips-pilgrimage/internal/catalog"
	"github.com/tatianab/pips-pilgrimage/internal/models"
	"github.com/tatianab/pips-pilgrimage/internal/rng"
)

// scripted replays queued values; when a queue runs dry IntN returns 0 and
// Float64 returns 0.99, which neither starts nor clears a blizzard.
type scripted struct {
	ints   []int
	floats []float64
}

func (s *scripted) IntN(n int) int {
	if len(s.ints) == 0 {
		return 0
	}
	v := s.ints[0]
	s.ints = s.ints[1:]
	return v % n
}

func (s *scripted) Float64() float64 {
	if len(s.floats) == 0 {
		return 0.99
	}
	v := s.floats[0]
	s.floats = s.floats[1:]
	return v
}

func pool(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d.", prefix, i)
	}
	return out
}

func testEvent(title string) models.Event {
	return models.Event{
		Title: title,
		Options: []models.Choice{
			{Text: "Feast", DetailedOutcome: "You eat well.", StatChanges: models.StatChanges{Hunger: 50, Fish: -10}},
			{Text: "Fall", DetailedOutcome: "You fall hard.", StatChanges: models.StatChanges{Health: -150}},
		},
	}
}

func testJourney(beats ...models.Beat) *models.Journey {
	return &models.Journey{
		ID:    1,
		Title: "Test",
		NarrativePool: models.ActionPools{
			Travel: pool("travel", 4),
			Rest:   pool("rest", 3),
			Forage: pool("forage", 3),
		},
		Environment: models.EnvironmentPools{
			Lowlands:   pool("low", 3),
			HighPasses: pool("high", 3),
			Summit:     pool("summit", 3),
		},
		Situations: models.SituationPools{
			Thriving:  pool("thriving", 2),
			LowHealth: pool("hurt", 2),
			Starving:  pool("starving", 2),
			Freezing:  pool("freezing", 2),
			LowMorale: pool("gloom", 2),
			Blizzard:  pool("blizzard", 2),
		},
		FixedEvents: beats,
	}
}

func testCatalog(beats ...models.Beat) *catalog.Catalog {
	return &catalog.Catalog{Leads: pool("lead", 5), Journeys: []models.Journey{*testJourney(beats...)}}
}

func freshState(j *models.Journey) models.GameState {
	s := NewGameState(j)
	s.Status = models.StatusPlaying
	return s
}

func TestResolveTravel(t *testing.T) {
	j := testJourney()
	s := freshState(j)
	next, turn := Resolve(&scripted{ints: []int{19}, floats: []float64{0.1}}, s, models.ActionTravel, j, pool("lead", 3))

	if next.Distance != 34 {
		t.Errorf("Distance = %d, want 34", next.Distance)
	}
	if next.Hunger != 86 || next.Warmth != 88 || next.Morale != 94 || next.Health != 100 {
		t.Errorf("resources = h%d w%d m%d hp%d", next.Hunger, next.Warmth, next.Morale, next.Health)
	}
	if !next.IsBlizzard {
		t.Error("a roll under 0.2 should start a blizzard")
	}
	if next.Day != 2 {
		t.Errorf("Day = %d, want 2", next.Day)
	}
	if turn.Prefix != "" {
		t.Errorf("unexpected prefix %q", turn.Prefix)
	}
	if next.LastMessage != turn.Composition.Message {
		t.Errorf("LastMessage = %q, want composed message", next.LastMessage)
	}
	if !strings.HasPrefix(turn.Composition.Draws[models.CategoryStatus].Value, "blizzard") {
		t.Errorf("status fragment should come from the blizzard pool, got %q", turn.Composition.Draws[models.CategoryStatus].Value)
	}
	if len(s.NarrativeHistory[models.CategoryTravel]) != 0 || s.Distance != 0 || s.Day != 1 {
		t.Error("Resolve modified its input")
	}
	if len(next.NarrativeHistory[models.CategoryTravel]) != 1 {
		t.Errorf("travel history = %v, want one entry", next.NarrativeHistory[models.CategoryTravel])
	}
}

func TestResolveRestEatsFish(t *testing.T) {
	j := testJourney()
	s := freshState(j)
	s.Hunger, s.Inventory.Fish = 50, 2
	next, _ := Resolve(&scripted{}, s, models.ActionRest, j, pool("lead", 3))

	if next.Inventory.Fish != 1 {
		t.Errorf("Fish = %d, want 1", next.Inventory.Fish)
	}
	if next.Hunger != 75 {
		t.Errorf("Hunger = %d, want 75", next.Hunger)
	}
	if !strings.HasPrefix(next.LastMessage, ateFishText) {
		t.Errorf("LastMessage = %q, want the fish prefix", next.LastMessage)
	}

	s.IsBlizzard = true
	calm, turn := Resolve(&scripted{floats: []float64{0.1}}, s, models.ActionRest, j, pool("lead", 3))
	if calm.IsBlizzard {
		t.Error("a roll under 0.6 should clear the blizzard")
	}
	if want := blizzardClearedText + ateFishText; turn.Prefix != want {
		t.Errorf("Prefix = %q, want %q", turn.Prefix, want)
	}
}

func TestResolveRestWithoutEating(t *testing.T) {
	j := testJourney()
	tests := []struct {
		name         string
		hunger, fish int
	}{
		{"not hungry enough", 80, 3},
		{"no fish", 20, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := freshState(j)
			s.Hunger, s.Inventory.Fish, s.Warmth = tc.hunger, tc.fish, 80
			next, turn := Resolve(&scripted{}, s, models.ActionRest, j, pool("lead", 3))
			if next.Inventory.Fish != tc.fish {
				t.Errorf("Fish = %d, want %d", next.Inventory.Fish, tc.fish)
			}
			if next.Hunger != tc.hunger-10 {
				t.Errorf("Hunger = %d, want %d", next.Hunger, tc.hunger-10)
			}
			if next.Warmth != 100 {
				t.Errorf("Warmth = %d, want clamp at 100", next.Warmth)
			}
			if turn.Prefix != "" {
				t.Errorf("unexpected prefix %q", turn.Prefix)
			}
		})
	}
}

func TestResolveForageAndBlizzardClear(t *testing.T) {
	j := testJourney()
	s := freshState(j)
	s.IsBlizzard = true
	next, turn := Resolve(&scripted{ints: []int{3}, floats: []float64{0.5}}, s, models.ActionForage, j, pool("lead", 3))

	if next.IsBlizzard {
		t.Error("a roll under 0.6 should clear the blizzard")
	}
	if next.Inventory.Fish != 8 {
		t.Errorf("Fish = %d, want 8", next.Inventory.Fish)
	}
	want := fmt.Sprintf(forageCaughtFormat, 3) + blizzardClearedText
	if turn.Prefix != want {
		t.Errorf("Prefix = %q, want %q", turn.Prefix, want)
	}
	if next.Hunger != 88 || next.Warmth != 82 {
		t.Errorf("Hunger/Warmth = %d/%d, want 88/82", next.Hunger, next.Warmth)
	}

	empty, turn := Resolve(&scripted{}, freshState(j), models.ActionForage, j, pool("lead", 3))
	if turn.Prefix != forageEmptyText || empty.Inventory.Fish != 5 {
		t.Errorf("empty forage: prefix %q fish %d", turn.Prefix, empty.Inventory.Fish)
	}
}

func TestEventFiresOnceWhenCrossed(t *testing.T) {
	j := testJourney(models.Beat{Distance: 100, Event: testEvent("Seal")})
	s := freshState(j)
	s.Distance = 95

	next, turn := Resolve(&scripted{ints: []int{0}}, s, models.ActionTravel, j, pool("lead", 3))
	if next.Distance != 110 {
		t.Fatalf("Distance = %d, want 110", next.Distance)
	}
	if next.Status != models.StatusEvent || next.ActiveEvent == nil || next.ActiveEvent.Title != "Seal" {
		t.Fatalf("status %s event %+v, want the Seal event", next.Status, next.ActiveEvent)
	}
	if turn.Event == nil {
		t.Fatal("turn should report the fired event")
	}

	after := ApplyChoice(next, next.ActiveEvent.Options[0])
	again, turn := Resolve(&scripted{ints: []int{0}}, after, models.ActionTravel, j, pool("lead", 3))
	if again.Status != models.StatusPlaying || turn.Event != nil {
		t.Fatalf("event fired twice: status %s", again.Status)
	}
}

func TestEventNotFiredWhenStartingOnThreshold(t *testing.T) {
	j := testJourney(models.Beat{Distance: 100, Event: testEvent("Seal")})
	s := freshState(j)
	s.Distance = 100
	next, _ := Resolve(&scripted{}, s, models.ActionTravel, j, pool("lead", 3))
	if next.Status != models.StatusPlaying {
		t.Fatalf("Status = %s, want PLAYING", next.Status)
	}
}

func TestApplyChoiceClampsAndKeepsDay(t *testing.T) {
	j := testJourney()
	s := freshState(j)
	s.Status, s.Hunger, s.Day = models.StatusEvent, 70, 9
	ev := testEvent("Seal")
	s.ActiveEvent = &ev

	next := ApplyChoice(s, ev.Options[0])
	if next.Hunger != 100 || next.Inventory.Fish != 0 {
		t.Errorf("Hunger/Fish = %d/%d, want 100/0", next.Hunger, next.Inventory.Fish)
	}
	if next.Day != 9 {
		t.Errorf("Day = %d, want 9", next.Day)
	}
	if next.Status != models.StatusPlaying || next.ActiveEvent != nil {
		t.Errorf("Status = %s, want PLAYING with no event", next.Status)
	}
	if next.LastMessage != "You eat well." {
		t.Errorf("LastMessage = %q", next.LastMessage)
	}

	dead := ApplyChoice(s, ev.Options[1])
	if dead.Health != 0 || dead.Status != models.StatusGameOver {
		t.Errorf("Health %d status %s, want 0 GAMEOVER", dead.Health, dead.Status)
	}
}

func TestLossBeatsWin(t *testing.T) {
	j := testJourney()
	s := freshState(j)
	s.Distance, s.Hunger = 490, 5
	next, _ := Resolve(&scripted{ints: []int{19}}, s, models.ActionTravel, j, pool("lead", 3))
	if next.Distance < models.TargetDistance {
		t.Fatalf("Distance = %d, expected to reach the summit", next.Distance)
	}
	if next.Status != models.StatusGameOver {
		t.Fatalf("Status = %s, want GAMEOVER", next.Status)
	}

	s.Hunger = 50
	win, _ := Resolve(&scripted{ints: []int{19}}, s, models.ActionTravel, j, pool("lead", 3))
	if win.Status != models.StatusWin {
		t.Fatalf("Status = %s, want WIN", win.Status)
	}
}

func TestTerminalOverridesEvent(t *testing.T) {
	j := testJourney(models.Beat{Distance: 100, Event: testEvent("Seal")})
	s := freshState(j)
	s.Distance, s.Hunger = 95, 10
	next, _ := Resolve(&scripted{}, s, models.ActionTravel, j, pool("lead", 3))
	if next.Status != models.StatusGameOver || next.ActiveEvent != nil {
		t.Fatalf("Status = %s event %v, want GAMEOVER and no event", next.Status, next.ActiveEvent)
	}
}

func TestNextMilestone(t *testing.T) {
	j := testJourney(
		models.Beat{Distance: 100, Event: testEvent("A")},
		models.Beat{Distance: 250, Event: testEvent("B")},
	)
	s := freshState(j)
	for _, tc := range []struct {
		distance int
		want     int
		ok       bool
	}{
		{0, 100, true},
		{100, 250, true},
		{260, 0, false},
	} {
		s.Distance = tc.distance
		got, ok := NextMilestone(s, j)
		if got != tc.want || ok != tc.ok {
			t.Errorf("NextMilestone(%d) = %d,%v, want %d,%v", tc.distance, got, ok, tc.want, tc.ok)
		}
	}
}

func TestTravelOnlyStarves(t *testing.T) {
	sess := NewSession(testCatalog(), rng.NewStream(1))
	ctx := context.Background()
	for i := 0; i < 20 && !sess.State().Status.Terminal(); i++ {
		if _, err := sess.PerformAction(ctx, models.ActionTravel); err != nil {
			t.Fatalf("travel %d: %v", i+1, err)
		}
	}
	s := sess.State()
	if s.Status != models.StatusGameOver {
		t.Fatalf("Status = %s, want GAMEOVER", s.Status)
	}
	if s.Hunger != 0 || s.Day != 9 {
		t.Errorf("Hunger %d Day %d, want starvation on the 8th step", s.Hunger, s.Day)
	}
	if s.Distance >= models.TargetDistance {
		t.Errorf("Distance = %d, should fall short of the summit", s.Distance)
	}
}

func TestInvariantsOverLongPlay(t *testing.T) {
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	src := rng.NewStream(2024)
	sess := NewSession(cat, src)
	ctx := context.Background()
	prev := sess.State()

	for step := 0; step < 2000; step++ {
		var (
			next models.GameState
			err  error
		)
		switch {
		case prev.Status.Terminal():
			if err := sess.Restart(); err != nil {
				t.Fatalf("Restart: %v", err)
			}
			prev = sess.State()
			continue
		case prev.Status == models.StatusEvent:
			next, err = sess.PerformChoice(ctx, src.IntN(len(prev.ActiveEvent.Options)))
			if err == nil && next.Day != prev.Day {
				t.Fatalf("choice changed the day from %d to %d", prev.Day, next.Day)
			}
		default:
			next, err = sess.PerformAction(ctx, models.AllActions[src.IntN(len(models.AllActions))])
			if err == nil && next.Day != prev.Day+1 {
				t.Fatalf("action moved the day from %d to %d", prev.Day, next.Day)
			}
		}
		if err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		for name, v := range map[string]int{"health": next.Health, "hunger": next.Hunger, "warmth": next.Warmth, "morale": next.Morale} {
			if v < 0 || v > 100 {
				t.Fatalf("step %d: %s = %d out of range", step, name, v)
			}
		}
		if next.Inventory.Fish < 0 {
			t.Fatalf("step %d: fish = %d", step, next.Inventory.Fish)
		}
		if next.Distance < prev.Distance {
			t.Fatalf("step %d: distance went back from %d to %d", step, prev.Distance, next.Distance)
		}
		if next.Status == models.StatusEvent && next.ActiveEvent == nil {
			t.Fatalf("step %d: EVENT without an active event", step)
		}
		prev = next
	}
}

func TestSessionRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	sess := NewSession(testCatalog(models.Beat{Distance: 15, Event: testEvent("Seal")}), &scripted{})

	if _, err := sess.PerformChoice(ctx, 0); !errors.Is(err, ErrRejected) {
		t.Fatalf("choice outside an event: err = %v, want ErrRejected", err)
	}
	if _, err := sess.PerformAction(ctx, "dance"); !errors.Is(err, ErrRejected) {
		t.Fatalf("unknown action: err = %v, want ErrRejected", err)
	}

	s, err := sess.PerformAction(ctx, models.ActionTravel)
	if err != nil {
		t.Fatalf("travel: %v", err)
	}
	if s.Status != models.StatusEvent {
		t.Fatalf("Status = %s, want EVENT", s.Status)
	}
	if _, err := sess.PerformAction(ctx, models.ActionRest); !errors.Is(err, ErrRejected) {
		t.Fatalf("action during event: err = %v, want ErrRejected", err)
	}
	if _, err := sess.PerformChoice(ctx, 5); !errors.Is(err, ErrRejected) {
		t.Fatalf("out of range choice: err = %v, want ErrRejected", err)
	}
	if got := sess.State(); got.Day != s.Day || got.Status != models.StatusEvent {
		t.Fatal("rejected input changed the state")
	}

	s, err = sess.PerformChoice(ctx, 1)
	if err != nil {
		t.Fatalf("choice: %v", err)
	}
	if s.Status != models.StatusGameOver {
		t.Fatalf("Status = %s, want GAMEOVER", s.Status)
	}
	if _, err := sess.PerformAction(ctx, models.ActionRest); !errors.Is(err, ErrRejected) {
		t.Fatalf("action after game over: err = %v, want ErrRejected", err)
	}

	entries := sess.Chronicle().Entries
	if len(entries) != 2 || entries[1].Move != "choice: Fall" || entries[1].Changes.Health != -100 {
		t.Fatalf("chronicle = %+v", entries)
	}

	if err := sess.Restart(); err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if s := sess.State(); s.Status != models.StatusStart || s.Day != 1 || len(s.NarrativeHistory[models.CategoryLeads]) != 0 {
		t.Fatalf("restart did not reset state: %+v", s)
	}
	if len(sess.Chronicle().Entries) != 0 {
		t.Fatal("restart should begin a new chronicle")
	}
}

type fakeRemote struct {
	line    string
	lineOK  bool
	event   *models.Event
	eventOK bool
	entered chan struct{}
	release chan struct{}
}

func (f *fakeRemote) NarrativeLine(ctx context.Context, _ models.GameState, _ models.Action, _ *models.Journey) (string, bool) {
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	return f.line, f.lineOK
}

func (f *fakeRemote) GeneratedEvent(context.Context, models.GameState, *models.Journey) (*models.Event, bool) {
	return f.event, f.eventOK
}

func TestRemoteOverrideAndFallback(t *testing.T) {
	ctx := context.Background()

	sess := NewSession(testCatalog(), &scripted{}, WithRemote(&fakeRemote{line: "The wind speaks.", lineOK: true}))
	s, err := sess.PerformAction(ctx, models.ActionForage)
	if err != nil {
		t.Fatalf("forage: %v", err)
	}
	if s.LastMessage != forageEmptyText+"The wind speaks." {
		t.Errorf("LastMessage = %q, want prefix plus remote line", s.LastMessage)
	}
	if len(s.NarrativeHistory[models.CategoryLeads]) != 1 {
		t.Error("local composition should still update history")
	}

	local := NewSession(testCatalog(), &scripted{}, WithRemote(&fakeRemote{line: "ignored"}))
	s, err = local.PerformAction(ctx, models.ActionTravel)
	if err != nil {
		t.Fatalf("travel: %v", err)
	}
	if !strings.HasPrefix(s.LastMessage, "lead") {
		t.Errorf("LastMessage = %q, want the local composition", s.LastMessage)
	}
}

func TestRemoteEventReplacement(t *testing.T) {
	ctx := context.Background()
	generated := &models.Event{Title: "Generated", Options: []models.Choice{{Text: "a"}, {Text: "b"}}}
	tests := []struct {
		name   string
		remote *fakeRemote
		events bool
		want   string
	}{
		{"replaced", &fakeRemote{event: generated, eventOK: true}, true, "Generated"},
		{"disabled", &fakeRemote{event: generated, eventOK: true}, false, "Seal"},
		{"failure", &fakeRemote{}, true, "Seal"},
		{"too few options", &fakeRemote{event: &models.Event{Title: "Thin", Options: []models.Choice{{Text: "a"}}}, eventOK: true}, true, "Seal"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cat := testCatalog(models.Beat{Distance: 15, Event: testEvent("Seal")})
			sess := NewSession(cat, &scripted{}, WithRemote(tc.remote), WithRemoteEvents(tc.events))
			s, err := sess.PerformAction(ctx, models.ActionTravel)
			if err != nil {
				t.Fatalf("travel: %v", err)
			}
			if s.ActiveEvent == nil || s.ActiveEvent.Title != tc.want {
				t.Fatalf("ActiveEvent = %+v, want %s", s.ActiveEvent, tc.want)
			}
		})
	}
}

func TestBusySessionRejectsInput(t *testing.T) {
	remote := &fakeRemote{entered: make(chan struct{}), release: make(chan struct{})}
	sess := NewSession(testCatalog(), &scripted{}, WithRemote(remote), WithRemoteTimeout(time.Second))
	ctx := context.Background()

	done := make(chan error)
	go func() {
		_, err := sess.PerformAction(ctx, models.ActionTravel)
		done <- err
	}()
	<-remote.entered

	if !sess.Busy() {
		t.Error("Busy should report the in-flight action")
	}
	if _, err := sess.PerformAction(ctx, models.ActionRest); !errors.Is(err, ErrBusy) {
		t.Errorf("second action: err = %v, want ErrBusy", err)
	}
	if err := sess.Restart(); !errors.Is(err, ErrBusy) {
		t.Errorf("restart: err = %v, want ErrBusy", err)
	}
	m := sess.AddMarker("cairn", models.MarkerWaypoint, "")

	close(remote.release)
	if err := <-done; err != nil {
		t.Fatalf("first action: %v", err)
	}
	s := sess.State()
	if s.Day != 2 {
		t.Errorf("Day = %d, want exactly one resolved action", s.Day)
	}
	if len(s.Markers) != 1 || s.Markers[0].ID != m.ID {
		t.Errorf("marker added mid-turn was lost: %+v", s.Markers)
	}
}

func TestMarkers(t *testing.T) {
	sess := NewSession(testCatalog(), &scripted{})
	a := sess.AddMarker("camp", models.MarkerShelter, "a dry hollow")
	b := sess.AddMarker("hole", models.MarkerFishing, "")
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("marker ids %q and %q should be unique", a.ID, b.ID)
	}
	if a.DayDiscovered != 1 || a.Distance != 0 {
		t.Errorf("marker placed at day %d distance %d", a.DayDiscovered, a.Distance)
	}
	if !sess.RemoveMarker(a.ID) {
		t.Fatal("RemoveMarker should report success")
	}
	if sess.RemoveMarker(a.ID) {
		t.Fatal("removing twice should fail")
	}
	if ms := sess.State().Markers; len(ms) != 1 || ms[0].ID != b.ID {
		t.Fatalf("Markers = %+v", ms)
	}

	sess.state.DiscoveredLandmarks = []models.Marker{{ID: b.ID, Label: "hole"}, {ID: "rookery", Label: "rookery"}}
	if !sess.RemoveMarker(b.ID) {
		t.Fatal("RemoveMarker should report success")
	}
	s := sess.State()
	if len(s.Markers) != 0 {
		t.Errorf("Markers = %+v, want none", s.Markers)
	}
	if len(s.DiscoveredLandmarks) != 1 || s.DiscoveredLandmarks[0].ID != "rookery" {
		t.Errorf("DiscoveredLandmarks = %+v, want only the rookery", s.DiscoveredLandmarks)
	}
	if !sess.RemoveMarker("rookery") || len(sess.State().DiscoveredLandmarks) != 0 {
		t.Error("a landmark alone should be removable")
	}
}

func TestWithJourneyPinsEveryRun(t *testing.T) {
	cat, err := catalog.Load()
	if err != nil {
		t.Fatalf("catalog.Load: %v", err)
	}
	sess := NewSession(cat, rng.NewStream(3), WithJourney(2))
	for i := 0; i < 5; i++ {
		if got := sess.Journey().ID; got != 2 {
			t.Fatalf("run %d on journey %d, want 2", i, got)
		}
		if got := sess.State().ActiveJourneyID; got != 2 {
			t.Fatalf("ActiveJourneyID = %d, want 2", got)
		}
		if err := sess.Restart(); err != nil {
			t.Fatalf("Restart: %v", err)
		}
	}

	unknown := NewSession(cat, rng.NewStream(3), WithJourney(99))
	if _, ok := cat.Journey(unknown.Journey().ID); !ok {
		t.Fatal("unknown id should fall back to a catalog journey")
	}
}
