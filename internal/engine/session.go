package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/tatianab/pips-pilgrimage/internal/catalog"
	"github.com/tatianab/pips-pilgrimage/internal/models"
	"github.com/tatianab/pips-pilgrimage/internal/rng"
)

const openingMessage = "You make the decision to head into the mountains and leave your colony behind. Why? Does there need to be a reason?"

const defaultRemoteTimeout = 8 * time.Second

// NewGameState returns the opening state of a run on journey.
func NewGameState(journey *models.Journey) models.GameState {
	return models.GameState{
		Distance:         0,
		Day:              1,
		Health:           100,
		Hunger:           100,
		Warmth:           100,
		Morale:           100,
		Inventory:        models.Inventory{Fish: 5},
		Status:           models.StatusStart,
		LastMessage:      openingMessage,
		ActiveJourneyID:  journey.ID,
		NarrativeHistory: models.NewNarrativeHistory(),
	}
}

// Session owns one playthrough. Only one action or choice is resolved at a
// time; input arriving meanwhile fails with ErrBusy.
type Session struct {
	cat          *catalog.Catalog
	src          rng.Source
	remote       Remote
	remoteEvents bool
	timeout      time.Duration
	journeyID    int

	busy atomic.Bool

	mu        sync.Mutex
	journey   *models.Journey
	state     models.GameState
	chronicle models.Chronicle
}

// Option configures a Session.
type Option func(*Session)

// WithRemote lets r override the composed narration.
func WithRemote(r Remote) Option {
	return func(s *Session) { s.remote = r }
}

// WithRemoteEvents lets the remote service replace fired fixed events.
// It has no effect without WithRemote.
func WithRemoteEvents(enabled bool) Option {
	return func(s *Session) { s.remoteEvents = enabled }
}

// WithRemoteTimeout bounds every remote call. Zero disables the bound.
func WithRemoteTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// WithJourney pins every run to the journey with id. Unknown ids fall back
// to a random pick.
func WithJourney(id int) Option {
	return func(s *Session) { s.journeyID = id }
}

// NewSession starts a run on a journey drawn from cat.
func NewSession(cat *catalog.Catalog, src rng.Source, opts ...Option) *Session {
	s := &Session{cat: cat, src: src, timeout: defaultRemoteTimeout}
	for _, opt := range opts {
		opt(s)
	}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.journey = nil
	if s.journeyID != 0 {
		if j, ok := s.cat.Journey(s.journeyID); ok {
			s.journey = j
		} else {
			log.Printf("Warning: no journey %d, picking one at random", s.journeyID)
		}
	}
	if s.journey == nil {
		s.journey = s.cat.Pick(s.src)
	}
	s.state = NewGameState(s.journey)
	s.chronicle = models.Chronicle{RunID: uuid.NewString(), Journey: s.journey.Title}
}

// State returns a snapshot of the current state.
func (s *Session) State() models.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Journey returns the journey of the current run.
func (s *Session) Journey() *models.Journey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journey
}

// Chronicle returns a copy of the run's record so far.
func (s *Session) Chronicle() models.Chronicle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.chronicle
	out.Entries = append([]models.ChronicleEntry(nil), s.chronicle.Entries...)
	return out
}

// Busy reports whether an action or choice is in flight.
func (s *Session) Busy() bool { return s.busy.Load() }

// PerformAction resolves one turn. It fails with ErrRejected while an event
// is pending or the run is over, and with ErrBusy while another input is
// being resolved. A rejected input leaves the state untouched.
func (s *Session) PerformAction(ctx context.Context, action models.Action) (models.GameState, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return s.State(), ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	before := s.state.Clone()
	journey := s.journey
	s.mu.Unlock()

	if !action.Valid() {
		return before, fmt.Errorf("%w: unknown action %q", ErrRejected, action)
	}
	if before.Status == models.StatusEvent || before.Status.Terminal() {
		return before, fmt.Errorf("%w: cannot %s while %s", ErrRejected, action, before.Status)
	}

	next, turn := Resolve(s.src, before, action, journey, s.cat.Leads)

	if s.remote != nil {
		s.consultRemote(ctx, &next, turn, journey)
	}

	s.commit(before, next, string(action))
	return s.State(), nil
}

// consultRemote lets the remote service replace the narration and, when
// enabled, a fired event. Any failure keeps the local result.
func (s *Session) consultRemote(ctx context.Context, next *models.GameState, turn Turn, journey *models.Journey) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if line, ok := s.remote.NarrativeLine(ctx, *next, turn.Action, journey); ok {
		next.LastMessage = turn.Prefix + line
	}

	if s.remoteEvents && next.Status == models.StatusEvent {
		ev, ok := s.remote.GeneratedEvent(ctx, *next, journey)
		if ok && ev != nil && len(ev.Options) >= 2 {
			next.ActiveEvent = ev
		} else {
			log.Printf("Warning: keeping fixed event %q", turn.Event.Title)
		}
	}
}

// PerformChoice settles the pending event with option index.
func (s *Session) PerformChoice(_ context.Context, index int) (models.GameState, error) {
	if !s.busy.CompareAndSwap(false, true) {
		return s.State(), ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	before := s.state.Clone()
	s.mu.Unlock()

	if before.Status != models.StatusEvent || before.ActiveEvent == nil {
		return before, fmt.Errorf("%w: no event to choose for", ErrRejected)
	}
	options := before.ActiveEvent.Options
	if index < 0 || index >= len(options) {
		return before, fmt.Errorf("%w: choice %d out of range 1..%d", ErrRejected, index+1, len(options))
	}

	choice := options[index]
	next := ApplyChoice(before, choice)
	s.commit(before, next, "choice: "+choice.Text)
	return s.State(), nil
}

// commit stores next and records it in the chronicle. Markers edited while
// the turn was in flight are kept.
func (s *Session) commit(before, next models.GameState, move string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next.Markers = s.state.Markers
	next.DiscoveredLandmarks = s.state.DiscoveredLandmarks
	s.state = next
	s.chronicle.Entries = append(s.chronicle.Entries, models.ChronicleEntry{
		Day:      next.Day,
		Move:     move,
		Outcome:  next.LastMessage,
		Status:   next.Status,
		Distance: next.Distance,
		Changes:  models.Diff(before, next),
	})
}

// Restart abandons the run and starts a new one on a fresh journey.
func (s *Session) Restart() error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
	return nil
}

// AddMarker places a marker at the current distance and returns it.
func (s *Session) AddMarker(label string, kind models.MarkerType, description string) models.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := models.Marker{
		ID:            uuid.NewString(),
		Distance:      s.state.Distance,
		Label:         label,
		Type:          kind,
		DayDiscovered: s.state.Day,
		Description:   description,
	}
	s.state.Markers = append(append([]models.Marker(nil), s.state.Markers...), m)
	return m
}

// RemoveMarker deletes the marker or landmark with id and reports whether
// anything was removed.
func (s *Session) RemoveMarker(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	markers, droppedMarker := withoutMarker(s.state.Markers, id)
	landmarks, droppedLandmark := withoutMarker(s.state.DiscoveredLandmarks, id)
	if !droppedMarker && !droppedLandmark {
		return false
	}
	s.state.Markers = markers
	s.state.DiscoveredLandmarks = landmarks
	return true
}

func withoutMarker(ms []models.Marker, id string) ([]models.Marker, bool) {
	kept := make([]models.Marker, 0, len(ms))
	for _, m := range ms {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	return kept, len(kept) != len(ms)
}
