package models

// TargetDistance is the summit, in miles from the colony.
const TargetDistance = 500

// Travel gains are drawn uniformly from [MinTravelGain, MaxTravelGain].
const (
	MinTravelGain = 15
	MaxTravelGain = 34
)

// Status is the top-level phase of a playthrough.
type Status string

const (
	StatusStart    Status = "START"
	StatusPlaying  Status = "PLAYING"
	StatusEvent    Status = "EVENT"
	StatusGameOver Status = "GAMEOVER"
	StatusWin      Status = "WIN"
)

// Terminal reports whether only a restart can leave this status.
func (s Status) Terminal() bool {
	return s == StatusGameOver || s == StatusWin
}

// Action is one of the three moves a player can make on a normal turn.
type Action string

const (
	ActionTravel Action = "travel"
	ActionRest   Action = "rest"
	ActionForage Action = "forage"
)

var AllActions = []Action{ActionTravel, ActionRest, ActionForage}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	for _, known := range AllActions {
		if a == known {
			return true
		}
	}
	return false
}

// Category names one narrative history slot.
type Category string

const (
	CategoryLeads  Category = "leads"
	CategoryTravel Category = "travel"
	CategoryRest   Category = "rest"
	CategoryForage Category = "forage"
	CategoryEnv    Category = "env"
	CategoryStatus Category = "status"
)

var AllCategories = []Category{CategoryLeads, CategoryTravel, CategoryRest, CategoryForage, CategoryEnv, CategoryStatus}

// Category returns the history slot fed by the action's own pool.
func (a Action) Category() Category { return Category(a) }

// Band is an elevation band selected by distance.
type Band string

const (
	BandLowlands   Band = "lowlands"
	BandHighPasses Band = "high_passes"
	BandSummit     Band = "summit"
)

// BandFor maps a distance to its elevation band.
func BandFor(distance int) Band {
	switch {
	case distance < 150:
		return BandLowlands
	case distance < 350:
		return BandHighPasses
	default:
		return BandSummit
	}
}

// Situation selects which situational pool colours the closing fragment.
type Situation string

const (
	SituationThriving  Situation = "thriving"
	SituationLowHealth Situation = "low_health"
	SituationStarving  Situation = "starving"
	SituationFreezing  Situation = "freezing"
	SituationLowMorale Situation = "low_morale"
	SituationBlizzard  Situation = "blizzard"
)

// Inventory holds carried supplies. Only fish has a gameplay effect.
type Inventory struct {
	Fish   int `yaml:"fish"`
	Stones int `yaml:"stones"`
	Wood   int `yaml:"wood"`
}

type MarkerType string

const (
	MarkerWaypoint MarkerType = "waypoint"
	MarkerShelter  MarkerType = "shelter"
	MarkerFishing  MarkerType = "fishing"
	MarkerHazard   MarkerType = "hazard"
	MarkerInterest MarkerType = "interest"
)

// Marker is a point of interest placed on the map. The engine only carries it.
type Marker struct {
	ID            string     `yaml:"id"`
	Distance      int        `yaml:"distance"`
	Label         string     `yaml:"label"`
	Type          MarkerType `yaml:"type"`
	DayDiscovered int        `yaml:"day_discovered,omitempty"`
	Description   string     `yaml:"description,omitempty"`
}

// StatChanges is a signed delta record. Missing fields mean zero.
type StatChanges struct {
	Health int `yaml:"health,omitempty" json:"health,omitempty"`
	Hunger int `yaml:"hunger,omitempty" json:"hunger,omitempty"`
	Warmth int `yaml:"warmth,omitempty" json:"warmth,omitempty"`
	Morale int `yaml:"morale,omitempty" json:"morale,omitempty"`
	Fish   int `yaml:"fish,omitempty" json:"fish,omitempty"`
}

// Choice is one option of an encounter.
type Choice struct {
	Text            string      `yaml:"text" json:"text"`
	Outcome         string      `yaml:"outcome" json:"outcome"`                   // short label
	DetailedOutcome string      `yaml:"detailed_outcome" json:"detailedOutcome"` // shown verbatim once chosen
	StatChanges     StatChanges `yaml:"stat_changes" json:"statChanges"`
}

// Event is a choice-based encounter.
type Event struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	EventType   string   `yaml:"event_type,omitempty" json:"eventType,omitempty"`
	Options     []Choice `yaml:"options" json:"options"`
}

// Beat binds an authored event to a cumulative distance threshold.
type Beat struct {
	Distance int   `yaml:"distance"`
	Event    Event `yaml:"event"`
}

// ActionPools holds the action fragments of a journey.
type ActionPools struct {
	Travel []string `yaml:"travel"`
	Rest   []string `yaml:"rest"`
	Forage []string `yaml:"forage"`
}

// Pool returns the fragments for a.
func (p ActionPools) Pool(a Action) []string {
	switch a {
	case ActionTravel:
		return p.Travel
	case ActionRest:
		return p.Rest
	case ActionForage:
		return p.Forage
	}
	return nil
}

// EnvironmentPools holds environment fragments by elevation band.
type EnvironmentPools struct {
	Lowlands   []string `yaml:"lowlands"`
	HighPasses []string `yaml:"high_passes"`
	Summit     []string `yaml:"summit"`
}

// Pool returns the fragments for b.
func (p EnvironmentPools) Pool(b Band) []string {
	switch b {
	case BandLowlands:
		return p.Lowlands
	case BandHighPasses:
		return p.HighPasses
	case BandSummit:
		return p.Summit
	}
	return nil
}

// SituationPools holds the closing fragments by situation.
type SituationPools struct {
	Thriving  []string `yaml:"thriving"`
	LowHealth []string `yaml:"low_health"`
	Starving  []string `yaml:"starving"`
	Freezing  []string `yaml:"freezing"`
	LowMorale []string `yaml:"low_morale"`
	Blizzard  []string `yaml:"blizzard"`
}

// Pool returns the fragments for s.
func (p SituationPools) Pool(s Situation) []string {
	switch s {
	case SituationThriving:
		return p.Thriving
	case SituationLowHealth:
		return p.LowHealth
	case SituationStarving:
		return p.Starving
	case SituationFreezing:
		return p.Freezing
	case SituationLowMorale:
		return p.LowMorale
	case SituationBlizzard:
		return p.Blizzard
	}
	return nil
}

// Journey is a themed content bundle chosen once per playthrough.
type Journey struct {
	ID            int              `yaml:"id"`
	Title         string           `yaml:"title"`
	Flavor        string           `yaml:"flavor"`
	Voice         string           `yaml:"voice"` // personality of the narration
	NarrativePool ActionPools      `yaml:"narrative_pool"`
	Environment   EnvironmentPools `yaml:"environment"`
	Situations    SituationPools   `yaml:"situations"`
	FixedEvents   []Beat           `yaml:"fixed_events"`
}

// NarrativeHistory records, per category, the fragment indices already used.
type NarrativeHistory map[Category][]int

// Clone returns a deep copy so snapshots never share backing arrays.
func (h NarrativeHistory) Clone() NarrativeHistory {
	out := make(NarrativeHistory, len(AllCategories))
	for _, c := range AllCategories {
		out[c] = []int{}
	}
	for c, used := range h {
		out[c] = append([]int{}, used...)
	}
	return out
}

// NewNarrativeHistory returns a history with an empty slot per category.
func NewNarrativeHistory() NarrativeHistory {
	return NarrativeHistory(nil).Clone()
}

// GameState is the whole simulation state of one playthrough.
type GameState struct {
	Distance            int              `yaml:"distance"`
	Day                 int              `yaml:"day"`
	Health              int              `yaml:"health"`
	Hunger              int              `yaml:"hunger"`
	Warmth              int              `yaml:"warmth"`
	Morale              int              `yaml:"morale"`
	Inventory           Inventory        `yaml:"inventory"`
	Status              Status           `yaml:"status"`
	LastMessage         string           `yaml:"last_message"`
	Markers             []Marker         `yaml:"markers,omitempty"`
	DiscoveredLandmarks []Marker         `yaml:"discovered_landmarks,omitempty"`
	IsBlizzard          bool             `yaml:"is_blizzard"`
	ActiveJourneyID     int              `yaml:"active_journey_id"`
	NarrativeHistory    NarrativeHistory `yaml:"narrative_history"`
	ActiveEvent         *Event           `yaml:"active_event,omitempty"` // set only while Status is EVENT
}

// Clone returns a deep copy of s. Events are catalog data and stay shared.
func (s GameState) Clone() GameState {
	out := s
	out.Markers = append([]Marker(nil), s.Markers...)
	out.DiscoveredLandmarks = append([]Marker(nil), s.DiscoveredLandmarks...)
	out.NarrativeHistory = s.NarrativeHistory.Clone()
	return out
}

// Lost reports whether a vital resource has run out. Morale never kills.
func (s GameState) Lost() bool {
	return s.Health <= 0 || s.Hunger <= 0 || s.Warmth <= 0
}
