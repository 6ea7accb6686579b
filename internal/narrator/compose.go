package narrator

import (
	"strings"

	"github.com/tatianab/pips-pilgrimage/internal/models"
	"github.com/tatianab/pips-pilgrimage/internal/rng"
)

// lowThreshold is the level below which a resource colours the narration.
const lowThreshold = 30

// Composition is one composed sentence and the draw behind each slot.
type Composition struct {
	Message string
	Draws   map[models.Category]Draw
}

// Situation picks the single situational pool for s. Only the first match
// in priority order counts.
func Situation(s models.GameState) models.Situation {
	switch {
	case s.IsBlizzard:
		return models.SituationBlizzard
	case s.Health < lowThreshold:
		return models.SituationLowHealth
	case s.Hunger < lowThreshold:
		return models.SituationStarving
	case s.Warmth < lowThreshold:
		return models.SituationFreezing
	case s.Morale < lowThreshold:
		return models.SituationLowMorale
	default:
		return models.SituationThriving
	}
}

// Compose draws lead, action, environment and status fragments in that order
// and joins them with single spaces. s must already reflect this turn's
// movement and weather. History is read, not written; see Apply.
func Compose(src rng.Source, s models.GameState, action models.Action, journey *models.Journey, leads []string) Composition {
	h := s.NarrativeHistory
	lead := PickUnused(src, leads, h[models.CategoryLeads])
	act := PickUnused(src, journey.NarrativePool.Pool(action), h[action.Category()])
	env := PickUnused(src, journey.Environment.Pool(models.BandFor(s.Distance)), h[models.CategoryEnv])
	status := PickUnused(src, journey.Situations.Pool(Situation(s)), h[models.CategoryStatus])

	return Composition{
		Message: strings.Join([]string{lead.Value, act.Value, env.Value, status.Value}, " "),
		Draws: map[models.Category]Draw{
			models.CategoryLeads:  lead,
			action.Category():     act,
			models.CategoryEnv:    env,
			models.CategoryStatus: status,
		},
	}
}

// Apply records every draw of c into h. Each category resets on its own.
func (c Composition) Apply(h models.NarrativeHistory) {
	for cat, d := range c.Draws {
		Record(h, cat, d)
	}
}
