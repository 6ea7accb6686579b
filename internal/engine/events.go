package engine

import "github.com/tatianab/pips-pilgrimage/internal/models"

// crossedBeat returns the first beat, in journey order, whose threshold lies
// in (pre, post].
func crossedBeat(journey *models.Journey, pre, post int) *models.Beat {
	for i := range journey.FixedEvents {
		b := &journey.FixedEvents[i]
		if pre < b.Distance && b.Distance <= post {
			return b
		}
	}
	return nil
}

// NextMilestone returns the threshold of the next fixed event ahead of s.
func NextMilestone(s models.GameState, journey *models.Journey) (int, bool) {
	for _, b := range journey.FixedEvents {
		if b.Distance > s.Distance {
			return b.Distance, true
		}
	}
	return 0, false
}

// ApplyChoice settles the active event with choice. Choices take no time.
func ApplyChoice(s models.GameState, choice models.Choice) models.GameState {
	next := s.Clone()
	c := choice.StatChanges
	next.Health += c.Health
	next.Hunger += c.Hunger
	next.Warmth += c.Warmth
	next.Morale += c.Morale
	next.Inventory.Fish += c.Fish
	clampResources(&next)

	next.LastMessage = choice.DetailedOutcome
	next.ActiveEvent = nil
	next.Status = models.StatusPlaying
	settle(&next)
	return next
}
