// Package engine turns player input into new expedition states.
package engine

import (
	"fmt"

	"github.com/tatianab/pips-pilgrimage/internal/models"
	"github.com/tatianab/pips-pilgrimage/internal/narrator"
	"github.com/tatianab/pips-pilgrimage/internal/rng"
)

const (
	blizzardClearChance = 0.6
	blizzardStartChance = 0.2
	restEatBelow        = 70
	fishMeal            = 35
	maxForageCatch      = 3
)

const (
	blizzardClearedText = "The screaming winds subside at last, leaving a deafening quiet. "
	ateFishText         = "The taste of the dried fish is oily and rich, sending a wave of strength through your shivering frame. "
	forageEmptyText     = "The hunt is fruit-less; the ice remains stubbornly empty of life. "
	forageCaughtFormat  = "Your patience is rewarded as you pull %d silver-finned fish from the ice. "
)

// Turn describes how one action was resolved.
type Turn struct {
	Action      models.Action
	Prefix      string // fixed outcome sentences placed before the narration
	Composition narrator.Composition
	Event       *models.Event // fixed event crossed by this move, if any
}

// Resolve applies action to s and returns the next state. s is not modified.
//
// Random draws happen in a fixed order: the blizzard clear roll, the action's
// own rolls, then the four narration picks.
func Resolve(src rng.Source, s models.GameState, action models.Action, journey *models.Journey, leads []string) (models.GameState, Turn) {
	next := s.Clone()
	turn := Turn{Action: action}

	if next.IsBlizzard && src.Float64() < blizzardClearChance {
		next.IsBlizzard = false
		turn.Prefix = blizzardClearedText
	}

	switch action {
	case models.ActionTravel:
		next.Distance += models.MinTravelGain + src.IntN(models.MaxTravelGain-models.MinTravelGain+1)
		next.Hunger -= 14
		next.Warmth -= 12
		next.Morale -= 6
		if src.Float64() < blizzardStartChance {
			next.IsBlizzard = true
		}
	case models.ActionRest:
		next.Hunger -= 10
		next.Warmth += 35
		next.Health += 8
		next.Morale += 12
		if next.Inventory.Fish > 0 && next.Hunger < restEatBelow {
			next.Inventory.Fish--
			next.Hunger += fishMeal
			turn.Prefix += ateFishText
		}
	case models.ActionForage:
		next.Hunger -= 12
		next.Warmth -= 18
		caught := src.IntN(maxForageCatch + 1)
		next.Inventory.Fish += caught
		turn.Prefix = forageText(caught) + turn.Prefix
	}

	clampResources(&next)
	next.Day++

	turn.Composition = narrator.Compose(src, next, action, journey, leads)
	turn.Composition.Apply(next.NarrativeHistory)
	next.LastMessage = turn.Prefix + turn.Composition.Message

	next.ActiveEvent = nil
	next.Status = models.StatusPlaying
	if beat := crossedBeat(journey, s.Distance, next.Distance); beat != nil {
		ev := beat.Event
		turn.Event = &ev
		next.ActiveEvent = &ev
		next.Status = models.StatusEvent
	}
	settle(&next)
	return next, turn
}

func forageText(caught int) string {
	if caught == 0 {
		return forageEmptyText
	}
	return fmt.Sprintf(forageCaughtFormat, caught)
}

// settle moves s to a terminal status when one applies. Loss is checked
// before the win so a player who starves on the last step still loses.
func settle(s *models.GameState) {
	switch {
	case s.Lost():
		s.Status = models.StatusGameOver
	case s.Distance >= models.TargetDistance:
		s.Status = models.StatusWin
	default:
		return
	}
	s.ActiveEvent = nil
}

func clampResources(s *models.GameState) {
	s.Health = clamp(s.Health)
	s.Hunger = clamp(s.Hunger)
	s.Warmth = clamp(s.Warmth)
	s.Morale = clamp(s.Morale)
	if s.Inventory.Fish < 0 {
		s.Inventory.Fish = 0
	}
}

func clamp(v int) int {
	return max(0, min(100, v))
}
