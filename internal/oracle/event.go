package oracle

import (
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/pips-pilgrimage/internal/models"
)

var eventSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":       {Type: genai.TypeString},
		"description": {Type: genai.TypeString},
		"eventType":   {Type: genai.TypeString},
		"options": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"text":            {Type: genai.TypeString},
					"outcome":         {Type: genai.TypeString},
					"detailedOutcome": {Type: genai.TypeString},
					"statChanges": {
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"health": {Type: genai.TypeInteger},
							"hunger": {Type: genai.TypeInteger},
							"warmth": {Type: genai.TypeInteger},
							"morale": {Type: genai.TypeInteger},
							"fish":   {Type: genai.TypeInteger},
						},
					},
				},
				Required: []string{"text", "outcome", "detailedOutcome", "statChanges"},
			},
		},
	},
	Required: []string{"title", "description", "options"},
}

// maxGeneratedDelta bounds any single stat change a generated option may carry.
const maxGeneratedDelta = 40

func parseEvent(text string) (*models.Event, error) {
	var ev models.Event
	if err := json.Unmarshal([]byte(stripFence(text)), &ev); err != nil {
		return nil, fmt.Errorf("failed to parse event JSON: %w\nOutput was: %s", err, text)
	}
	if err := validateEvent(&ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func validateEvent(ev *models.Event) error {
	if ev.Title == "" || ev.Description == "" {
		return fmt.Errorf("generated event is missing a title or description")
	}
	if len(ev.Options) < 2 {
		return fmt.Errorf("generated event %q has %d options", ev.Title, len(ev.Options))
	}
	for i, c := range ev.Options {
		if c.Text == "" || c.DetailedOutcome == "" {
			return fmt.Errorf("generated event %q: option %d is incomplete", ev.Title, i+1)
		}
		for _, d := range []int{c.StatChanges.Health, c.StatChanges.Hunger, c.StatChanges.Warmth, c.StatChanges.Morale, c.StatChanges.Fish} {
			if d > maxGeneratedDelta || d < -maxGeneratedDelta {
				return fmt.Errorf("generated event %q: option %d changes a stat by %d", ev.Title, i+1, d)
			}
		}
	}
	return nil
}
