// Package oracle asks Gemini for narration and encounters. Every failure is
// logged and reported as a miss so the caller keeps its local result.
package oracle

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log"
	"strings"
	"text/template"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/pips-pilgrimage/internal/models"
	"google.golang.org/api/option"
)

//go:embed prompts/narrate.txt
var narratePrompt string

//go:embed prompts/generate_event.txt
var generateEventPrompt string

var (
	narrateTmpl = template.Must(template.New("narrate").Parse(narratePrompt))
	eventTmpl   = template.Must(template.New("generate_event").Parse(generateEventPrompt))
)

const DefaultModel = "gemini-2.5-flash"

type Oracle struct {
	client     *genai.Client
	narrator   *genai.GenerativeModel
	eventMaker *genai.GenerativeModel
}

func New(ctx context.Context, apiKey, modelName string) (*Oracle, error) {
	if modelName == "" {
		modelName = DefaultModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	narrator := client.GenerativeModel(modelName)
	narrator.SetTemperature(0.9)
	narrator.SetTopP(0.95)

	eventMaker := client.GenerativeModel(modelName)
	eventMaker.SetTemperature(0.9)
	eventMaker.ResponseMIMEType = "application/json"
	eventMaker.ResponseSchema = eventSchema

	return &Oracle{client: client, narrator: narrator, eventMaker: eventMaker}, nil
}

func (o *Oracle) Close() {
	o.client.Close()
}

// NarrativeLine returns a freshly written line for the turn just resolved.
func (o *Oracle) NarrativeLine(ctx context.Context, s models.GameState, action models.Action, journey *models.Journey) (string, bool) {
	prompt, err := render(narrateTmpl, newPromptData(s, journey, action))
	if err != nil {
		log.Printf("Warning: render narration prompt: %v", err)
		return "", false
	}
	text, err := o.generate(ctx, o.narrator, prompt)
	if err != nil {
		log.Printf("Warning: remote narration failed: %v", err)
		return "", false
	}
	line := cleanLine(text)
	if line == "" {
		log.Printf("Warning: remote narration was empty")
		return "", false
	}
	return line, true
}

// GeneratedEvent returns a new encounter suited to s.
func (o *Oracle) GeneratedEvent(ctx context.Context, s models.GameState, journey *models.Journey) (*models.Event, bool) {
	prompt, err := render(eventTmpl, newPromptData(s, journey, ""))
	if err != nil {
		log.Printf("Warning: render event prompt: %v", err)
		return nil, false
	}
	text, err := o.generate(ctx, o.eventMaker, prompt)
	if err != nil {
		log.Printf("Warning: remote event failed: %v", err)
		return nil, false
	}
	ev, err := parseEvent(text)
	if err != nil {
		log.Printf("Warning: %v", err)
		return nil, false
	}
	return ev, true
}

func (o *Oracle) generate(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content returned from Gemini")
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type from Gemini")
	}
	return string(text), nil
}

type promptData struct {
	Target      int
	Title       string
	Flavor      string
	Voice       string
	Day         int
	Distance    int
	Environment string
	Blizzard    bool
	Health      int
	Hunger      int
	Warmth      int
	Morale      int
	Fish        int
	Action      models.Action
}

var bandDescriptions = map[models.Band]string{
	models.BandLowlands:   "the flat, windswept coastal lowlands, with the sea still in sight",
	models.BandHighPasses: "the high passes, a maze of black rock, crevasses and blue ice",
	models.BandSummit:     "the approach to the summit, where the air is thin and the world falls away below",
}

func newPromptData(s models.GameState, journey *models.Journey, action models.Action) promptData {
	return promptData{
		Target:      models.TargetDistance,
		Title:       journey.Title,
		Flavor:      journey.Flavor,
		Voice:       journey.Voice,
		Day:         s.Day,
		Distance:    s.Distance,
		Environment: bandDescriptions[models.BandFor(s.Distance)],
		Blizzard:    s.IsBlizzard,
		Health:      s.Health,
		Hunger:      s.Hunger,
		Warmth:      s.Warmth,
		Morale:      s.Morale,
		Fish:        s.Inventory.Fish,
		Action:      action,
	}
}

func render(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// cleanLine strips the wrapping models like to add around a single line.
func cleanLine(text string) string {
	line := strings.TrimSpace(stripFence(text))
	line = strings.Trim(line, "\"")
	return strings.Join(strings.Fields(line), " ")
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
