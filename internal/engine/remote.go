package engine

import (
	"context"

	"github.com/tatianab/pips-pilgrimage/internal/models"
)

// Remote is an optional narrative service. Both calls report false on any
// failure and the local result is kept.
type Remote interface {
	NarrativeLine(ctx context.Context, s models.GameState, action models.Action, journey *models.Journey) (string, bool)
	GeneratedEvent(ctx context.Context, s models.GameState, journey *models.Journey) (*models.Event, bool)
}
