package repositories

import (
	"context"

	"tokodash/internal/models"
)

// DecisionRepository records moderation decisions and applies them to the
// stored queue.
type DecisionRepository interface {
	// Apply records event and updates the status of the item it names.
	// Applying an event twice has no further effect.
	Apply(ctx context.Context, event models.DecisionEvent) error
	GetAll(ctx context.Context) ([]models.DecisionEvent, error)
}
