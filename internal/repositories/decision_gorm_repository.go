package repositories

import (
	"context"
	"fmt"

	"tokodash/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMDecisionRepository is a GORM implementation of DecisionRepository.
type GORMDecisionRepository struct {
	db *gorm.DB
}

// NewGORMDecisionRepository creates a new instance of GORMDecisionRepository.
func NewGORMDecisionRepository(db *gorm.DB) *GORMDecisionRepository {
	return &GORMDecisionRepository{db: db}
}

// Apply stores event and moves the named comment, correction or order out of
// the pending state. Wishlist decisions are recorded only.
func (r *GORMDecisionRepository) Apply(ctx context.Context, event models.DecisionEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&event)
		if res.Error != nil {
			return fmt.Errorf("failed to record decision %s: %w", event.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var model interface{}
		switch event.Kind {
		case models.KindComments:
			model = &models.Comment{}
		case models.KindCorrections:
			model = &models.Correction{}
		case models.KindOrders:
			model = &models.Order{}
		case models.KindWishlist:
			return nil
		default:
			return fmt.Errorf("unknown moderation list %q", event.Kind)
		}

		if err := tx.Model(model).
			Where("id = ? AND status = ?", event.ItemID, "pending").
			Update("status", string(event.Decision)).Error; err != nil {
			return fmt.Errorf("failed to update %s %d: %w", event.Kind, event.ItemID, err)
		}
		return nil
	})
}

// GetAll retrieves every recorded decision, oldest first.
func (r *GORMDecisionRepository) GetAll(ctx context.Context) ([]models.DecisionEvent, error) {
	var events []models.DecisionEvent
	if err := r.db.WithContext(ctx).Order("decided_at").Find(&events).Error; err != nil {
		return nil, fmt.Errorf("failed to get decisions: %w", err)
	}
	return events, nil
}
