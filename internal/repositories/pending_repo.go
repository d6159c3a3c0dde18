package repositories

import (
	"context"

	"tokodash/internal/models"
)

// PendingItems is one snapshot of every moderation list.
type PendingItems struct {
	Comments    []models.Comment
	Corrections []models.Correction
	Orders      []models.Order
	Wishlist    []models.WishlistEntry
}

// PendingItemSource defines where the moderation queue is populated from.
type PendingItemSource interface {
	LoadPending(ctx context.Context) (*PendingItems, error)
}
