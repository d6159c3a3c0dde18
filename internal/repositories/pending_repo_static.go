package repositories

import (
	"context"

	"tokodash/internal/models"
)

// StaticPendingSource serves a fixed set of sample items.
type StaticPendingSource struct {
	items PendingItems
}

// NewStaticPendingSource creates a source returning items on every load.
func NewStaticPendingSource(items PendingItems) *StaticPendingSource {
	return &StaticPendingSource{items: items}
}

// NewSamplePendingSource creates a source with the built-in sample data.
func NewSamplePendingSource() *StaticPendingSource {
	return NewStaticPendingSource(SamplePendingItems())
}

// LoadPending returns a copy so callers may mutate the lists freely.
func (s *StaticPendingSource) LoadPending(ctx context.Context) (*PendingItems, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &PendingItems{
		Comments:    append([]models.Comment(nil), s.items.Comments...),
		Corrections: append([]models.Correction(nil), s.items.Corrections...),
		Orders:      append([]models.Order(nil), s.items.Orders...),
		Wishlist:    append([]models.WishlistEntry(nil), s.items.Wishlist...),
	}, nil
}

// SamplePendingItems is the data the dashboard shows without a database:
// two corrections, two orders, no comments and no wishlist entries.
func SamplePendingItems() PendingItems {
	return PendingItems{
		Corrections: []models.Correction{
			{
				ID:               1,
				UserName:         "zzz",
				Page:             "World War II Tanks - German Tiger I",
				Section:          "Technical Specifications",
				CurrentContent:   "The Tiger I was heavily armored but mechanically complex and expensive to produce.",
				SuggestedContent: "The Tiger I was heavily armored but mechanically complex and expensive to produce. Only 1,347 units were manufactured between 1942-1944.",
				Status:           "pending",
			},
			{
				ID:               2,
				UserName:         "Tank_Historian_92",
				Page:             "Cold War Tanks - Soviet T-72",
				Section:          "Combat History",
				CurrentContent:   "The T-72 was the most produced tank of the Cold War era.",
				SuggestedContent: "The T-72 was the most produced tank of the Cold War era, with over 25,000 units manufactured and widely exported to Warsaw Pact allies.",
				Status:           "pending",
			},
		},
		Orders: []models.Order{
			{
				ID:              101,
				User:            &models.User{Username: "tank_collector_47"},
				Product:         &models.Product{Name: "T-34 Tank Model Kit", Price: 45.99},
				Quantity:        1,
				UnitPrice:       45.99,
				TotalPrice:      45.99,
				ShippingAddress: "1247 Military Ave, Fort Knox, KY 40121",
				Status:          models.OrderPending,
			},
			{
				ID:              102,
				User:            &models.User{Username: "history_buff_mike"},
				Product:         &models.Product{Name: "Tiger Tank T-Shirt", Price: 24.99},
				Quantity:        2,
				UnitPrice:       24.99,
				TotalPrice:      49.98,
				ShippingAddress: "892 Veterans Blvd, San Antonio, TX 78234",
				Status:          models.OrderPending,
			},
		},
	}
}
