package models

import (
	"encoding/json"
	"time"
)

// WishlistEntry links a user to a product they saved.
type WishlistEntry struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	UserID    int       `json:"userId"`
	ProductID int       `json:"productId"`
	User      *User     `json:"User,omitempty"`
	Product   *Product  `json:"Product,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (w WishlistEntry) ItemID() int    { return w.ID }
func (w WishlistEntry) Kind() ItemKind { return KindWishlist }
func (WishlistEntry) pendingItem()     {}

// UnmarshalJSON accepts loosely formatted ids and timestamps.
func (w *WishlistEntry) UnmarshalJSON(data []byte) error {
	type alias WishlistEntry
	aux := struct {
		*alias
		ID        FlexibleID `json:"id"`
		CreatedAt Timestamp  `json:"createdAt"`
	}{alias: (*alias)(w)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	w.ID = int(aux.ID)
	w.CreatedAt = aux.CreatedAt.Time
	return nil
}
