package models

import (
	"fmt"
	"strings"
	"time"
)

// ItemKind names one of the moderation queue lists.
type ItemKind string

const (
	KindComments    ItemKind = "comments"
	KindCorrections ItemKind = "corrections"
	KindOrders      ItemKind = "orders"
	KindWishlist    ItemKind = "wishlist"
)

// ItemKinds lists every kind in dashboard order.
var ItemKinds = []ItemKind{KindComments, KindCorrections, KindOrders, KindWishlist}

// ParseItemKind maps a route parameter onto a known kind.
func ParseItemKind(s string) (ItemKind, error) {
	k := ItemKind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range ItemKinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown moderation list %q", s)
}

// Decision is the disposition an operator applies to a pending item.
type Decision string

const (
	DecisionApproved Decision = "approved"
	DecisionRejected Decision = "rejected"
)

// ParseDecision accepts the verb and past-tense spellings used by the dashboard buttons.
func ParseDecision(s string) (Decision, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "approve", "approved", "accept", "accepted":
		return DecisionApproved, nil
	case "reject", "rejected":
		return DecisionRejected, nil
	}
	return "", fmt.Errorf("unknown moderation action %q", s)
}

// PendingItem is implemented by exactly Comment, Correction, Order and WishlistEntry.
type PendingItem interface {
	ItemID() int
	Kind() ItemKind
	pendingItem()
}

// Comment is a user comment awaiting approval.
type Comment struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	UserName  string    `json:"userName"`
	Page      string    `json:"page"`
	Content   string    `json:"content"`
	Status    string    `json:"status" gorm:"type:varchar(20);default:pending;index"`
	CreatedAt time.Time `json:"createdAt"`
}

func (c Comment) ItemID() int    { return c.ID }
func (c Comment) Kind() ItemKind { return KindComments }
func (Comment) pendingItem()     {}

// Correction is a crowdsourced edit suggested for a section of a page.
type Correction struct {
	ID               int       `json:"id" gorm:"primaryKey"`
	UserName         string    `json:"userName"`
	Page             string    `json:"page"`
	Section          string    `json:"section"`
	CurrentContent   string    `json:"currentContent"`
	SuggestedContent string    `json:"suggestedContent"`
	Status           string    `json:"status" gorm:"type:varchar(20);default:pending;index"`
	CreatedAt        time.Time `json:"createdAt"`
}

func (c Correction) ItemID() int    { return c.ID }
func (c Correction) Kind() ItemKind { return KindCorrections }
func (Correction) pendingItem()     {}

// DecisionEvent is published whenever an item leaves the moderation queue.
type DecisionEvent struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Kind      ItemKind  `json:"kind" gorm:"type:varchar(20);index"`
	ItemID    int       `json:"item_id" gorm:"index"`
	Decision  Decision  `json:"decision" gorm:"type:varchar(20)"`
	DecidedBy string    `json:"decided_by"`
	DecidedAt time.Time `json:"decided_at"`
}
