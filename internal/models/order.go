package models

import (
	"encoding/json"
	"time"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending  OrderStatus = "pending"
	OrderApproved OrderStatus = "approved"
	OrderRejected OrderStatus = "rejected"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderApproved, OrderRejected:
		return true
	}
	return false
}

// Order represents a customer order as served by the shop API.
// User and Product are capitalised in JSON to match the backend payloads.
type Order struct {
	ID              int         `json:"id" gorm:"primaryKey"`
	UserID          int         `json:"userId"`
	ProductID       int         `json:"productId"`
	User            *User       `json:"User,omitempty"`
	Product         *Product    `json:"Product,omitempty"`
	Quantity        int         `json:"quantity"`
	UnitPrice       float64     `json:"unitPrice"`
	TotalPrice      float64     `json:"totalPrice"`
	ShippingAddress string      `json:"shippingAddress"`
	Status          OrderStatus `json:"status" gorm:"type:varchar(20);default:pending;index"`
	CreatedAt       time.Time   `json:"createdAt"`
}

func (o Order) ItemID() int    { return o.ID }
func (o Order) Kind() ItemKind { return KindOrders }
func (Order) pendingItem()     {}

// UnmarshalJSON accepts loosely formatted ids and timestamps.
func (o *Order) UnmarshalJSON(data []byte) error {
	type alias Order
	aux := struct {
		*alias
		ID        FlexibleID `json:"id"`
		CreatedAt Timestamp  `json:"createdAt"`
	}{alias: (*alias)(o)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	o.ID = int(aux.ID)
	o.CreatedAt = aux.CreatedAt.Time
	return nil
}
