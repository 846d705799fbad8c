package models

import "time"

// Event types
const (
	EventTypeOrderSubmitted = "ORDER_SUBMITTED"
	EventTypeOrderConfirmed = "ORDER_CONFIRMED"
	EventTypeProductAdded   = "PRODUCT_ADDED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderSubmittedEvent published when a checkout reaches its terminal state
// and the order is handed to the administrator
type OrderSubmittedEvent struct {
	BaseEvent
	UserID  int64       `json:"user_id"`
	Name    string      `json:"name"`
	Phone   string      `json:"phone"`
	Address string      `json:"address"`
	Comment string      `json:"comment"`
	Items   []CartEntry `json:"items"`
	Total   int64       `json:"total"`
}

// OrderConfirmedEvent published when the administrator confirms an order
type OrderConfirmedEvent struct {
	BaseEvent
	AdminID   int64 `json:"admin_id"`
	MessageID int   `json:"message_id"`
}

// ProductAddedEvent published when the admin wizard appends a product
type ProductAddedEvent struct {
	BaseEvent
	CategoryKey string  `json:"category_key"`
	Product     Product `json:"product"`
}
