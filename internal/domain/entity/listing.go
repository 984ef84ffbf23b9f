package entity

import "time"

// ListingContext is the slice of source listing data the validate guard
// inspects. It is owned outside the engine and supplied read-only.
type ListingContext struct {
	ID            string    `json:"id"`
	Address       string    `json:"address"`
	ListingType   string    `json:"listing_type"`
	BrokerContact string    `json:"broker_contact"`
	PhotoCount    int       `json:"photo_count"`
	CreatedAt     time.Time `json:"created_at"`
}
