package contracts

import "time"

// ShippingStatus of an order as the order service tracks it.
type ShippingStatus string

const ShippingStatusPending ShippingStatus = "pending"

// ShipmentOrderRequest is the payload the order service accepts for a
// consolidated shipment. Amounts are whole currency units, weight is kg.
type ShipmentOrderRequest struct {
	VaultID            string         `json:"vault_id"`
	ShippingAddressID  string         `json:"shipping_address_id"`
	ShipmentWeight     float64        `json:"shipment_weight"`
	ShippingCost       int64          `json:"shipping_cost"`
	StorageCost        int64          `json:"storage_cost"`
	PlatformFee        int64          `json:"platform_fee"`
	TotalCost          int64          `json:"total_cost"`
	ShippingStatus     ShippingStatus `json:"shipping_status"`
	DestinationCountry string         `json:"destination_country"`
	VaultItemIDs       []string       `json:"vault_item_ids"`
}

// Event names on the estimate events topic.
const (
	EventEstimateCalculated  = "shipment_estimate.calculated"
	EventEstimateInvalidated = "shipment_estimate.invalidated"
	EventOrderSubmitted      = "shipment_order.submitted"
	EventItemWeightUpdated   = "vault_item.weight_updated"
)

// Event is the envelope every message on the events topic uses.
type Event struct {
	Event      string      `json:"event"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

// EstimateCalculated is published after an estimate is saved.
type EstimateCalculated struct {
	SessionID          string   `json:"session_id"`
	EstimateID         string   `json:"estimate_id"`
	DestinationCountry string   `json:"destination_country"`
	TotalWeightGrams   int64    `json:"total_weight_grams"`
	ChargeableTier     string   `json:"chargeable_tier"`
	IsCapped           bool     `json:"is_capped"`
	Currency           string   `json:"currency"`
	TotalCost          int64    `json:"total_cost"`
	VaultItemIDs       []string `json:"vault_item_ids"`
}

// EstimateInvalidated is published when a stored estimate is cleared.
type EstimateInvalidated struct {
	SessionID  string `json:"session_id"`
	EstimateID string `json:"estimate_id"`
	Reason     string `json:"reason"`
}

// OrderSubmitted is published once the order request is on the queue.
type OrderSubmitted struct {
	SessionID string               `json:"session_id"`
	MessageID string               `json:"message_id"`
	Order     ShipmentOrderRequest `json:"order"`
}

// ItemWeightUpdated is consumed from the warehouse: an item was (re)weighed.
type ItemWeightUpdated struct {
	VaultID     string `json:"vault_id"`
	VaultItemID string `json:"vault_item_id"`
	WeightGrams int64  `json:"weight_grams"`
}
