package event

import (
	"github.com/punishbig2/StreamSystems-sub002/pkg/quant"
)

// Type defines the type of event.
type Type uint16

const (
	EvMarketUpdate Type = iota + 1
	EvOrderResponse
)

// Event is the interface for all sequencer events.
type Event interface {
	GetSeq() uint64
	GetTs() quant.TimeStamp
	GetType() Type
}

// BaseEvent contains common fields for all events.
type BaseEvent struct {
	Seq uint64          `json:"seq"`
	Ts  quant.TimeStamp `json:"ts"`
}

func (e BaseEvent) GetSeq() uint64         { return e.Seq }
func (e BaseEvent) GetTs() quant.TimeStamp { return e.Ts }

// MarketEntry is one contributed order inside a market update: one side of
// one counterparty's quote. Price/Size pointers are nil when the contributor
// pulled that value.
type MarketEntry struct {
	Type    string             `json:"type"` // "BID", "OFR", "DARK"
	OrderID string             `json:"order_id"`
	Price   *quant.PriceMicros `json:"price,omitempty"`
	Size    *quant.Size        `json:"size,omitempty"`
	Firm    string             `json:"firm,omitempty"`
	User    string             `json:"user,omitempty"`
}

// MarketUpdateEvent carries the contributed market for one tenor of one
// symbol+strategy, already decoded from the wire.
type MarketUpdateEvent struct {
	BaseEvent
	Symbol   string        `json:"symbol"`
	Strategy string        `json:"strategy"`
	Tenor    string        `json:"tenor"`
	Entries  []MarketEntry `json:"entries"`
}

func (e MarketUpdateEvent) GetType() Type { return EvMarketUpdate }

// OrderResponseEvent is the broker's answer to a submit or cancel request.
type OrderResponseEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

func (e OrderResponseEvent) GetType() Type { return EvOrderResponse }
