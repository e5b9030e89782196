package domain

import (
	"fmt"

	"github.com/punishbig2/StreamSystems-sub002/pkg/quant"
)

// OrderType identifies the side or channel of an order.
type OrderType uint8

const (
	InvalidOrder OrderType = iota
	Bid
	Ofr
	DarkPool
)

var orderTypeNames = map[OrderType]string{
	InvalidOrder: "invalid",
	Bid:          "bid",
	Ofr:          "ofr",
	DarkPool:     "dark-pool",
}

func (t OrderType) String() string {
	name, ok := orderTypeNames[t]
	if !ok {
		return "unknown"
	}
	return name
}

// ParseOrderType maps a wire side tag to an OrderType.
func ParseOrderType(s string) OrderType {
	switch s {
	case "BID", "bid":
		return Bid
	case "OFR", "ofr", "OFFER":
		return Ofr
	case "DARK", "dark":
		return DarkPool
	default:
		return InvalidOrder
	}
}

// Order is one side (bid or offer) of a quote at one tenor.
// Price == nil means "no quote on this side"; such an order never enters
// mid/spread/inversion computation. An Order is exclusively owned by the Row
// holding it and is never aliased across rows: every mutation goes through a
// cloned copy.
type Order struct {
	OrderID  string             `json:"order_id"`
	Tenor    string             `json:"tenor"`
	Symbol   string             `json:"symbol"`
	Strategy string             `json:"strategy"`
	User     string             `json:"user"`
	Firm     string             `json:"firm,omitempty"`
	Price    *quant.PriceMicros `json:"price,omitempty"`
	Size     *quant.Size        `json:"size,omitempty"`
	Type     OrderType          `json:"type"`
	Status   OrderStatus        `json:"status"`
}

// NewEmptyOrder creates the unquoted order a row starts with for a tenor that
// has no market yet.
func NewEmptyOrder(symbol, strategy, tenor string, typ OrderType) Order {
	return Order{
		Tenor:    tenor,
		Symbol:   symbol,
		Strategy: strategy,
		Type:     typ,
		Status:   StatusNone,
	}
}

// HasPrice reports whether the side is quoted.
func (o Order) HasPrice() bool {
	return o.Price != nil
}

// Computable reports whether the order is acceptable for mid/spread
// computation: it must be quoted, and either not cancelled or carrying a
// local edit (a cancelled order the user started re-editing still counts).
func (o Order) Computable() bool {
	if o.Price == nil {
		return false
	}
	return !o.Status.Has(StatusCancelled) || o.Status.Edited()
}

// Clone returns a deep copy; pointer fields point at fresh values.
func (o Order) Clone() Order {
	out := o
	if o.Price != nil {
		p := *o.Price
		out.Price = &p
	}
	if o.Size != nil {
		s := *o.Size
		out.Size = &s
	}
	return out
}

// Equal reports deep value equality, comparing through the pointers.
func (o Order) Equal(other Order) bool {
	if o.OrderID != other.OrderID || o.Tenor != other.Tenor ||
		o.Symbol != other.Symbol || o.Strategy != other.Strategy ||
		o.User != other.User || o.Firm != other.Firm ||
		o.Type != other.Type || o.Status != other.Status {
		return false
	}
	if !samePricePtr(o.Price, other.Price) {
		return false
	}
	return sameSizePtr(o.Size, other.Size)
}

func samePricePtr(a, b *quant.PriceMicros) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func sameSizePtr(a, b *quant.Size) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Better returns the better-priced of two orders of the same side: higher
// price wins for bids, lower for offers, and an unquoted side always loses.
// Comparing orders of different types, or Invalid/DarkPool orders, is a
// caller bug and panics.
func Better(a, b Order) Order {
	if a.Type != b.Type {
		panic(fmt.Sprintf("CORE_INVALID_COMPARISON: %s vs %s", a.Type, b.Type))
	}
	if a.Type != Bid && a.Type != Ofr {
		panic(fmt.Sprintf("CORE_INVALID_COMPARISON: cannot rank %s orders", a.Type))
	}
	if a.Price == nil {
		return b
	}
	if b.Price == nil {
		return a
	}
	if a.Type == Bid {
		if *a.Price >= *b.Price {
			return a
		}
		return b
	}
	if *a.Price <= *b.Price {
		return a
	}
	return b
}

// Personality is the identity context of the local user, passed explicitly
// to whatever needs to decide ownership. Never mutated by the core.
type Personality struct {
	Email    string
	Firm     string
	IsBroker bool
}

// PersonalityStatus derives the ownership flags an incoming order gets
// relative to the local user.
func (o Order) PersonalityStatus(p Personality) OrderStatus {
	status := StatusNone
	if o.User != "" && o.User == p.Email {
		status = status.With(StatusOwned)
	} else {
		status = status.With(StatusNotOwned)
	}
	if o.Firm != "" && o.Firm == p.Firm {
		status = status.With(StatusSameBank)
	}
	return status
}
