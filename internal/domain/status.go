package domain

import (
	"strings"
)

// OrderStatus is a set of orthogonal boolean facts about one order, stored as
// bit flags. Flags are independent; nothing here enforces exclusivity (an
// order may transiently carry Active|Cancelled from a raced feed), callers
// resolve such states through the named transitions below.
type OrderStatus uint16

const (
	StatusActive OrderStatus = 1 << iota
	StatusCancelled
	StatusOwned
	StatusNotOwned
	StatusPreFilled
	StatusPriceEdited
	StatusSizeEdited
	StatusHaveOrders
	StatusHasDepth
	StatusBeingCreated
	StatusBeingCancelled
	StatusBeingLoaded
	StatusFullDarkPool
	StatusSameBank

	StatusNone OrderStatus = 0
)

var orderStatusNames = map[OrderStatus]string{
	StatusActive:         "active",
	StatusCancelled:      "cancelled",
	StatusOwned:          "owned",
	StatusNotOwned:       "not-owned",
	StatusPreFilled:      "pre-filled",
	StatusPriceEdited:    "price-edited",
	StatusSizeEdited:     "size-edited",
	StatusHaveOrders:     "have-orders",
	StatusHasDepth:       "has-depth",
	StatusBeingCreated:   "being-created",
	StatusBeingCancelled: "being-cancelled",
	StatusBeingLoaded:    "being-loaded",
	StatusFullDarkPool:   "full-dark-pool",
	StatusSameBank:       "same-bank",
}

// Has reports whether every flag in mask is set.
func (s OrderStatus) Has(mask OrderStatus) bool {
	return s&mask == mask
}

// Any reports whether at least one flag in mask is set.
func (s OrderStatus) Any(mask OrderStatus) bool {
	return s&mask != 0
}

// With returns s with the given flags set.
func (s OrderStatus) With(mask OrderStatus) OrderStatus {
	return s | mask
}

// Without returns s with the given flags cleared.
func (s OrderStatus) Without(mask OrderStatus) OrderStatus {
	return s &^ mask
}

// Edited reports whether the order carries a pending local edit.
func (s OrderStatus) Edited() bool {
	return s.Any(StatusPriceEdited | StatusSizeEdited)
}

// InFlight reports whether the order has a request outstanding against the
// broker (creation, cancellation or initial load).
func (s OrderStatus) InFlight() bool {
	return s.Any(StatusBeingCreated | StatusBeingCancelled | StatusBeingLoaded)
}

// ActivateIfPossible is the single cross-bit transition in the status model:
// a cancelled order that receives a user edit drops Cancelled and gains both
// edit flags, making it eligible for submission again. Statuses without
// Cancelled pass through unchanged.
func (s OrderStatus) ActivateIfPossible() OrderStatus {
	if !s.Has(StatusCancelled) {
		return s
	}
	return s.Without(StatusCancelled).With(StatusPriceEdited | StatusSizeEdited)
}

// String implements Stringer. Flags render pipe-joined in bit order.
func (s OrderStatus) String() string {
	if s == StatusNone {
		return "none"
	}
	var parts []string
	for bit := OrderStatus(1); bit != 0 && bit <= s; bit <<= 1 {
		if s&bit == 0 {
			continue
		}
		name, ok := orderStatusNames[bit]
		if !ok {
			name = "unknown"
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, "|")
}
