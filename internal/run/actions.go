package run

import (
	"github.com/punishbig2/StreamSystems-sub002/internal/domain"
	"github.com/punishbig2/StreamSystems-sub002/pkg/quant"
)

// ActionKind tags a reducer action. Unknown kinds are a no-op by contract.
type ActionKind uint8

const (
	ActUnknown ActionKind = iota
	ActSetTable
	ActUpdateOrder
	ActSetPrice
	ActSetSize
	ActSetDarkPrice
	ActActivateRow
	ActActivateOrder
	ActDeactivateOrder
	ActDeactivateAll
	ActRemoveOrder
	ActRemoveAllBids
	ActRemoveAllOfrs
	ActSetDefaultBidSize
	ActSetDefaultOfrSize
	ActSetLoading
	ActOrderSubmitted
	ActCancelRequested
	ActOrderConfirmed
	ActOrderRejected
)

var actionKindNames = map[ActionKind]string{
	ActUnknown:           "unknown",
	ActSetTable:          "set-table",
	ActUpdateOrder:       "update-order",
	ActSetPrice:          "set-price",
	ActSetSize:           "set-size",
	ActSetDarkPrice:      "set-dark-price",
	ActActivateRow:       "activate-row",
	ActActivateOrder:     "activate-order",
	ActDeactivateOrder:   "deactivate-order",
	ActDeactivateAll:     "deactivate-all",
	ActRemoveOrder:       "remove-order",
	ActRemoveAllBids:     "remove-all-bids",
	ActRemoveAllOfrs:     "remove-all-ofrs",
	ActSetDefaultBidSize: "set-default-bid-size",
	ActSetDefaultOfrSize: "set-default-ofr-size",
	ActSetLoading:        "set-loading",
	ActOrderSubmitted:    "order-submitted",
	ActCancelRequested:   "cancel-requested",
	ActOrderConfirmed:    "order-confirmed",
	ActOrderRejected:     "order-rejected",
}

func (k ActionKind) String() string {
	name, ok := actionKindNames[k]
	if !ok {
		return "unknown"
	}
	return name
}

// Action is one reducer input. Only the fields relevant to Kind are read.
type Action struct {
	Kind    ActionKind
	RowID   string
	Side    domain.OrderType
	Order   domain.Order
	OrderID string
	Price   *quant.PriceMicros
	Size    *quant.Size
	Loading bool
	Table   domain.PodTable
}
