package quant

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/punishbig2/StreamSystems-sub002/pkg/safe"
)

// PriceMicros represents a price multiplied by 1,000,000 (10^6).
// E.g., a 1.2345 EUR/USD vol price = 1,234,500 PriceMicros.
type PriceMicros int64

// Size represents an order size in millions of notional.
// FX options sizes are whole millions; no sub-unit scaling is needed.
type Size int64

// TimeStamp represents Unix Microseconds.
type TimeStamp int64

const (
	PriceScale = 1000000
)

// ToPriceMicros converts a float64 (from external API) to PriceMicros.
// Note: Only used at the boundary. Internal logic uses PriceMicros directly.
func ToPriceMicros(f float64) PriceMicros {
	return PriceMicros(math.Round(f * PriceScale))
}

func (p PriceMicros) String() string {
	return fmt.Sprintf("%.6f", float64(p)/PriceScale)
}

// Format renders the price at the given display precision. This is the
// canonical formatting used everywhere a price is shown or compared, so
// that depth aggregation and the UI always agree on "the same price".
func (p PriceMicros) Format(decimals int) string {
	return decimal.New(int64(p), -6).StringFixed(int32(decimals))
}

// SamePrice reports whether two prices are equal after canonical display
// formatting. Upstream feeds go through float64 at some hop, so raw micro
// equality is too strict; formatting at display precision absorbs the noise.
func SamePrice(a, b PriceMicros, decimals int) bool {
	return a.Format(decimals) == b.Format(decimals)
}

// Mid returns the midpoint of a bid/offer pair, rounding half away from zero
// on an odd micro sum. All mid computations in the system go through here so
// reconciliation and display never disagree by one micro.
func Mid(bid, ofr PriceMicros) PriceMicros {
	sum := safe.SafeAdd(int64(bid), int64(ofr))
	half := sum / 2
	if sum%2 != 0 {
		if sum > 0 {
			half++
		} else {
			half--
		}
	}
	return PriceMicros(half)
}

// SpreadOf returns ofr - bid. Negative for inverted markets.
func SpreadOf(bid, ofr PriceMicros) PriceMicros {
	return PriceMicros(safe.SafeSub(int64(ofr), int64(bid)))
}

// PricePtr returns a pointer to a copy of p. Nullable price plumbing helper.
func PricePtr(p PriceMicros) *PriceMicros {
	return &p
}

// SizePtr returns a pointer to a copy of s.
func SizePtr(s Size) *Size {
	return &s
}

// NextSeq generates the next sequence number atomically.
func NextSeq(ptr *uint64) uint64 {
	return atomic.AddUint64(ptr, 1)
}

// ParseTimeStamp converts a string (ms) to TimeStamp (micros).
func ParseTimeStamp(s string) (TimeStamp, error) {
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return TimeStamp(ms * 1000), nil
}

// ToPriceMicrosStr converts a numeric string to PriceMicros without using
// float64. Rule #1: No Float. Using fixed-point string parsing.
func ToPriceMicrosStr(s string) PriceMicros {
	return PriceMicros(parseFixedPoint(s, 6))
}

// ToSizeStr converts a numeric string to a Size (whole millions). Fractional
// digits sent by sloppy upstreams are truncated.
func ToSizeStr(s string) Size {
	return Size(parseFixedPoint(s, 0))
}

// parseFixedPoint parses a numeric string into an int64 with the given
// precision. E.g., parseFixedPoint("1.23", 6) -> 1,230,000.
func parseFixedPoint(s string, precision int) int64 {
	if s == "" || s == "null" {
		return 0
	}

	parts := []string{s}
	if dotIdx := strings.IndexByte(s, '.'); dotIdx != -1 {
		parts = []string{s[:dotIdx], s[dotIdx+1:]}
	}

	// 1. Parse Integer Part
	intPart, _ := strconv.ParseInt(parts[0], 10, 64)
	for i := 0; i < precision; i++ {
		intPart *= 10
	}

	if len(parts) < 2 {
		return intPart
	}

	// 2. Parse Fraction Part
	fracStr := parts[1]
	if len(fracStr) > precision {
		fracStr = fracStr[:precision]
	}
	fracPart, _ := strconv.ParseInt(fracStr, 10, 64)

	// Pad fraction part with zeros if shorter than precision
	for i := len(fracStr); i < precision; i++ {
		fracPart *= 10
	}

	// 3. Handle Negative
	if strings.HasPrefix(parts[0], "-") {
		return intPart - fracPart
	}
	return intPart + fracPart
}
