// Package safe provides overflow-checked int64 arithmetic for the
// fixed-point money types. An overflow in price or size math always means a
// corrupt upstream value or a misplaced scale factor, so the helpers panic
// rather than wrap or saturate: a wrong price shown to a trader is worse
// than a halt.
package safe

import (
	"math"
)

// SafeAdd returns a+b, panicking on int64 overflow.
func SafeAdd(a, b int64) int64 {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		panic("CORE_SAFE_ADD_OVERFLOW")
	}
	return a + b
}

// SafeSub returns a-b, panicking on int64 overflow.
func SafeSub(a, b int64) int64 {
	if (b > 0 && a < math.MinInt64+b) || (b < 0 && a > math.MaxInt64+b) {
		panic("CORE_SAFE_SUB_OVERFLOW")
	}
	return a - b
}
