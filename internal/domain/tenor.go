package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Canonical day-based tenor ordering. The legacy front end carried two
// divergent unit tables (week-based and day-based multipliers); this is the
// single canonical one. Calendar-exact day counts do not matter here, only a
// stable total order for display.
var tenorUnitDays = map[byte]int{
	'D': 1,
	'W': 7,
	'M': 30,
	'Y': 365,
}

// Overnight-style tenors sort ahead of every dated tenor.
var specialTenorDays = map[string]int{
	"ON": 0,
	"TN": 1,
	"SN": 2,
}

// TenorDays converts a tenor bucket ("1W", "3M", "ON") to a day count used
// purely for ordering. The second return is false for malformed tenors.
func TenorDays(tenor string) (int, bool) {
	t := strings.ToUpper(strings.TrimSpace(tenor))
	if days, ok := specialTenorDays[t]; ok {
		return days, true
	}
	if len(t) < 2 {
		return 0, false
	}
	unit, ok := tenorUnitDays[t[len(t)-1]]
	if !ok {
		return 0, false
	}
	count, err := strconv.Atoi(t[:len(t)-1])
	if err != nil || count <= 0 {
		return 0, false
	}
	return count * unit, true
}

// CompareTenors orders two tenors for display: -1, 0 or +1. Malformed tenors
// sort after well-formed ones, among themselves lexicographically, so a bad
// bucket from upstream degrades to a stable position instead of a panic.
func CompareTenors(a, b string) int {
	da, oka := TenorDays(a)
	db, okb := TenorDays(b)
	switch {
	case oka && okb:
		if da != db {
			if da < db {
				return -1
			}
			return 1
		}
		return 0
	case oka:
		return -1
	case okb:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// SortTenors sorts tenors in place into display order.
func SortTenors(tenors []string) {
	sort.SliceStable(tenors, func(i, j int) bool {
		return CompareTenors(tenors[i], tenors[j]) < 0
	})
}

// RowID synthesizes the table key for one tenor of one symbol+strategy.
// Structured join, unique within the book.
func RowID(symbol, strategy, tenor string) string {
	return symbol + "#" + strategy + "#" + tenor
}

// BookID keys a whole pod table (one symbol+strategy).
func BookID(symbol, strategy string) string {
	return symbol + "#" + strategy
}
