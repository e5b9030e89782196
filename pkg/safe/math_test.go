package safe

import (
	"math"
	"testing"
)

func TestSafeAdd(t *testing.T) {
	tests := []struct {
		name string
		a, b int64
		want int64
	}{
		{"simple", 10, 20, 30},
		{"negative", -10, 4, -6},
		{"upper boundary", math.MaxInt64 - 1, 1, math.MaxInt64},
		{"lower boundary", math.MinInt64 + 1, -1, math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeAdd(tt.a, tt.b); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSafeSub(t *testing.T) {
	tests := []struct {
		name string
		a, b int64
		want int64
	}{
		{"simple", 30, 10, 20},
		{"through zero", 5, 12, -7},
		{"lower boundary", math.MinInt64 + 1, 1, math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SafeSub(tt.a, tt.b); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSafeMathPanics(t *testing.T) {
	tests := []struct {
		name string
		call func()
	}{
		{"add overflow", func() { SafeAdd(math.MaxInt64, 1) }},
		{"add underflow", func() { SafeAdd(math.MinInt64, -1) }},
		{"sub overflow", func() { SafeSub(math.MaxInt64, -1) }},
		{"sub underflow", func() { SafeSub(math.MinInt64, 1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("Should have panicked")
				}
			}()
			tt.call()
		})
	}
}
