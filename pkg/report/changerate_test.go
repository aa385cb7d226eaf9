package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalcChangeRate(t *testing.T) {
	tests := []struct {
		name     string
		current  float64
		previous float64
		want     string
	}{
		{"growth", 110, 100, "+10.0%"},
		{"decline", 90, 100, "-10.0%"},
		{"flat", 100, 100, "+0.0%"},
		{"zero previous positive current", 5, 0, "+∞"},
		{"zero previous zero current", 0, 0, "0%"},
		{"zero previous negative current", -3, 0, "0%"},
		{"fractional rounding", 1, 3, "-66.7%"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalcChangeRate(tt.current, tt.previous))
		})
	}
}
