package converter

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   float64
	}{
		{"550", 550},
		{"99.995", 100},
		{"12.344", 12.34},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			if got := FormatAmount(decimal.RequireFromString(tt.amount)); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	if got := ParseAmount(0.1 + 0.2); !got.Equal(decimal.RequireFromString("0.3")) {
		t.Errorf("expected 0.3, got %s", got)
	}
}
