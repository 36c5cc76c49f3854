package staking

import (
	"errors"
	"testing"
)

func TestCalculateReward(t *testing.T) {
	tests := []struct {
		name      string
		principal uint64
		duration  int64
		want      uint64
	}{
		{"1 token, 90 days, 20%", 1_000_000_000, 7_776_000, 49_315_068},
		{"1 token, 30 days, 10%", 1_000_000_000, 2_592_000, 8_219_178},
		{"1 token, 7 days, 5%", 1_000_000_000, 604_800, 958_904},
		{"5 tokens, just under 30 days, 5%", 5_000_000_000, 2_591_999, 20_547_937},
		{"1.5 tokens, mid-tier duration", 1_500_000_000, 10_000_000, 95_129_375},
		{"full year at 20% pays exactly the rate", 123_456_789_000, 31_536_000, 24_691_357_800},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateReward(tt.principal, tt.duration)
			if err != nil {
				t.Fatalf("CalculateReward(%d, %d) failed: %v", tt.principal, tt.duration, err)
			}
			if got != tt.want {
				t.Errorf("CalculateReward(%d, %d) = %d, want %d",
					tt.principal, tt.duration, got, tt.want)
			}
		})
	}
}

func TestCalculateReward_TruncatesEachDivision(t *testing.T) {
	// principal*rate is divided down before multiplying by the duration;
	// reordering would change the result at the margins.
	// floor(1_000_000_005 * 5/100) = 50_000_000 (the trailing 5 truncates)
	got, err := CalculateReward(1_000_000_005, 604_800)
	if err != nil {
		t.Fatalf("CalculateReward failed: %v", err)
	}
	want, err := CalculateReward(1_000_000_000, 604_800)
	if err != nil {
		t.Fatalf("CalculateReward failed: %v", err)
	}
	if got != want {
		t.Errorf("expected sub-unit remainder to truncate before scaling: got %d, want %d", got, want)
	}
}

func TestCalculateReward_Overflow(t *testing.T) {
	// principal * 20 exceeds 64 bits.
	_, err := CalculateReward(1_000_000_000_000_000_000, 7_776_000)
	if !errors.Is(err, ErrArithmeticOverflow) {
		t.Errorf("expected ErrArithmeticOverflow, got %v", err)
	}

	// The extremes both limits allow also overflow: floor(1e14*20/100)
	// times the 10-year maximum duration is ~6.3e21.
	_, err = CalculateReward(MaxStakeAmount, MaxLockDuration)
	if !errors.Is(err, ErrArithmeticOverflow) {
		t.Errorf("max stake for max duration: expected ErrArithmeticOverflow, got %v", err)
	}
}
