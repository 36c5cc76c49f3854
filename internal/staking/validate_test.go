package staking

import (
	"errors"
	"testing"
)

func TestValidateStake(t *testing.T) {
	tests := []struct {
		name     string
		amount   uint64
		duration int64
		wantErr  error
	}{
		{"minimum amount and duration", MinStakeAmount, MinLockDuration, nil},
		{"maximum amount and duration", MaxStakeAmount, MaxLockDuration, nil},
		{"one below minimum amount", MinStakeAmount - 1, MinLockDuration, ErrAmountTooSmall},
		{"one above maximum amount", MaxStakeAmount + 1, MinLockDuration, ErrAmountTooLarge},
		{"one below minimum duration", MinStakeAmount, MinLockDuration - 1, ErrDurationTooShort},
		{"one above maximum duration", MinStakeAmount, MaxLockDuration + 1, ErrDurationTooLong},
		{"zero amount", 0, MinLockDuration, ErrAmountTooSmall},
		{"zero duration", MinStakeAmount, 0, ErrDurationTooShort},
		{"negative duration", MinStakeAmount, -1, ErrDurationTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStake(tt.amount, tt.duration)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateStake(%d, %d) = %v, want %v",
					tt.amount, tt.duration, err, tt.wantErr)
			}
		})
	}
}
