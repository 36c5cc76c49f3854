package safemath

import (
	"math"
	"testing"
)

func TestAdd(t *testing.T) {
	if sum, ok := Add(1, 2); !ok || sum != 3 {
		t.Errorf("Add(1, 2) = (%d, %v), want (3, true)", sum, ok)
	}
	if sum, ok := Add(math.MaxUint64, 0); !ok || sum != math.MaxUint64 {
		t.Errorf("Add(MaxUint64, 0) = (%d, %v), want (MaxUint64, true)", sum, ok)
	}
	if _, ok := Add(math.MaxUint64, 1); ok {
		t.Error("Add(MaxUint64, 1) should overflow")
	}
}

func TestSub(t *testing.T) {
	if diff, ok := Sub(5, 3); !ok || diff != 2 {
		t.Errorf("Sub(5, 3) = (%d, %v), want (2, true)", diff, ok)
	}
	if diff, ok := Sub(5, 5); !ok || diff != 0 {
		t.Errorf("Sub(5, 5) = (%d, %v), want (0, true)", diff, ok)
	}
	if _, ok := Sub(3, 5); ok {
		t.Error("Sub(3, 5) should underflow")
	}
}

func TestMul(t *testing.T) {
	if prod, ok := Mul(1_000_000_000, 20); !ok || prod != 20_000_000_000 {
		t.Errorf("Mul(1e9, 20) = (%d, %v), want (2e10, true)", prod, ok)
	}
	if prod, ok := Mul(math.MaxUint64, 1); !ok || prod != math.MaxUint64 {
		t.Errorf("Mul(MaxUint64, 1) = (%d, %v), want (MaxUint64, true)", prod, ok)
	}
	if _, ok := Mul(math.MaxUint64, 2); ok {
		t.Error("Mul(MaxUint64, 2) should overflow")
	}
	if prod, ok := Mul(0, math.MaxUint64); !ok || prod != 0 {
		t.Errorf("Mul(0, MaxUint64) = (%d, %v), want (0, true)", prod, ok)
	}
}
