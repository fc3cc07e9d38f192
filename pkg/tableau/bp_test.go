package tableau

import "testing"

func TestBPInverseInvolution(t *testing.T) {
	cases := []BP{TOP, BOTTOM, 5, -5, 1000, -1000}
	for _, bp := range cases {
		if got := bp.Inverse().Inverse(); got != bp {
			t.Errorf("Inverse(Inverse(%v)) = %v, want %v", bp, got, bp)
		}
	}
}

func TestBPTopBottomInvertToEachOther(t *testing.T) {
	if TOP.Inverse() != BOTTOM {
		t.Errorf("TOP.Inverse() = %v, want BOTTOM", TOP.Inverse())
	}
	if BOTTOM.Inverse() != TOP {
		t.Errorf("BOTTOM.Inverse() = %v, want TOP", BOTTOM.Inverse())
	}
}

func TestBPPolarity(t *testing.T) {
	if !BP(5).IsPositive() {
		t.Error("BP(5) should be positive")
	}
	if BP(-5).IsPositive() {
		t.Error("BP(-5) should not be positive")
	}
	if INVALID.IsValid() {
		t.Error("INVALID should not be valid")
	}
	if !BP(5).IsValid() {
		t.Error("BP(5) should be valid")
	}
}

func TestBPWithPolarity(t *testing.T) {
	bp := BP(-7)
	if got := bp.WithPolarity(true); got != 7 {
		t.Errorf("WithPolarity(true) = %v, want 7", got)
	}
	if got := bp.WithPolarity(false); got != -7 {
		t.Errorf("WithPolarity(false) = %v, want -7", got)
	}
	if bp.Index() != 7 {
		t.Errorf("Index() = %v, want 7", bp.Index())
	}
}
