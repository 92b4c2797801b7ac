package payment

import (
	"reflect"
	"testing"
)

func TestComputeFee_CardStandardUS(t *testing.T) {
	t.Parallel()

	fee := ComputeFee(2000, "USD", "card", "US", "standard")

	if fee.PercentageFee != 58 {
		t.Errorf("percentage fee: expected 58, got %d", fee.PercentageFee)
	}
	if fee.FixedFee != 30 {
		t.Errorf("fixed fee: expected 30, got %d", fee.FixedFee)
	}
	if fee.TotalFee != 88 {
		t.Errorf("total fee: expected 88, got %d", fee.TotalFee)
	}
	if fee.NetAmount != 1912 {
		t.Errorf("net amount: expected 1912, got %d", fee.NetAmount)
	}
	if fee.TierDiscount.BasisPoints != 0 || fee.RegionalAdjustment.BasisPoints != 0 {
		t.Errorf("expected no discount or regional adjustment, got %+v", fee)
	}
}

func TestComputeFee_Deterministic(t *testing.T) {
	t.Parallel()

	first := ComputeFee(123457, "EUR", "mobile_money", "KE", "premium")
	second := ComputeFee(123457, "EUR", "mobile_money", "KE", "premium")

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("fee computation not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestComputeFee_TierAndRegional(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		amount        int64
		method        string
		country       string
		tier          string
		wantBps       int64
		wantFixed     int64
		wantTotal     int64
	}{
		// 290 - 30 + 0 = 260bps, 30 - 5 + 0 = 25 fixed
		{"premium card US", 2000, "card", "US", "premium", 260, 25, 77},
		// 250 - 50 - 50 = 150bps, 15 - 10 - 5 = 0 fixed
		{"enterprise mobile money IN", 2000, "mobile_money", "IN", "enterprise", 150, 0, 30},
		// 100 - 50 - 50 = 0bps, 0 - 10 - 5 floored at 0
		{"enterprise crypto IN floors at zero", 2000, "crypto", "IN", "enterprise", 0, 0, 0},
		// 290 + 30 = 320bps, 30 + 5 = 35 fixed (BR surcharge)
		{"standard card BR", 10000, "card", "BR", "standard", 320, 35, 355},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fee := ComputeFee(tt.amount, "USD", tt.method, tt.country, tt.tier)
			if fee.FinalRate.BasisPoints != tt.wantBps {
				t.Errorf("final bps: expected %d, got %d", tt.wantBps, fee.FinalRate.BasisPoints)
			}
			if fee.FinalRate.Fixed != tt.wantFixed {
				t.Errorf("final fixed: expected %d, got %d", tt.wantFixed, fee.FinalRate.Fixed)
			}
			if fee.TotalFee != tt.wantTotal {
				t.Errorf("total: expected %d, got %d", tt.wantTotal, fee.TotalFee)
			}
		})
	}
}

func TestComputeFee_EUGrouping(t *testing.T) {
	t.Parallel()

	fee := ComputeFee(2000, "EUR", "card", "DE", "standard")
	if fee.Region != "EU" {
		t.Fatalf("expected DE grouped into EU, got %q", fee.Region)
	}
	// 290 + 20 = 310bps: round(2000 * 3.1%) = 62
	if fee.PercentageFee != 62 {
		t.Fatalf("expected percentage fee 62, got %d", fee.PercentageFee)
	}
}

func TestComputeFee_RoundsToNearestMinorUnit(t *testing.T) {
	t.Parallel()

	// 101 * 2.9% = 2.929 -> 3
	fee := ComputeFee(101, "USD", "card", "US", "standard")
	if fee.PercentageFee != 3 {
		t.Fatalf("expected rounding to 3, got %d", fee.PercentageFee)
	}

	// 17 * 2.9% = 0.493 -> 0
	fee = ComputeFee(17, "USD", "card", "US", "standard")
	if fee.PercentageFee != 0 {
		t.Fatalf("expected rounding to 0, got %d", fee.PercentageFee)
	}
}

func TestComputeFee_UnknownMethodUsesDefault(t *testing.T) {
	t.Parallel()

	fee := ComputeFee(1000, "USD", "something_new", "US", "standard")
	if fee.BaseRate != defaultBaseFee {
		t.Fatalf("expected default base fee, got %+v", fee.BaseRate)
	}
}
