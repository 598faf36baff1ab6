package services

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputePurchaseCharges(t *testing.T) {
	t.Run("standard_amount", func(t *testing.T) {
		charges := computePurchaseCharges(100000)

		if !almostEqual(charges.STT, 100.00) {
			t.Errorf("expected STT 100.00, got %v", charges.STT)
		}
		if !almostEqual(charges.StampDuty, 5.00) {
			t.Errorf("expected stamp duty 5.00, got %v", charges.StampDuty)
		}
		if !almostEqual(charges.GST, 18.90) {
			t.Errorf("expected GST 18.90, got %v", charges.GST)
		}
		if !almostEqual(charges.TransactionCharges, 50.00) {
			t.Errorf("expected transaction charges 50.00, got %v", charges.TransactionCharges)
		}
		if !almostEqual(charges.Total, 173.90) {
			t.Errorf("expected total 173.90, got %v", charges.Total)
		}
	})

	t.Run("total_is_sum_of_components", func(t *testing.T) {
		for _, amount := range []float64{999.99, 1000, 12345.67, 100000, 9999999.99} {
			charges := computePurchaseCharges(amount)
			sum := charges.STT + charges.StampDuty + charges.GST + charges.TransactionCharges + charges.OtherCharges
			if !almostEqual(charges.Total, sum) {
				t.Errorf("amount %v: total %v != component sum %v", amount, charges.Total, sum)
			}
		}
	})
}

func TestComputeRedemptionCharges(t *testing.T) {
	t.Run("with_exit_load", func(t *testing.T) {
		charges, net := computeRedemptionCharges(3000, 0.01)

		if !almostEqual(charges.STT, 3.00) {
			t.Errorf("expected STT 3.00, got %v", charges.STT)
		}
		if !almostEqual(charges.Total, 3.00) {
			t.Errorf("expected total 3.00, got %v", charges.Total)
		}
		if !almostEqual(net, 2967.00) {
			t.Errorf("expected net 2967.00, got %v", net)
		}
	})

	t.Run("without_exit_load", func(t *testing.T) {
		_, net := computeRedemptionCharges(3000, 0)
		if !almostEqual(net, 2997.00) {
			t.Errorf("expected net 2997.00, got %v", net)
		}
	})

	t.Run("no_gst_or_stamp_duty", func(t *testing.T) {
		charges, _ := computeRedemptionCharges(50000, 0.01)
		if charges.GST != 0 || charges.StampDuty != 0 || charges.TransactionCharges != 0 {
			t.Errorf("redemption should only carry STT, got %+v", charges)
		}
	})
}
