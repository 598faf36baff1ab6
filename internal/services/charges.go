package services

import (
	"github.com/shopspring/decimal"

	"nivesh/internal/models"
)

// Statutory charge rates on purchases. GST applies on STT plus stamp duty.
var (
	sttRate                = decimal.NewFromFloat(0.001)
	stampDutyRate          = decimal.NewFromFloat(0.00005)
	gstRate                = decimal.NewFromFloat(0.18)
	transactionChargesRate = decimal.NewFromFloat(0.0005)
)

// computePurchaseCharges levies STT, stamp duty, GST, and transaction
// charges on a purchase amount. Each component is computed with exact
// decimal arithmetic and rounded to 2 decimals before totalling, so the
// stored total always equals the sum of the stored components.
func computePurchaseCharges(amount float64) models.Charges {
	amt := decimal.NewFromFloat(amount)

	stt := amt.Mul(sttRate).Round(2)
	stampDuty := amt.Mul(stampDutyRate).Round(2)
	gst := stt.Add(stampDuty).Mul(gstRate).Round(2)
	txnCharges := amt.Mul(transactionChargesRate).Round(2)
	total := stt.Add(stampDuty).Add(gst).Add(txnCharges)

	return models.Charges{
		STT:                stt.InexactFloat64(),
		StampDuty:          stampDuty.InexactFloat64(),
		GST:                gst.InexactFloat64(),
		TransactionCharges: txnCharges.InexactFloat64(),
		Total:              total.InexactFloat64(),
	}
}

// computeRedemptionCharges levies STT and the exit load on a redemption
// amount. Redemptions carry no GST or stamp duty; the exit load is a
// deduction on the gross amount rather than a named charge component.
// Returns the charges and the net amount payable to the investor:
// net = amount*(1-exitLoad) - stt.
func computeRedemptionCharges(amount, exitLoadRate float64) (models.Charges, float64) {
	amt := decimal.NewFromFloat(amount)

	stt := amt.Mul(sttRate).Round(2)
	net := amt.Mul(decimal.NewFromFloat(1).Sub(decimal.NewFromFloat(exitLoadRate))).Sub(stt).Round(2)

	charges := models.Charges{
		STT:   stt.InexactFloat64(),
		Total: stt.InexactFloat64(),
	}
	return charges, net.InexactFloat64()
}
