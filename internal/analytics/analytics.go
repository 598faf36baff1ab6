// Package analytics computes portfolio performance metrics from irregular
// cash-flow histories and daily value series. It is pure computation with
// no persistence or transport concerns.
package analytics

import (
	"errors"
	"math"
	"sort"
	"time"
)

// ErrNoConvergence is returned when the XIRR solver fails to find a root.
// Callers treat it as a soft failure and report the metric as unavailable.
var ErrNoConvergence = errors.New("xirr solver did not converge")

const (
	maxIterations = 100
	tolerance     = 1e-6

	// tradingDays is the annualization base for daily return series.
	tradingDays = 252

	// annualRiskFree is the assumed risk-free rate for the Sharpe ratio.
	annualRiskFree = 0.05
)

// CashFlow is a dated cash movement. Purchases are negative (money out),
// redemptions and the final current holding value positive (money in).
type CashFlow struct {
	Date   time.Time
	Amount float64
}

// XIRR solves for the annualized rate r such that the net present value of
// the cash flows is zero:
//
//	sum( amount_i / (1+r)^((date_i - date_0)/365d) ) == 0
//
// It runs Newton-Raphson first and falls back to bisection when the
// iteration diverges or the derivative vanishes. The rate is returned as a
// fraction (0.10 == 10%).
func XIRR(flows []CashFlow) (float64, error) {
	if len(flows) < 2 {
		return 0, ErrNoConvergence
	}

	sorted := make([]CashFlow, len(flows))
	copy(sorted, flows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	// A root only exists when money moves in both directions.
	hasNegative, hasPositive := false, false
	for _, cf := range sorted {
		if cf.Amount < 0 {
			hasNegative = true
		}
		if cf.Amount > 0 {
			hasPositive = true
		}
	}
	if !hasNegative || !hasPositive {
		return 0, ErrNoConvergence
	}

	rate := 0.1
	for i := 0; i < maxIterations; i++ {
		value := npv(sorted, rate)
		if math.Abs(value) < tolerance {
			return rate, nil
		}

		derivative := npvDerivative(sorted, rate)
		if math.Abs(derivative) < 1e-12 {
			break
		}

		next := rate - value/derivative
		if next <= -1 || math.IsNaN(next) || math.IsInf(next, 0) {
			break
		}
		rate = next
	}

	if math.Abs(npv(sorted, rate)) < tolerance {
		return rate, nil
	}
	return bisect(sorted)
}

// bisect brackets a sign change of the NPV on (-1, 10] and halves in.
func bisect(flows []CashFlow) (float64, error) {
	lo, hi := -0.9999, 10.0
	fLo, fHi := npv(flows, lo), npv(flows, hi)
	if fLo*fHi > 0 {
		return 0, ErrNoConvergence
	}

	for i := 0; i < maxIterations*2; i++ {
		mid := (lo + hi) / 2
		fMid := npv(flows, mid)
		if math.Abs(fMid) < tolerance {
			return mid, nil
		}
		if fLo*fMid < 0 {
			hi = mid
		} else {
			lo, fLo = mid, fMid
		}
	}
	return 0, ErrNoConvergence
}

func npv(flows []CashFlow, rate float64) float64 {
	base := flows[0].Date
	var total float64
	for _, cf := range flows {
		years := cf.Date.Sub(base).Hours() / (24 * 365)
		total += cf.Amount / math.Pow(1+rate, years)
	}
	return total
}

func npvDerivative(flows []CashFlow, rate float64) float64 {
	base := flows[0].Date
	var derivative float64
	for _, cf := range flows {
		years := cf.Date.Sub(base).Hours() / (24 * 365)
		if years > 0 {
			derivative -= years * cf.Amount / math.Pow(1+rate, years+1)
		}
	}
	return derivative
}

// DailyReturns converts a value series into simple period returns.
// Zero-valued points are skipped to avoid division by zero.
func DailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		returns = append(returns, (values[i]-values[i-1])/values[i-1])
	}
	return returns
}

// Volatility is the annualized standard deviation of daily returns, as a
// percentage: stdev * sqrt(252) * 100.
func Volatility(dailyReturns []float64) float64 {
	return stdev(dailyReturns) * math.Sqrt(tradingDays) * 100
}

// Sharpe is the annualized Sharpe ratio of daily returns against a 5%
// annual risk-free assumption. Returns 0 when the series has no variance.
func Sharpe(dailyReturns []float64) float64 {
	sd := stdev(dailyReturns)
	if sd == 0 {
		return 0
	}
	dailyRiskFree := annualRiskFree / tradingDays
	return (mean(dailyReturns) - dailyRiskFree) / sd * math.Sqrt(tradingDays)
}

// MaxDrawdown is the largest peak-to-trough decline of the value series,
// as a percentage of the peak.
func MaxDrawdown(values []float64) float64 {
	var peak, maxDD float64
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			if dd := (peak - v) / peak; dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD * 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdev is the sample standard deviation.
func stdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}
