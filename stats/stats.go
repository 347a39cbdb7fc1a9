// Package stats computes per-category summary statistics over a completed
// simulation run.
package stats

import (
	"math"

	"github.com/rustyeddy/reserveflow/market"
)

const tradingDays = 252

// FXStats summarizes one currency's simulated path.
type FXStats struct {
	FinalRate     float64
	Volatility    float64 // annualized, from daily log returns
	TotalReturnPc float64
}

// GoldStats summarizes the gold price path.
type GoldStats struct {
	FinalPrice    float64
	TotalReturnPc float64
	VolatilityPc  float64 // annualized, percent
	MaxPrice      float64
	MinPrice      float64
}

// RiskStats summarizes the geopolitical risk path.
type RiskStats struct {
	AverageRisk   float64
	MaxRisk       float64
	RiskStdDev    float64
	CrisisPeriods int // days above 0.7
}

// Summary is the categorized metrics block for one run.
type Summary struct {
	FX           map[string]FXStats
	Gold         *GoldStats
	Geopolitical *RiskStats
}

// Summarize computes the summary over a result table. Currencies lists
// which FX series to report; the base currency is skipped.
func Summarize(tbl market.Table, currencies []string) Summary {
	out := Summary{FX: make(map[string]FXStats)}
	if len(tbl) == 0 {
		return out
	}

	for _, c := range currencies {
		if c == market.Base {
			continue
		}
		series := tbl.Rates(c)
		out.FX[c] = FXStats{
			FinalRate:     series[len(series)-1],
			Volatility:    annualizedLogVol(series),
			TotalReturnPc: (series[len(series)-1]/series[0] - 1) * 100,
		}
	}

	gold := tbl.GoldPrices()
	out.Gold = &GoldStats{
		FinalPrice:    gold[len(gold)-1],
		TotalReturnPc: (gold[len(gold)-1]/gold[0] - 1) * 100,
		VolatilityPc:  annualizedPctVol(gold) * 100,
		MaxPrice:      maxOf(gold),
		MinPrice:      minOf(gold),
	}

	riskSeries := tbl.GeopoliticalRisks()
	crisis := 0
	for _, r := range riskSeries {
		if r > 0.7 {
			crisis++
		}
	}
	out.Geopolitical = &RiskStats{
		AverageRisk:   mean(riskSeries),
		MaxRisk:       maxOf(riskSeries),
		RiskStdDev:    stddev(riskSeries),
		CrisisPeriods: crisis,
	}

	return out
}

// annualizedLogVol annualizes the standard deviation of daily log
// returns.
func annualizedLogVol(prices []float64) float64 {
	returns := logReturns(prices)
	return stddev(returns) * math.Sqrt(tradingDays)
}

// annualizedPctVol annualizes the standard deviation of daily percentage
// changes.
func annualizedPctVol(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	changes := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] != 0 {
			changes = append(changes, prices[i]/prices[i-1]-1)
		}
	}
	return stddev(changes) * math.Sqrt(tradingDays)
}

func logReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] > 0 && prices[i] > 0 {
			out = append(out, math.Log(prices[i]/prices[i-1]))
		}
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)))
}

func maxOf(xs []float64) float64 {
	out := math.Inf(-1)
	for _, x := range xs {
		if x > out {
			out = x
		}
	}
	return out
}

func minOf(xs []float64) float64 {
	out := math.Inf(1)
	for _, x := range xs {
		if x < out {
			out = x
		}
	}
	return out
}
