// Package metals simulates gold and silver markets from supply-demand
// fundamentals: mine production, recycling, central-bank buying, jewelry
// and investment demand, plus seasonality, momentum, mean reversion and
// cross-asset factor sensitivities.
package metals

import (
	"math"
	"time"

	"github.com/rustyeddy/reserveflow/config"
	"github.com/rustyeddy/reserveflow/internal/stochastic"
	"github.com/rustyeddy/reserveflow/market"
)

const (
	dt = 1.0 / 365.25

	longTermGoldPrice   = 2200.0
	longTermSilverPrice = 28.0
	targetGoldSilver    = 80.0

	momentumWindow = 5
)

// Cross-asset sensitivities: USD strength and real rates move metals
// down, inflation expectations move them up.
var factorSensitivity = struct {
	usd, realRates, inflation float64
}{-0.3, -0.7, 0.6}

// Engine is the precious metals engine.
type Engine struct {
	cfg *config.Config
	src *stochastic.Source

	goldPrice   float64
	silverPrice float64
	goldVol     float64
	silverVol   float64

	cbPurchases float64 // annual central-bank purchases, tonnes

	goldSupply   map[string]float64
	goldDemand   map[string]float64
	silverSupply map[string]float64
	silverDemand map[string]float64

	goldImbalance   float64
	silverImbalance float64

	goldReturns   []float64 // momentum windows, most recent last
	silverReturns []float64
}

// New constructs the engine with its own seeded random source.
func New(cfg *config.Config, seed int64) *Engine {
	return &Engine{
		cfg: cfg,
		src: stochastic.NewSource(seed),
	}
}

// Initialize sets starting prices and the calibrated supply-demand
// baseline.
func (e *Engine) Initialize() {
	e.goldPrice = e.cfg.InitialGoldPrice
	e.silverPrice = e.cfg.InitialSilverPrice
	e.goldVol = e.cfg.GoldVolatility
	e.silverVol = e.cfg.SilverVolatility
	e.cbPurchases = e.cfg.GoldCBPurchases

	e.goldSupply = map[string]float64{
		"mine_production":    3200.0,
		"recycling":          1200.0,
		"central_bank_sales": 0.0,
	}
	e.goldDemand = map[string]float64{
		"jewelry":       2100.0,
		"investment":    800.0,
		"central_banks": e.cbPurchases,
		"technology":    300.0,
	}
	e.silverSupply = map[string]float64{
		"mine_production": 800.0,
		"recycling":       180.0,
	}
	e.silverDemand = map[string]float64{
		"industrial": 550.0,
		"jewelry":    180.0,
		"investment": 200.0,
		"silverware": 50.0,
	}

	e.goldImbalance = total(e.goldSupply) - total(e.goldDemand)
	e.silverImbalance = total(e.silverSupply) - total(e.silverDemand)
	e.goldReturns = nil
	e.silverReturns = nil
}

// Reset restores initial state and rewinds the random stream.
func (e *Engine) Reset() {
	e.src.Reset()
	e.Initialize()
}

// Output is the engine's daily contribution to the shared state.
type Output struct {
	GoldPrice       float64
	SilverPrice     float64
	GoldReturn      float64
	SilverReturn    float64
	GoldSilverRatio float64
	GoldImbalance   float64
	SilverImbalance float64
	CBGoldDemand    float64
	GoldSupply      map[string]float64
	GoldDemand      map[string]float64
	SilverSupply    map[string]float64
	SilverDemand    map[string]float64
}

// Apply merges the output into the shared market state.
func (o Output) Apply(st *market.State) {
	st.GoldPrice = o.GoldPrice
	st.SilverPrice = o.SilverPrice
	st.GoldReturn = o.GoldReturn
	st.SilverReturn = o.SilverReturn
	st.GoldSilverRatio = o.GoldSilverRatio
	st.GoldImbalance = o.GoldImbalance
	st.SilverImbalance = o.SilverImbalance
	st.CBGoldDemand = o.CBGoldDemand
	st.GoldSupply = o.GoldSupply
	st.GoldDemand = o.GoldDemand
	st.SilverSupply = o.SilverSupply
	st.SilverDemand = o.SilverDemand
}

// Step advances the metals market one day.
func (e *Engine) Step(now time.Time, st *market.State) market.Delta {
	e.updateSupplyDemand(st)

	goldPressure := e.pricePressure(e.goldImbalance, total(e.goldDemand), seasonalGold(now.Month()))
	silverPressure := e.pricePressure(e.silverImbalance, total(e.silverDemand), seasonalSilver(now.Month()))

	goldReturn := e.priceReturn(e.goldPrice, longTermGoldPrice, e.goldVol, goldPressure, e.goldReturns, st)
	silverReturn := e.priceReturn(e.silverPrice, longTermSilverPrice, e.silverVol, silverPressure, e.silverReturns, st)

	e.goldPrice *= math.Exp(goldReturn)
	e.silverPrice *= math.Exp(silverReturn)
	e.goldReturns = push(e.goldReturns, goldReturn)
	e.silverReturns = push(e.silverReturns, silverReturn)

	e.revertGoldSilverRatio()

	return Output{
		GoldPrice:       e.goldPrice,
		SilverPrice:     e.silverPrice,
		GoldReturn:      goldReturn,
		SilverReturn:    silverReturn,
		GoldSilverRatio: e.goldPrice / e.silverPrice,
		GoldImbalance:   e.goldImbalance,
		SilverImbalance: e.silverImbalance,
		CBGoldDemand:    e.goldDemand["central_banks"],
		GoldSupply:      withTotal(e.goldSupply),
		GoldDemand:      withTotal(e.goldDemand),
		SilverSupply:    withTotal(e.silverSupply),
		SilverDemand:    withTotal(e.silverDemand),
	}
}

func (e *Engine) updateSupplyDemand(st *market.State) {
	e.updateGoldDemand(st)
	e.updateGoldSupply(st)
	e.updateSilverDemand(st)
	e.updateSilverSupply(st)

	e.goldImbalance = total(e.goldSupply) - total(e.goldDemand)
	e.silverImbalance = total(e.silverSupply) - total(e.silverDemand)
}

func (e *Engine) updateGoldDemand(st *market.State) {
	// Central banks buy more as risk and inflation expectations rise.
	cbMult := 1.0 + st.GeopoliticalRisk*2.0 + st.InflationExpectation*5.0
	e.goldDemand["central_banks"] = e.cbPurchases * cbMult

	// Investment demand falls with real rates and USD strength.
	usdStrength := st.USDIndex / 100.0
	investFactor := 1.0 - st.RealRates*20.0 - (usdStrength-1.0)*2.0
	investFactor = clampRange(investFactor, 0.5, 2.0)
	e.goldDemand["investment"] = 800.0 * investFactor

	// Jewelry demand: income effect positive, price effect negative.
	priceChange := e.goldPrice/e.cfg.InitialGoldPrice - 1.0
	jewelryFactor := (1.0 + st.GDPGrowth*3.0) * (1.0 - 0.5*priceChange)
	jewelryFactor = clampRange(jewelryFactor, 0.6, 1.4)
	e.goldDemand["jewelry"] = 2100.0 * jewelryFactor
}

func (e *Engine) updateGoldSupply(st *market.State) {
	mineFactor := (1.0 + st.MiningGrowth) * (1.0 - st.MiningSupplyConstraints)
	e.goldSupply["mine_production"] = 3200.0 * mineFactor

	priceChange := e.goldPrice/e.cfg.InitialGoldPrice - 1.0
	e.goldSupply["recycling"] = 1200.0 * (1.0 + 0.3*priceChange)
}

func (e *Engine) updateSilverDemand(st *market.State) {
	industrialFactor := 1.0 + st.GDPGrowth*2.0 + st.TechGrowth*1.5
	industrialFactor = clampRange(industrialFactor, 0.8, 1.5)
	e.silverDemand["industrial"] = 550.0 * industrialFactor

	// Investment follows gold but amplified.
	goldInvestFactor := e.goldDemand["investment"] / 800.0
	e.silverDemand["investment"] = 200.0 * (1.0 + (goldInvestFactor-1.0)*1.5)
}

func (e *Engine) updateSilverSupply(st *market.State) {
	// Mostly a byproduct of base metal mining.
	e.silverSupply["mine_production"] = 800.0 * st.BaseMetalsProduction

	priceChange := e.silverPrice/e.cfg.InitialSilverPrice - 1.0
	e.silverSupply["recycling"] = 180.0 * (1.0 + 0.4*priceChange)
}

// pricePressure converts a supply-demand imbalance into return pressure;
// demand exceeding supply pushes prices up.
func (e *Engine) pricePressure(imbalance, totalDemand, seasonal float64) float64 {
	if totalDemand <= 0 {
		return seasonal
	}
	return -imbalance/totalDemand + seasonal
}

func seasonalGold(m time.Month) float64 {
	switch m {
	case time.October, time.November, time.December:
		return 0.05 // Q4 jewelry surge
	case time.January, time.February:
		return 0.03 // Chinese New Year
	default:
		return 0.0
	}
}

func seasonalSilver(m time.Month) float64 {
	switch m {
	case time.March, time.April, time.May, time.September, time.October:
		return 0.02 // peak industrial quarters
	default:
		return 0.0
	}
}

// priceReturn combines fundamental pressure, log-price mean reversion
// toward the long-term anchor, short-window momentum, cross-asset factor
// influence, and a volatility-scaled Gaussian shock.
func (e *Engine) priceReturn(price, anchor, vol, pressure float64, recent []float64, st *market.State) float64 {
	fundamental := pressure * 0.1

	meanReversion := -0.05 * math.Log(price/anchor) * dt

	var momentum float64
	if len(recent) >= momentumWindow {
		momentum = 0.1 * mean(recent[len(recent)-momentumWindow:])
	}

	factors := e.factorInfluence(st)
	shock := e.src.Normal() * vol * math.Sqrt(dt)

	return (fundamental+meanReversion+momentum+factors)*dt + shock
}

func (e *Engine) factorInfluence(st *market.State) float64 {
	influence := factorSensitivity.usd * (st.USDIndex/100.0 - 1.0)
	influence += factorSensitivity.realRates * st.RealRates
	influence += factorSensitivity.inflation * st.InflationExpectation

	// Risk-off sentiment adds safe-haven demand.
	if st.RiskSentiment > 0 {
		influence += 0.1 * st.RiskSentiment
	}
	return influence
}

// revertGoldSilverRatio nudges the silver price so the gold-silver ratio
// mean-reverts toward its long-term average. Gold leads; only silver is
// adjusted.
func (e *Engine) revertGoldSilverRatio() {
	ratio := e.goldPrice / e.silverPrice
	adjustment := 0.01 * (targetGoldSilver - ratio)
	if math.Abs(adjustment) > 0.1 {
		// A ratio above target means silver is cheap relative to gold, so
		// silver moves up (and vice versa).
		e.silverPrice *= 1 - adjustment/targetGoldSilver
	}
}

// RealReturn reports the inflation-adjusted return of a metal since the
// start of the run.
func (e *Engine) RealReturn(metal string, inflation float64) float64 {
	var nominal float64
	if metal == "gold" {
		nominal = e.goldPrice/e.cfg.InitialGoldPrice - 1.0
	} else {
		nominal = e.silverPrice/e.cfg.InitialSilverPrice - 1.0
	}
	return (1+nominal)/(1+inflation) - 1
}

// GoldPrice returns the current gold price (USD/oz).
func (e *Engine) GoldPrice() float64 { return e.goldPrice }

// SilverPrice returns the current silver price (USD/oz).
func (e *Engine) SilverPrice() float64 { return e.silverPrice }

func total(m map[string]float64) float64 {
	var sum float64
	for _, v := range m {
		sum += v
	}
	return sum
}

func withTotal(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m)+1)
	var sum float64
	for k, v := range m {
		out[k] = v
		sum += v
	}
	out["total"] = sum
	return out
}

func push(window []float64, v float64) []float64 {
	window = append(window, v)
	if len(window) > momentumWindow {
		window = window[len(window)-momentumWindow:]
	}
	return window
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

func clampRange(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
