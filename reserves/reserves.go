// Package reserves models central bank reserve management: a continuously
// adjusting target allocation across currencies, gold and the SDR basket,
// periodic/threshold/stress-driven rebalancing, and FX intervention
// signals.
package reserves

import (
	"math"
	"time"

	"github.com/rustyeddy/reserveflow/config"
	"github.com/rustyeddy/reserveflow/internal/stochastic"
	"github.com/rustyeddy/reserveflow/market"
)

// Assets in the reserve portfolio, in fixed iteration order.
var Assets = []string{"USD", "EUR", "JPY", "GBP", "CNY", "gold", "SDR"}

var initialTargets = map[string]float64{
	"USD":  0.59,
	"EUR":  0.20,
	"JPY":  0.06,
	"GBP":  0.05,
	"CNY":  0.03,
	"gold": 0.05,
	"SDR":  0.02,
}

const (
	usdFloor   = 0.40
	usdCeiling = 0.70
	goldFloor  = 0.02
	goldCeil   = 0.15

	deviationThreshold = 0.02
	rebalanceSpeed     = 0.10
	stressTrigger      = 0.8
)

// Engine is the reserve management engine.
type Engine struct {
	cfg *config.Config
	src *stochastic.Source

	target  map[string]float64
	current map[string]float64

	lastRebalance time.Time
}

// New constructs the engine with its own seeded random source.
func New(cfg *config.Config, seed int64) *Engine {
	return &Engine{
		cfg: cfg,
		src: stochastic.NewSource(seed),
	}
}

// Initialize sets current and target allocation to the global-average
// starting composition.
func (e *Engine) Initialize() {
	e.target = make(map[string]float64, len(initialTargets))
	e.current = make(map[string]float64, len(initialTargets))
	for k, v := range initialTargets {
		e.target[k] = v
		e.current[k] = v
	}
	e.lastRebalance = e.cfg.Start()
}

// Reset restores initial state and rewinds the random stream.
func (e *Engine) Reset() {
	e.src.Reset()
	e.Initialize()
}

// Output is the engine's daily contribution to the shared state.
type Output struct {
	Current       map[string]float64
	Target        map[string]float64
	Rebalanced    bool
	Interventions map[string]float64
	Deviation     float64
}

// Apply merges the output into the shared market state.
func (o Output) Apply(st *market.State) {
	st.CurrentAllocation = o.Current
	st.TargetAllocation = o.Target
	st.RebalanceExecuted = o.Rebalanced
	st.Interventions = o.Interventions
	st.AllocationDeviation = o.Deviation
}

// Step advances reserve management one day: drift the targets, check the
// rebalance triggers, then compute intervention signals.
func (e *Engine) Step(now time.Time, st *market.State) market.Delta {
	e.updateTargets(st)

	rebalanced := e.shouldRebalance(now, st)
	if rebalanced {
		e.rebalance(now)
	}

	return Output{
		Current:       clone(e.current),
		Target:        clone(e.target),
		Rebalanced:    rebalanced,
		Interventions: e.interventions(st),
		Deviation:     e.Deviation(),
	}
}

// updateTargets drifts the target allocation with market conditions: USD
// share shrinks under de-dollarization pressure within [0.40,0.70], gold
// grows with geopolitical risk and flight-to-safety demand within
// [0.02,0.15]. Targets re-normalize to sum to 1 afterwards.
func (e *Engine) updateTargets(st *market.State) {
	usd := e.target["USD"] - st.DedollarizationPressure*0.1
	e.target["USD"] = math.Max(usdFloor, math.Min(usdCeiling, usd))

	goldAttractiveness := st.FlightToSafety["gold"]
	if goldAttractiveness == 0 {
		goldAttractiveness = 0.5
	}
	gold := e.target["gold"] + st.GeopoliticalRisk*0.05 + goldAttractiveness*0.03
	e.target["gold"] = math.Max(goldFloor, math.Min(goldCeil, gold))

	normalize(e.target)
}

// shouldRebalance ORs the three triggers: elapsed days, max deviation
// above 2%, or emergency market stress above 0.8.
func (e *Engine) shouldRebalance(now time.Time, st *market.State) bool {
	elapsed := int(now.Sub(e.lastRebalance).Hours() / 24)
	if elapsed >= e.cfg.RebalancingFrequencyDays {
		return true
	}

	var maxDev float64
	for _, asset := range Assets {
		dev := math.Abs(e.current[asset] - e.target[asset])
		if dev > maxDev {
			maxDev = dev
		}
	}
	if maxDev > deviationThreshold {
		return true
	}

	return st.MarketStress > stressTrigger
}

// rebalance moves the current allocation a fixed fraction of the gap
// toward target, then re-normalizes.
func (e *Engine) rebalance(now time.Time) {
	for _, asset := range Assets {
		gap := e.target[asset] - e.current[asset]
		e.current[asset] += gap * rebalanceSpeed
	}
	normalize(e.current)
	e.lastRebalance = now
}

// interventions computes FX intervention signals for each non-base
// currency. Magnitude = allocation weight x volatility x configured
// strength; materialization has a fixed probability per currency.
func (e *Engine) interventions(st *market.State) map[string]float64 {
	out := make(map[string]float64)
	for _, currency := range e.cfg.MajorCurrencies {
		if currency == market.Base {
			continue
		}
		strength := e.current[currency] * st.Volatility(currency) * e.cfg.InterventionStrength

		if e.src.Uniform() < e.cfg.InterventionProbability {
			// Direction is an unweighted coin flip. This mirrors the
			// source model, which never wired a directional signal here;
			// it is a placeholder, not a random-walk design.
			sign := 1.0
			if e.src.Uniform() <= 0.5 {
				sign = -1.0
			}
			out[currency] = strength * sign
		}
	}
	return out
}

// Deviation reports the total absolute gap between current and target
// allocation.
func (e *Engine) Deviation() float64 {
	var sum float64
	for _, asset := range Assets {
		sum += math.Abs(e.current[asset] - e.target[asset])
	}
	return sum
}

// Current returns a copy of the current allocation.
func (e *Engine) Current() map[string]float64 { return clone(e.current) }

// Target returns a copy of the target allocation.
func (e *Engine) Target() map[string]float64 { return clone(e.target) }

func normalize(alloc map[string]float64) {
	var sum float64
	for _, v := range alloc {
		sum += v
	}
	if sum <= 0 {
		return
	}
	for k := range alloc {
		alloc[k] /= sum
	}
}

func clone(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
