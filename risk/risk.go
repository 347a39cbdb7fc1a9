// Package risk models geopolitical tensions: discrete events (trade wars,
// conflicts, sanctions, cyberattacks, political crises), a continuous
// aggregate risk diffusion, regional risk factors, and the reallocation
// pressures they exert on reserve managers.
package risk

import (
	"math"
	"time"

	"github.com/rustyeddy/reserveflow/config"
	"github.com/rustyeddy/reserveflow/internal/id"
	"github.com/rustyeddy/reserveflow/internal/stochastic"
	"github.com/rustyeddy/reserveflow/market"
)

const dt = 1.0 / 365.25

// Regions tracked by the engine, in the fixed order draws are made.
var Regions = []string{"europe", "asia_pacific", "middle_east", "africa", "latin_america", "global"}

type archetype struct {
	kind        market.EventType
	monthlyProb float64
	impact      float64
	durationMo  int
	currencies  []string
}

// Fixed order: the Bernoulli draw per archetype must consume randomness
// deterministically.
var archetypes = []archetype{
	{market.TradeWarEscalation, 0.02, 0.3, 12, []string{"CNY", "USD", "EUR"}},
	{market.MilitaryConflict, 0.005, 0.8, 6, []string{"all"}},
	{market.SanctionsExpansion, 0.03, 0.4, 18, []string{"RUB", "CNY", "EUR"}},
	{market.MajorCyberattack, 0.01, 0.2, 2, []string{"USD", "EUR"}},
	{market.PoliticalCrisis, 0.015, 0.25, 8, []string{"regional"}},
}

// Engine is the geopolitical risk engine. It owns its state exclusively;
// nothing outside the engine mutates it.
type Engine struct {
	cfg *config.Config
	src *stochastic.Source

	baseline float64
	current  float64
	momentum float64

	// Risk components reported alongside the aggregate.
	tradeTensions        float64
	militaryConflicts    float64
	sanctionsRisk        float64
	politicalInstability float64
	economicWarfare      float64

	persistence float64
	volatility  float64

	regional map[string]float64
	active   []market.Event
}

// New constructs the engine with its own seeded random source.
func New(cfg *config.Config, seed int64) *Engine {
	return &Engine{
		cfg: cfg,
		src: stochastic.NewSource(seed),
	}
}

// Initialize establishes the starting internal state. Calling it after
// Reset reproduces a freshly constructed engine.
func (e *Engine) Initialize() {
	e.baseline = e.cfg.GeopoliticalBaseline
	e.current = e.baseline
	e.momentum = 0
	e.tradeTensions = 0.2
	e.militaryConflicts = 0.1
	e.sanctionsRisk = 0.1
	e.politicalInstability = 0.2
	e.economicWarfare = 0.0
	e.persistence = 0.95
	e.volatility = 0.1
	e.regional = map[string]float64{
		"europe":        0.2,
		"asia_pacific":  0.4,
		"middle_east":   0.6,
		"africa":        0.3,
		"latin_america": 0.2,
		"global":        0.3,
	}
	e.active = nil
}

// Reset restores initial state, including the random stream.
func (e *Engine) Reset() {
	e.src.Reset()
	e.Initialize()
}

// Output is the engine's contribution to the shared state for one day.
type Output struct {
	Risk                    float64
	RegionalRisks           map[string]float64
	ActiveEvents            []market.Event
	NewEvents               []market.Event
	DedollarizationPressure float64
	FlightToSafety          map[string]float64
	TradeTensions           float64
	MilitaryConflicts       float64
	SanctionsRisk           float64
	PoliticalInstability    float64
	EconomicWarfare         float64
}

// Apply merges the output into the shared market state.
func (o Output) Apply(st *market.State) {
	st.GeopoliticalRisk = o.Risk
	st.RegionalRisks = o.RegionalRisks
	st.ActiveEvents = o.ActiveEvents
	st.NewEvents = o.NewEvents
	st.DedollarizationPressure = o.DedollarizationPressure
	st.FlightToSafety = o.FlightToSafety
	st.TradeTensions = o.TradeTensions
	st.MilitaryConflicts = o.MilitaryConflicts
	st.SanctionsRisk = o.SanctionsRisk
	st.PoliticalInstability = o.PoliticalInstability
	st.EconomicWarfare = o.EconomicWarfare
}

// Step advances the engine one simulated day. It reads the shared state
// (market stress feedback) without mutating it and returns its delta.
func (e *Engine) Step(now time.Time, st *market.State) market.Delta {
	newEvents := e.checkForEvents(now)
	e.expireEvents(now)
	e.updateRiskLevel(st.MarketStress)
	e.updateRegionalRisks()

	return Output{
		Risk:                    e.current,
		RegionalRisks:           cloneRegional(e.regional),
		ActiveEvents:            append([]market.Event(nil), e.active...),
		NewEvents:               newEvents,
		DedollarizationPressure: e.DedollarizationPressure(),
		FlightToSafety:          e.flightToSafety(),
		TradeTensions:           e.tradeTensions,
		MilitaryConflicts:       e.militaryConflicts,
		SanctionsRisk:           e.sanctionsRisk,
		PoliticalInstability:    e.politicalInstability,
		EconomicWarfare:         e.economicWarfare,
	}
}

// checkForEvents performs one Bernoulli draw per archetype. Monthly base
// probabilities convert to daily, scaled up by the prevailing risk level.
func (e *Engine) checkForEvents(now time.Time) []market.Event {
	var created []market.Event
	for _, a := range archetypes {
		daily := a.monthlyProb / 30 * (1 + e.current)
		if e.src.Uniform() < daily {
			ev := market.Event{
				ID:         id.New(),
				Type:       a.kind,
				Start:      now,
				End:        now.AddDate(0, 0, a.durationMo*30),
				Impact:     a.impact,
				Currencies: append([]string(nil), a.currencies...),
			}
			created = append(created, ev)
			e.active = append(e.active, ev)
		}
	}
	return created
}

// expireEvents drops events whose end date has passed. An event stays
// active through its end date itself.
func (e *Engine) expireEvents(now time.Time) {
	kept := e.active[:0]
	for _, ev := range e.active {
		if !now.After(ev.End) {
			kept = append(kept, ev)
		}
	}
	e.active = kept
}

// updateRiskLevel applies a mean-reverting diffusion toward a target made
// of the baseline, active event impacts, and market stress feedback.
func (e *Engine) updateRiskLevel(marketStress float64) {
	var eventRisk float64
	for _, ev := range e.active {
		eventRisk += ev.Impact
	}
	target := e.baseline + eventRisk + marketStress*0.2

	shock := e.src.Normal() * e.volatility * math.Sqrt(dt)
	change := (target-e.current)*(1-e.persistence)*dt + shock
	e.current = clamp01(e.current + change)
	e.momentum = 0.9*e.momentum + 0.1*change
}

var regionalTrends = map[string]float64{
	"europe":        -0.01,
	"asia_pacific":  0.02,
	"middle_east":   0.0,
	"africa":        0.01,
	"latin_america": -0.005,
	"global":        0.005,
}

func (e *Engine) updateRegionalRisks() {
	for _, region := range Regions {
		trend := regionalTrends[region]
		spillover := e.regionalSpillover(region)
		shock := e.src.Normal() * 0.05 * math.Sqrt(dt)

		change := trend + spillover + shock
		e.regional[region] = clamp01(e.regional[region] + change*dt)
	}
}

func (e *Engine) regionalSpillover(region string) float64 {
	var spillover float64
	for _, ev := range e.active {
		switch ev.Type {
		case market.TradeWarEscalation:
			if region == "asia_pacific" || region == "global" {
				spillover += ev.Impact * 0.5
			} else {
				spillover += ev.Impact * 0.2
			}
		case market.MilitaryConflict:
			spillover += ev.Impact * 0.3
		case market.SanctionsExpansion:
			if region == "europe" || region == "global" {
				spillover += ev.Impact * 0.4
			} else {
				spillover += ev.Impact * 0.1
			}
		}
	}
	return spillover
}

// DedollarizationPressure derives the pressure to move reserves away from
// USD from the aggregate risk, active events, and regional thresholds.
func (e *Engine) DedollarizationPressure() float64 {
	pressure := e.current * 0.3

	for _, ev := range e.active {
		switch ev.Type {
		case market.SanctionsExpansion:
			pressure += ev.Impact * 0.5
		case market.TradeWarEscalation:
			pressure += ev.Impact * 0.3
		case market.MajorCyberattack:
			pressure += ev.Impact * 0.2
		}
	}

	if e.regional["asia_pacific"] > 0.5 {
		pressure += 0.1
	}
	if e.regional["global"] > 0.4 {
		pressure += 0.05
	}
	return math.Min(1.0, pressure)
}

// flightToSafety computes per-asset safe-haven intensities from the
// current risk level, adjusted for event-specific preferences.
func (e *Engine) flightToSafety() map[string]float64 {
	intensity := e.current
	effects := map[string]float64{
		"gold":             intensity * 0.8,
		"usd":              intensity * 0.6,
		"chf":              intensity * 0.7,
		"jpy":              intensity * 0.5,
		"government_bonds": intensity * 0.9,
	}

	for _, ev := range e.active {
		switch ev.Type {
		case market.SanctionsExpansion:
			effects["usd"] *= 0.8
			effects["gold"] *= 1.2
		case market.MajorCyberattack:
			effects["gold"] *= 1.3
		}
	}
	return effects
}

// CurrencyRiskPremium returns the geopolitical risk premium for one
// currency: a base premium scaled by the aggregate risk plus a
// currency-specific adjustment and event exposure.
func (e *Engine) CurrencyRiskPremium(currency string) float64 {
	base := e.current * 0.1

	adjustments := map[string]float64{
		"USD": -0.02,
		"EUR": 0.01,
		"JPY": -0.01,
		"GBP": 0.02,
		"CNY": 0.03,
		"CHF": -0.03,
		"CAD": 0.005,
		"AUD": 0.01,
	}
	adj := adjustments[currency]

	for _, ev := range e.active {
		if ev.Affects(currency) {
			adj += ev.Impact * 0.1
		}
	}
	return base + adj
}

// ReallocationPressure reports the directional pressures geopolitical
// conditions put on reserve portfolios.
func (e *Engine) ReallocationPressure() map[string]float64 {
	pressures := map[string]float64{
		"away_from_usd":          e.DedollarizationPressure(),
		"toward_gold":            e.current * 0.4,
		"toward_diversification": e.current * 0.2,
	}
	if e.regional["asia_pacific"] > 0.5 {
		pressures["away_from_regional_currencies"] = 0.2
	}
	if e.regional["europe"] > 0.4 {
		pressures["away_from_eur"] = 0.1
	}
	return pressures
}

// Risk returns the current aggregate risk level.
func (e *Engine) Risk() float64 { return e.current }

// ActiveEvents returns a copy of the active event set.
func (e *Engine) ActiveEvents() []market.Event {
	return append([]market.Event(nil), e.active...)
}

func cloneRegional(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
