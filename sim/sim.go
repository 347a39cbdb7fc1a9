// Package sim orchestrates the five stochastic engines over daily time
// steps: geopolitical risk, exchange rates, precious metals, the SDR
// basket, and reserve management, in that fixed order. Each engine reads
// the shared market state written by the engines before it and returns a
// typed delta the orchestrator merges back.
package sim

import (
	"math"
	"time"

	"github.com/rustyeddy/reserveflow/config"
	"github.com/rustyeddy/reserveflow/market"
	"github.com/rustyeddy/reserveflow/metals"
	"github.com/rustyeddy/reserveflow/rates"
	"github.com/rustyeddy/reserveflow/reserves"
	"github.com/rustyeddy/reserveflow/risk"
	"github.com/rustyeddy/reserveflow/sdr"
	"github.com/rustyeddy/reserveflow/stats"
)

// Engine is the contract every simulation engine satisfies. Step must not
// mutate the input state beyond reading it; all writes flow through the
// returned delta.
type Engine interface {
	Initialize()
	Step(now time.Time, st *market.State) market.Delta
	Reset()
}

// Per-engine seed offsets keep the random streams independent: each
// engine's draws are unaffected by how many draws another engine makes.
const (
	seedRisk = iota + 1
	seedRates
	seedMetals
	seedSDR
	seedReserves
)

// Simulation owns the shared market state and drives the engines.
type Simulation struct {
	cfg *config.Config

	geo     *risk.Engine
	fx      *rates.Engine
	pm      *metals.Engine
	basket  *sdr.Engine
	reserve *reserves.Engine
	engines []Engine

	state   *market.State
	now     time.Time
	results market.Table
}

// New builds a simulation from a configuration bundle. The bundle is
// read-only from here on.
func New(cfg *config.Config) *Simulation {
	seed := cfg.RandomSeed
	s := &Simulation{
		cfg:     cfg,
		geo:     risk.New(cfg, seed+seedRisk),
		fx:      rates.New(cfg, seed+seedRates),
		pm:      metals.New(cfg, seed+seedMetals),
		basket:  sdr.New(cfg, seed+seedSDR),
		reserve: reserves.New(cfg, seed+seedReserves),
	}
	// Fixed dependency order; later engines read fields written by
	// earlier ones within the same day.
	s.engines = []Engine{s.geo, s.fx, s.pm, s.basket, s.reserve}
	return s
}

// Initialize prepares all engines and the day-zero market state, and
// records the day-zero snapshot as the first result row.
func (s *Simulation) Initialize() {
	for _, e := range s.engines {
		e.Initialize()
	}
	s.now = s.cfg.Start()
	s.state = s.initialState()
	s.results = market.Table{s.state.Snap()}
}

// Reset returns the simulation to its freshly constructed state: engine
// random streams rewind, history clears.
func (s *Simulation) Reset() {
	for _, e := range s.engines {
		e.Reset()
	}
	s.now = s.cfg.Start()
	s.state = s.initialState()
	s.results = market.Table{s.state.Snap()}
}

func (s *Simulation) initialState() *market.State {
	st := market.NewState(s.now)

	// Scenario knobs that shape the macro backdrop.
	if s.cfg.InflationSurge > st.InflationExpectation {
		st.InflationExpectation = s.cfg.InflationSurge
		st.GlobalInflation = s.cfg.InflationSurge
	}
	st.MiningSupplyConstraints = s.cfg.MiningConstraint

	// Day-zero market values come straight from the configuration, before
	// any stochastic step runs.
	st.ExchangeRates = make(map[string]float64, len(s.cfg.MajorCurrencies))
	st.Volatilities = make(map[string]float64, len(s.cfg.MajorCurrencies))
	st.Volatilities[market.Base] = 0.0
	for _, c := range s.cfg.MajorCurrencies {
		if c == market.Base {
			continue
		}
		st.ExchangeRates[c] = s.fx.Rate(c)
		st.Volatilities[c] = s.cfg.Vol(c)
	}
	st.GoldPrice = s.cfg.InitialGoldPrice
	st.SilverPrice = s.cfg.InitialSilverPrice
	st.GoldSilverRatio = st.GoldPrice / st.SilverPrice
	st.GeopoliticalRisk = s.cfg.GeopoliticalBaseline
	st.SDRValueUSD = s.basket.ValueUSD()
	st.SDRBasket = s.basket.Basket()
	st.SDROutstanding = s.basket.Outstanding()
	st.CurrentAllocation = s.reserve.Current()
	st.TargetAllocation = s.reserve.Target()
	return st
}

// Step executes one simulated day and returns the merged snapshot. The
// engines run strictly in order; no engine sees a partially written field
// group from a later engine.
func (s *Simulation) Step() market.Snapshot {
	for _, e := range s.engines {
		delta := e.Step(s.now, s.state)
		delta.Apply(s.state)
	}

	s.updateIndicators()
	s.state.Time = s.now

	snap := s.state.Snap()
	s.results = append(s.results, snap)
	return snap
}

// updateIndicators derives the aggregate indicators every engine feeds
// from on the following day.
func (s *Simulation) updateIndicators() {
	st := s.state

	// Market stress from average currency volatility plus geopolitical
	// risk, clamped to [0,1].
	stress := math.Min(1.0, meanVol(st.Volatilities)*5 + st.GeopoliticalRisk*0.5)
	st.MarketStress = stress
	st.RiskSentiment = stress

	// Simplified USD index proxy over the four majors.
	var strength float64
	for _, c := range []string{"EUR", "GBP", "JPY", "CNY"} {
		rate, ok := st.ExchangeRates[c]
		if !ok || rate <= 0 {
			continue
		}
		if c == "EUR" || c == "GBP" {
			strength += (1.0 / rate) * 0.25
		} else {
			strength += rate * 0.25
		}
	}
	st.USDIndex = 100.0 * strength
}

// Run executes a complete simulation over the given horizon (months of 30
// simulated days each) and returns the time series of daily snapshots.
func (s *Simulation) Run(durationMonths int) market.Table {
	s.Initialize()

	end := s.now.AddDate(0, 0, durationMonths*30)
	for s.now.Before(end) {
		s.Advance()
		s.Step()
	}
	return s.results
}

// Advance moves the simulated clock forward one day. Callers driving the
// simulation manually call Advance then Step, as Run does; the day-zero
// row is recorded by Initialize.
func (s *Simulation) Advance() { s.now = s.now.AddDate(0, 0, 1) }

// Summary computes the per-category statistics block over a result
// table, using the configured currency universe.
func (s *Simulation) Summary(tbl market.Table) stats.Summary {
	return stats.Summarize(tbl, s.cfg.MajorCurrencies)
}

// Results returns the accumulated snapshot table of the current or last
// run.
func (s *Simulation) Results() market.Table { return s.results }

// Now returns the current simulated time.
func (s *Simulation) Now() time.Time { return s.now }

// Config returns the active configuration bundle.
func (s *Simulation) Config() *config.Config { return s.cfg }

func meanVol(vols map[string]float64) float64 {
	if len(vols) == 0 {
		return 0.1
	}
	var sum float64
	for _, v := range vols {
		sum += v
	}
	return sum / float64(len(vols))
}
