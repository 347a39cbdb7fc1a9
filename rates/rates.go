// Package rates evolves exchange rates for the major reserve currencies
// against USD: a two-state calm/crisis regime drives regime-scaled
// stochastic volatility targets, correlated shocks move log-rates, and
// central bank interventions feed back from the reserve engine.
package rates

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/rustyeddy/reserveflow/config"
	"github.com/rustyeddy/reserveflow/internal/stochastic"
	"github.com/rustyeddy/reserveflow/market"
)

const (
	dt       = 1.0 / 365.25
	volFloor = 0.01
)

// Regime-scaled volatility targets: calm currencies track their base vol,
// crisis scales it by 2.5x.
var regimeMultipliers = [2]float64{1.0, 2.5}

// Engine is the multi-currency exchange rate engine.
type Engine struct {
	cfg *config.Config
	src *stochastic.Source

	currencies []string // non-base, in fixed draw order
	rates      map[string]float64
	vols       map[string]float64
	corr       *mat.SymDense
	regime     market.Regime

	volMeanReversion float64
	volOfVol         float64
}

// New constructs the engine with its own seeded random source.
func New(cfg *config.Config, seed int64) *Engine {
	var nonBase []string
	for _, c := range cfg.MajorCurrencies {
		if c != market.Base {
			nonBase = append(nonBase, c)
		}
	}
	return &Engine{
		cfg:        cfg,
		src:        stochastic.NewSource(seed),
		currencies: nonBase,
	}
}

// Initialize sets starting rates, volatilities, the repaired correlation
// matrix, and the calm regime.
func (e *Engine) Initialize() {
	e.rates = make(map[string]float64, len(e.currencies)+1)
	e.rates[market.Base] = 1.0
	for _, c := range e.currencies {
		e.rates[c] = initialRate(c, e.cfg)
	}

	e.vols = make(map[string]float64, len(e.currencies)+1)
	e.vols[market.Base] = 0.0
	for _, c := range e.currencies {
		e.vols[c] = e.cfg.Vol(c)
	}

	e.corr = e.buildCorrelation()
	e.regime = market.RegimeCalm
	e.volMeanReversion = 0.1
	e.volOfVol = 0.3
}

// Reset restores the engine to its freshly initialized state, rewinding
// the random stream.
func (e *Engine) Reset() {
	e.src.Reset()
	e.Initialize()
}

// initialRate converts a conventional pair quote to USD per unit.
func initialRate(currency string, cfg *config.Config) float64 {
	direct := currency + "/USD" // EUR/USD style: already USD per unit
	if r, ok := cfg.InitialExchangeRates[direct]; ok {
		return r
	}
	inverse := "USD/" + currency // USD/JPY style: invert
	if r, ok := cfg.InitialExchangeRates[inverse]; ok && r > 0 {
		return 1.0 / r
	}
	defaults := map[string]float64{
		"EUR": 1.12, "GBP": 1.31, "JPY": 0.009,
		"CNY": 0.155, "CHF": 1.09, "CAD": 0.80, "AUD": 0.75,
	}
	if r, ok := defaults[currency]; ok {
		return r
	}
	return 1.0
}

// Pairwise correlation seeds. Inconsistent entries are repaired to a
// positive definite matrix at initialization.
var pairCorrelations = map[[2]string]float64{
	{"EUR", "GBP"}: 0.65, {"EUR", "JPY"}: 0.25, {"CNY", "EUR"}: 0.15,
	{"CHF", "EUR"}: 0.85, {"CAD", "EUR"}: 0.45, {"AUD", "EUR"}: 0.35,
	{"GBP", "JPY"}: 0.20, {"CNY", "GBP"}: 0.10, {"CHF", "GBP"}: 0.55,
	{"CAD", "GBP"}: 0.40, {"AUD", "GBP"}: 0.50,
	{"CNY", "JPY"}: 0.30, {"CHF", "JPY"}: 0.15, {"CAD", "JPY"}: 0.25,
	{"AUD", "JPY"}: 0.35,
	{"CHF", "CNY"}: 0.05, {"CAD", "CNY"}: 0.20, {"AUD", "CNY"}: 0.25,
	{"CAD", "CHF"}: 0.30, {"AUD", "CHF"}: 0.25,
	{"AUD", "CAD"}: 0.60,
}

func pairKey(a, b string) [2]string {
	if a < b {
		return [2]string{a, b}
	}
	return [2]string{b, a}
}

func (e *Engine) buildCorrelation() *mat.SymDense {
	n := len(e.currencies)
	m := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		m.SetSym(i, i, 1.0)
		for j := i + 1; j < n; j++ {
			rho, ok := pairCorrelations[pairKey(e.currencies[i], e.currencies[j])]
			if !ok {
				rho = 0.1 // default low correlation
			}
			m.SetSym(i, j, rho)
		}
	}
	return stochastic.RepairCorrelation(m, 0.01)
}

// Output is the engine's daily contribution to the shared state.
type Output struct {
	Rates  map[string]float64
	Vols   map[string]float64
	Regime market.Regime
	Shocks map[string]float64
}

// Apply merges the output into the shared market state.
func (o Output) Apply(st *market.State) {
	st.ExchangeRates = o.Rates
	st.Volatilities = o.Vols
	st.Regime = o.Regime
	st.CurrencyShocks = o.Shocks
}

// Step advances rates one day: regime transition, volatility mean
// reversion, one correlated shock draw, then a log-rate update per
// currency.
func (e *Engine) Step(now time.Time, st *market.State) market.Delta {
	e.updateRegime(st)
	e.updateVolatilities()
	shocks := e.drawShocks()
	e.updateRates(shocks, st)

	return Output{
		Rates:  clone(e.rates),
		Vols:   clone(e.vols),
		Regime: e.regime,
		Shocks: shocks,
	}
}

// updateRegime runs the two-state chain. The calm-to-crisis probability
// grows with geopolitical risk and market stress, capped at 0.4; the
// crisis-to-calm probability is a flat 10%.
func (e *Engine) updateRegime(st *market.State) {
	stress := st.GeopoliticalRisk + st.MarketStress
	crisisProb := math.Min(0.4, 0.05+stress*0.3)

	switch e.regime {
	case market.RegimeCalm:
		if e.src.Uniform() < crisisProb {
			e.regime = market.RegimeCrisis
		}
	case market.RegimeCrisis:
		if e.src.Uniform() < 0.10 {
			e.regime = market.RegimeCalm
		}
	}
}

// updateVolatilities mean-reverts each currency's volatility toward its
// regime-scaled base, with its own Gaussian innovation. The 1% floor
// keeps downstream shock scales valid.
func (e *Engine) updateVolatilities() {
	mult := regimeMultipliers[e.regime]
	for _, c := range e.currencies {
		target := e.cfg.Vol(c) * mult
		current := e.vols[c]

		shock := e.src.Normal() * e.volOfVol * math.Sqrt(dt)
		next := current + e.volMeanReversion*(target-current)*dt + shock
		e.vols[c] = math.Max(next, volFloor)
	}
}

func (e *Engine) drawShocks() map[string]float64 {
	scaled := make([]float64, len(e.currencies))
	for i, c := range e.currencies {
		scaled[i] = e.vols[c] * math.Sqrt(dt)
	}
	draw := stochastic.CorrelatedShocks(e.corr, scaled, e.src)

	shocks := make(map[string]float64, len(e.currencies))
	for i, c := range e.currencies {
		shocks[c] = draw[i]
	}
	return shocks
}

// updateRates applies geometric Brownian motion per currency: log-rate
// increment = (drift + intervention) * dt + shock.
func (e *Engine) updateRates(shocks map[string]float64, st *market.State) {
	for _, c := range e.currencies {
		drift := e.drift(c, st)
		intervention := st.Interventions[c]
		change := (drift+intervention)*dt + shocks[c]
		e.rates[c] *= math.Exp(change)
	}
}

// drift combines currency-specific secular trends with a safe-haven vs.
// risk-currency split driven by ambient risk sentiment.
func (e *Engine) drift(currency string, st *market.State) float64 {
	var base float64
	switch currency {
	case "CNY":
		base += 0.02 // secular yuan appreciation
	case "EUR":
		base += 0.001
	case "JPY":
		base -= 0.005 // intervention bias
	}

	if currency == "CHF" || currency == "JPY" {
		base += st.RiskSentiment * 0.1
	} else {
		base -= st.RiskSentiment * 0.05
	}
	return base
}

// Rate returns the current USD-per-unit rate for a currency (1.0 for the
// base currency).
func (e *Engine) Rate(currency string) float64 {
	if currency == market.Base {
		return 1.0
	}
	return e.rates[currency]
}

// CrossRate returns the rate of one unit of from quoted in to.
func (e *Engine) CrossRate(from, to string) float64 {
	if from == market.Base {
		return 1.0 / e.rates[to]
	}
	if to == market.Base {
		return e.rates[from]
	}
	return e.rates[from] / e.rates[to]
}

// AllCrossRates returns every ordered currency pair's cross rate.
func (e *Engine) AllCrossRates() map[string]float64 {
	out := make(map[string]float64)
	for _, from := range e.cfg.MajorCurrencies {
		for _, to := range e.cfg.MajorCurrencies {
			if from != to {
				out[from+"/"+to] = e.CrossRate(from, to)
			}
		}
	}
	return out
}

// Correlation exposes the repaired correlation matrix (read-only use).
func (e *Engine) Correlation() *mat.SymDense { return e.corr }

func clone(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
