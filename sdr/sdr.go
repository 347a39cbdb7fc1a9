// Package sdr models an SDR-style international reserve asset: a
// fixed-weight five-currency basket valuation, a smoothed basket interest
// rate, discrete usage transactions, emergency allocations, and periodic
// basket rebalancing.
package sdr

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/reserveflow/config"
	"github.com/rustyeddy/reserveflow/internal/id"
	"github.com/rustyeddy/reserveflow/internal/stochastic"
	"github.com/rustyeddy/reserveflow/market"
)

// ErrInvalidWeights rejects basket rebalancing when the proposed weights
// do not sum to 1 within tolerance.
var ErrInvalidWeights = errors.New("sdr: basket weights must sum to 1.0")

const (
	weightTolerance = 0.001
	sdrValueWindow  = 30
	maxTransaction  = 5000.0 // SDR millions
)

// BasketCurrencies lists the basket in fixed weight order (2022 review).
var BasketCurrencies = []string{"USD", "EUR", "CNY", "JPY", "GBP"}

var initialBasket = map[string]float64{
	"USD": 0.43,
	"EUR": 0.29,
	"CNY": 0.13,
	"JPY": 0.08,
	"GBP": 0.07,
}

var transactionTypes = []string{"voluntary_exchange", "designation", "repurchase"}
var transactionTypeWeights = []float64{0.4, 0.4, 0.2}

// Engine is the SDR system engine.
type Engine struct {
	cfg *config.Config
	src *stochastic.Source

	basket       map[string]float64
	outstanding  float64 // SDR billions
	valueUSD     float64
	interestRate float64

	allocations  map[string]float64 // SDR billions by country
	transactions []market.Transaction
	emergencies  float64

	recentValues []float64 // for the basket volatility metric
}

// New constructs the engine with its own seeded random source.
func New(cfg *config.Config, seed int64) *Engine {
	return &Engine{
		cfg: cfg,
		src: stochastic.NewSource(seed),
	}
}

// Initialize sets the 2022-review basket, outstanding stock, and country
// allocations.
func (e *Engine) Initialize() {
	e.basket = make(map[string]float64, len(initialBasket))
	for k, v := range initialBasket {
		e.basket[k] = v
	}
	e.outstanding = 660.0 // post-2021 allocation
	e.valueUSD = 1.35
	e.interestRate = 0.02
	e.allocations = map[string]float64{
		"USA": 66.0, "CHN": 43.0, "JPN": 31.0, "GER": 26.0,
		"FRA": 20.0, "GBR": 20.0, "ITA": 15.0, "IND": 13.0,
		"RUS": 12.0, "CAN": 11.0, "others": 403.0,
	}
	e.transactions = nil
	e.emergencies = 0
	e.recentValues = nil
	e.revalue(nil)
}

// Reset restores initial state and rewinds the random stream.
func (e *Engine) Reset() {
	e.src.Reset()
	e.Initialize()
}

// Output is the engine's daily contribution to the shared state.
type Output struct {
	ValueUSD            float64
	InterestRate        float64
	Basket              map[string]float64
	Outstanding         float64
	Transactions        []market.Transaction
	EmergencyAllocation float64
	Metrics             map[string]float64
	Performance         market.BasketPerformance
}

// Apply merges the output into the shared market state.
func (o Output) Apply(st *market.State) {
	st.SDRValueUSD = o.ValueUSD
	st.SDRInterestRate = o.InterestRate
	st.SDRBasket = o.Basket
	st.SDROutstanding = o.Outstanding
	st.SDRTransactions = o.Transactions
	st.EmergencyAllocation = o.EmergencyAllocation
	st.SDRMetrics = o.Metrics
	st.SDRPerformance = o.Performance
}

// Step advances the SDR system one day.
func (e *Engine) Step(now time.Time, st *market.State) market.Delta {
	e.revalue(st)
	e.updateInterestRate(st)
	newTx := e.simulateTransactions(st)
	emergency := e.checkEmergencyAllocation(st)

	basket := make(map[string]float64, len(e.basket))
	for k, v := range e.basket {
		basket[k] = v
	}

	return Output{
		ValueUSD:            e.valueUSD,
		InterestRate:        e.interestRate,
		Basket:              basket,
		Outstanding:         e.outstanding,
		Transactions:        newTx,
		EmergencyAllocation: emergency,
		Metrics:             e.metrics(st),
		Performance:         e.BasketPerformance(st),
	}
}

// BasketPerformance breaks the basket's daily performance down per
// currency: weight, prevailing volatility, the day's log-rate shock, and
// the weight-scaled contribution to the basket. Basket volatility
// aggregates weight-scaled currency volatilities as if independent.
func (e *Engine) BasketPerformance(st *market.State) market.BasketPerformance {
	out := market.BasketPerformance{
		Currencies: make(map[string]market.CurrencyPerformance, len(e.basket)),
	}
	for c, w := range e.basket {
		p := market.CurrencyPerformance{
			Weight:          w,
			Volatility:      st.Volatility(c),
			Return:          st.CurrencyShocks[c],
			SDRContribution: w * st.CurrencyShocks[c],
		}
		out.Currencies[c] = p
		out.BasketReturn += p.SDRContribution
		out.BasketVolatility += (w * p.Volatility) * (w * p.Volatility)
	}
	out.BasketVolatility = math.Sqrt(out.BasketVolatility)
	return out
}

// revalue prices the basket as the weighted sum of USD values of one unit
// of each basket currency. A nil state uses unit rates.
func (e *Engine) revalue(st *market.State) {
	var value float64
	for _, c := range BasketCurrencies {
		w := e.basket[c]
		if c == market.Base || st == nil {
			value += w
			continue
		}
		value += w * st.Rate(c)
	}
	e.valueUSD = value

	e.recentValues = append(e.recentValues, value)
	if len(e.recentValues) > sdrValueWindow {
		e.recentValues = e.recentValues[len(e.recentValues)-sdrValueWindow:]
	}
}

// updateInterestRate smooths the weighted average of basket-currency
// money market rates with a 0.9/0.1 exponential filter.
func (e *Engine) updateInterestRate(st *market.State) {
	var weighted float64
	for _, c := range BasketCurrencies {
		weighted += e.basket[c] * st.ShortRate(c)
	}
	e.interestRate = 0.9*e.interestRate + 0.1*weighted
}

// simulateTransactions performs the daily usage draw. Transaction
// probability rises with market stress and geopolitical risk.
func (e *Engine) simulateTransactions(st *market.State) []market.Transaction {
	prob := 0.02 + st.MarketStress*0.1 + st.GeopoliticalRisk*0.05
	if e.src.Uniform() >= prob {
		return nil
	}

	size := e.src.LogNormal(math.Log(100), 0.5)
	size = math.Min(size, maxTransaction)

	tx := market.Transaction{
		ID:            id.New(),
		Type:          transactionTypes[e.src.Pick(transactionTypeWeights)],
		AmountSDR:     size,
		AmountUSD:     size * e.valueUSD,
		Purpose:       transactionPurpose(st.MarketStress),
		StressRelated: st.MarketStress > 0.5,
	}
	e.transactions = append(e.transactions, tx)
	return []market.Transaction{tx}
}

func transactionPurpose(stress float64) string {
	switch {
	case stress > 0.7:
		return "crisis_liquidity"
	case stress > 0.4:
		return "reserve_management"
	default:
		return "portfolio_optimization"
	}
}

// checkEmergencyAllocation triggers only under a global crisis with a
// liquidity shortage; the success probability scales with the shortage.
// On success the outstanding stock grows and the new units distribute
// pro rata by country quota. The allocation log is irreversible.
func (e *Engine) checkEmergencyAllocation(st *market.State) float64 {
	if !st.GlobalCrisis || st.LiquidityShortage <= 0.5 {
		return 0
	}
	if e.src.Uniform() >= 0.01*st.LiquidityShortage {
		return 0
	}

	allocation := e.src.UniformRange(50, 200) // SDR billions
	e.outstanding += allocation
	e.emergencies += allocation

	// Named economies split by quota; the rest of the world takes a flat
	// half share.
	const namedQuotaTotal = 257.0
	for country, quota := range e.allocations {
		if country == "others" {
			continue
		}
		e.allocations[country] = quota + allocation*(quota/namedQuotaTotal)
	}
	e.allocations["others"] += allocation * 0.5

	return allocation
}

func (e *Engine) metrics(st *market.State) map[string]float64 {
	reserves := st.GlobalReservesUSD
	if reserves <= 0 {
		reserves = 12000
	}
	share := e.outstanding * e.valueUSD / reserves * 100

	var quarterly float64
	for _, tx := range tail(e.transactions, 90) {
		quarterly += tx.AmountSDR
	}

	var avgSize float64
	if recent := tail(e.transactions, 30); len(recent) > 0 {
		for _, tx := range recent {
			avgSize += tx.AmountSDR
		}
		avgSize /= float64(len(recent))
	}

	return map[string]float64{
		"sdr_share_of_reserves":    share,
		"sdr_volatility":           e.volatility(),
		"sdr_attractiveness":       e.attractiveness(st),
		"usage_rate":               quarterly / e.outstanding * 100,
		"average_transaction_size": avgSize,
	}
}

// volatility estimates annualized basket volatility from the last 30
// daily values; too little history falls back to a 5% default.
func (e *Engine) volatility() float64 {
	if len(e.recentValues) < sdrValueWindow {
		return 0.05
	}
	var returns []float64
	for i := 1; i < len(e.recentValues); i++ {
		returns = append(returns, math.Log(e.recentValues[i]/e.recentValues[i-1]))
	}
	return stddev(returns) * math.Sqrt(252)
}

// attractiveness scores the basket against single-currency reserves:
// diversification pays off under uncertainty, operational complexity and
// thin liquidity count against it.
func (e *Engine) attractiveness(st *market.State) float64 {
	a := 0.5
	a += st.GeopoliticalRisk * 0.3
	a += st.DedollarizationPressure * 0.4
	a += meanVol(st.Volatilities) * 0.2
	a -= 0.1 + 0.05 // complexity + limited secondary market
	return math.Max(0, math.Min(1, a))
}

// Rebalance replaces the basket weights. The new weights must sum to 1
// within the 0.001 tolerance or the rebalance is rejected whole. It
// returns the per-currency weight deltas.
func (e *Engine) Rebalance(weights map[string]float64) (map[string]float64, error) {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return nil, fmt.Errorf("%w: got %.4f", ErrInvalidWeights, sum)
	}

	deltas := make(map[string]float64)
	for c := range e.basket {
		deltas[c] = weights[c] - e.basket[c]
	}
	for c := range weights {
		if _, seen := e.basket[c]; !seen {
			deltas[c] = weights[c]
		}
	}

	e.basket = make(map[string]float64, len(weights))
	for c, w := range weights {
		e.basket[c] = w
	}
	return deltas, nil
}

// DemandForecast projects SDR demand from current risk conditions.
func (e *Engine) DemandForecast(st *market.State, monthsAhead int) map[string]float64 {
	base := e.outstanding * 0.1 // 10% annual turnover
	mult := 1.0 + st.GeopoliticalRisk*0.5 + st.LiquidityShortage*0.3

	return map[string]float64{
		"base_demand":             base,
		"risk_adjusted_demand":    base * mult,
		"demand_multiplier":       mult,
		"forecast_horizon_months": float64(monthsAhead),
	}
}

// Basket returns a copy of the current weights.
func (e *Engine) Basket() map[string]float64 {
	out := make(map[string]float64, len(e.basket))
	for k, v := range e.basket {
		out[k] = v
	}
	return out
}

// ValueUSD returns the current basket value in USD.
func (e *Engine) ValueUSD() float64 { return e.valueUSD }

// Outstanding returns total SDR units outstanding, in billions.
func (e *Engine) Outstanding() float64 { return e.outstanding }

// Transactions returns the full append-only transaction log.
func (e *Engine) Transactions() []market.Transaction {
	return append([]market.Transaction(nil), e.transactions...)
}

func tail(txs []market.Transaction, n int) []market.Transaction {
	if len(txs) <= n {
		return txs
	}
	return txs[len(txs)-n:]
}

func meanVol(vols map[string]float64) float64 {
	if len(vols) == 0 {
		return 0.1
	}
	var sum float64
	var n int
	for _, v := range vols {
		sum += v
		n++
	}
	return sum / float64(n)
}

func stddev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	m := sum / float64(len(xs))
	var ss float64
	for _, x := range xs {
		ss += (x - m) * (x - m)
	}
	return math.Sqrt(ss / float64(len(xs)))
}
