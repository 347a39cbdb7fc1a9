package sdr

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/reserveflow/config"
	"github.com/rustyeddy/reserveflow/market"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e := New(config.Default(), 42)
	e.Initialize()
	return e
}

func TestInitialize(t *testing.T) {
	e := newEngine(t)

	basket := e.Basket()
	var sum float64
	for _, w := range basket {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, weightTolerance)
	assert.Equal(t, 660.0, e.Outstanding())
	assert.Empty(t, e.Transactions())
}

func TestRevalue(t *testing.T) {
	e := newEngine(t)
	st := market.NewState(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	st.ExchangeRates = map[string]float64{
		"EUR": 1.12, "CNY": 1.0 / 6.45, "JPY": 1.0 / 110.0, "GBP": 1.31,
	}

	e.Step(st.Time, st).Apply(st)

	want := 0.43*1.0 + 0.29*1.12 + 0.13/6.45 + 0.08/110.0 + 0.07*1.31
	assert.InDelta(t, want, st.SDRValueUSD, 1e-9)
}

func TestInterestRateSmoothing(t *testing.T) {
	e := newEngine(t)
	st := market.NewState(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

	// Weighted basket rate with the default short rates.
	var weighted float64
	for _, c := range BasketCurrencies {
		weighted += initialBasket[c] * st.ShortRates[c]
	}
	want := 0.9*0.02 + 0.1*weighted

	e.Step(st.Time, st).Apply(st)
	assert.InDelta(t, want, st.SDRInterestRate, 1e-9)
}

func TestTransactionsAppearUnderStress(t *testing.T) {
	e := newEngine(t)
	st := market.NewState(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	st.MarketStress = 1.0
	st.GeopoliticalRisk = 1.0

	// Daily probability is 0.17 under full stress; a year without a single
	// transaction is implausible.
	now := st.Time
	for i := 0; i < 365; i++ {
		e.Step(now, st)
		now = now.AddDate(0, 0, 1)
	}
	txs := e.Transactions()
	require.NotEmpty(t, txs)

	for _, tx := range txs {
		assert.NotEmpty(t, tx.ID)
		assert.Contains(t, []string{"voluntary_exchange", "designation", "repurchase"}, tx.Type)
		assert.Greater(t, tx.AmountSDR, 0.0)
		assert.LessOrEqual(t, tx.AmountSDR, maxTransaction)
		assert.Equal(t, "crisis_liquidity", tx.Purpose)
		assert.True(t, tx.StressRelated)
	}
}

func TestEmergencyAllocationRequiresCrisis(t *testing.T) {
	e := newEngine(t)
	st := market.NewState(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

	// No crisis flag: never fires no matter the shortage.
	st.LiquidityShortage = 1.0
	for i := 0; i < 1000; i++ {
		assert.Zero(t, e.checkEmergencyAllocation(st))
	}
	assert.Equal(t, 660.0, e.Outstanding())
}

func TestEmergencyAllocationGrowsOutstanding(t *testing.T) {
	e := newEngine(t)
	st := market.NewState(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	st.GlobalCrisis = true
	st.LiquidityShortage = 1.0

	before := e.Outstanding()
	var granted float64
	for i := 0; i < 5000 && granted == 0; i++ {
		granted = e.checkEmergencyAllocation(st)
	}
	require.NotZero(t, granted, "allocation should fire within 5000 draws at 1% probability")

	assert.GreaterOrEqual(t, granted, 50.0)
	assert.Less(t, granted, 200.0)
	assert.Equal(t, before+granted, e.Outstanding())
}

func TestRebalanceValidWeights(t *testing.T) {
	e := newEngine(t)

	weights := map[string]float64{
		"USD": 0.40, "EUR": 0.30, "CNY": 0.15, "JPY": 0.08, "GBP": 0.07,
	}
	deltas, err := e.Rebalance(weights)
	require.NoError(t, err)

	assert.InDelta(t, -0.03, deltas["USD"], 1e-9)
	assert.InDelta(t, 0.01, deltas["EUR"], 1e-9)
	assert.Equal(t, weights, e.Basket())
}

func TestRebalanceRejectsBadWeights(t *testing.T) {
	e := newEngine(t)
	before := e.Basket()

	_, err := e.Rebalance(map[string]float64{"USD": 0.6, "EUR": 0.6})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidWeights)

	// Rejected whole: basket unchanged.
	assert.Equal(t, before, e.Basket())
}

func TestRebalanceWithinTolerance(t *testing.T) {
	e := newEngine(t)
	_, err := e.Rebalance(map[string]float64{
		"USD": 0.43, "EUR": 0.29, "CNY": 0.13, "JPY": 0.08, "GBP": 0.0705,
	})
	assert.NoError(t, err)
}

func TestBasketPerformance(t *testing.T) {
	e := newEngine(t)
	st := market.NewState(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	st.Volatilities = map[string]float64{
		"USD": 0.0, "EUR": 0.08, "CNY": 0.06, "JPY": 0.10, "GBP": 0.12,
	}
	st.CurrencyShocks = map[string]float64{
		"EUR": 0.002, "CNY": -0.001, "JPY": 0.0005, "GBP": 0.001,
	}

	perf := e.BasketPerformance(st)
	require.Len(t, perf.Currencies, len(BasketCurrencies))

	eur := perf.Currencies["EUR"]
	assert.Equal(t, 0.29, eur.Weight)
	assert.Equal(t, 0.08, eur.Volatility)
	assert.Equal(t, 0.002, eur.Return)
	assert.InDelta(t, 0.29*0.002, eur.SDRContribution, 1e-12)

	var wantReturn, wantVar float64
	for c, w := range initialBasket {
		wantReturn += w * st.CurrencyShocks[c]
		wantVar += (w * st.Volatilities[c]) * (w * st.Volatilities[c])
	}
	assert.InDelta(t, wantReturn, perf.BasketReturn, 1e-12)
	assert.InDelta(t, math.Sqrt(wantVar), perf.BasketVolatility, 1e-12)
}

func TestStepCarriesBasketPerformance(t *testing.T) {
	e := newEngine(t)
	st := market.NewState(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	st.Volatilities = map[string]float64{"EUR": 0.08, "JPY": 0.10, "GBP": 0.12, "CNY": 0.06}

	e.Step(st.Time, st).Apply(st)

	require.Len(t, st.SDRPerformance.Currencies, len(BasketCurrencies))
	assert.Greater(t, st.SDRPerformance.BasketVolatility, 0.0)
}

func TestDemandForecast(t *testing.T) {
	e := newEngine(t)
	st := market.NewState(time.Now())
	st.GeopoliticalRisk = 0.5

	forecast := e.DemandForecast(st, 6)
	assert.Equal(t, 6.0, forecast["forecast_horizon_months"])
	assert.Greater(t, forecast["risk_adjusted_demand"], forecast["base_demand"])
}

func TestResetRestoresState(t *testing.T) {
	e := newEngine(t)
	st := market.NewState(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	st.MarketStress = 1.0
	st.GeopoliticalRisk = 1.0

	now := st.Time
	for i := 0; i < 180; i++ {
		e.Step(now, st)
		now = now.AddDate(0, 0, 1)
	}

	e.Reset()
	assert.Equal(t, 660.0, e.Outstanding())
	assert.Empty(t, e.Transactions())
	assert.InDelta(t, 0.43, e.Basket()["USD"], 1e-9)
}
