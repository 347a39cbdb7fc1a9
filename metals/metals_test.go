package metals

import (
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
	assert.Equal(t, 2000.0, e.GoldPrice())
	assert.Equal(t, 25.0, e.SilverPrice())
}

func TestStepOutput(t *testing.T) {
	e := newEngine(t)
	st := market.NewState(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

	e.Step(st.Time, st).Apply(st)

	assert.Greater(t, st.GoldPrice, 0.0)
	assert.Greater(t, st.SilverPrice, 0.0)
	assert.InDelta(t, st.GoldPrice/st.SilverPrice, st.GoldSilverRatio, 1e-9)
	require.Contains(t, st.GoldSupply, "total")
	require.Contains(t, st.GoldDemand, "total")
	assert.Greater(t, st.GoldDemand["total"], 0.0)
}

func TestPricesStayPositive(t *testing.T) {
	e := newEngine(t)
	st := market.NewState(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

	now := st.Time
	for i := 0; i < 730; i++ {
		e.Step(now, st).Apply(st)
		assert.Greater(t, st.GoldPrice, 0.0)
		assert.Greater(t, st.SilverPrice, 0.0)
		now = now.AddDate(0, 0, 1)
	}
}

func TestDeterminism(t *testing.T) {
	run := func() []float64 {
		e := New(config.Default(), 42)
		e.Initialize()
		st := market.NewState(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))

		var prices []float64
		now := st.Time
		for i := 0; i < 180; i++ {
			e.Step(now, st).Apply(st)
			prices = append(prices, st.GoldPrice)
			now = now.AddDate(0, 0, 1)
		}
		return prices
	}

	assert.Equal(t, run(), run())
}

func TestResetReproducesRun(t *testing.T) {
	e := newEngine(t)
	st := market.NewState(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	now := st.Time
	for i := 0; i < 90; i++ {
		e.Step(now, st).Apply(st)
		now = now.AddDate(0, 0, 1)
	}
	first := e.GoldPrice()

	e.Reset()
	assert.Equal(t, 2000.0, e.GoldPrice())

	st = market.NewState(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC))
	now = st.Time
	for i := 0; i < 90; i++ {
		e.Step(now, st).Apply(st)
		now = now.AddDate(0, 0, 1)
	}
	assert.Equal(t, first, e.GoldPrice())
}

func TestCentralBankDemandScalesWithRisk(t *testing.T) {
	e := newEngine(t)

	calm := market.NewState(time.Now())
	e.updateGoldDemand(calm)
	calmCB := e.goldDemand["central_banks"]

	tense := market.NewState(time.Now())
	tense.GeopoliticalRisk = 0.9
	e.updateGoldDemand(tense)

	assert.Greater(t, e.goldDemand["central_banks"], calmCB)
}

func TestInvestmentDemandClamped(t *testing.T) {
	e := newEngine(t)

	st := market.NewState(time.Now())
	st.RealRates = 1.0 // absurdly high real rates
	e.updateGoldDemand(st)
	assert.InDelta(t, 800.0*0.5, e.goldDemand["investment"], 1e-9)

	st.RealRates = -1.0
	e.updateGoldDemand(st)
	assert.InDelta(t, 800.0*2.0, e.goldDemand["investment"], 1e-9)
}

func TestSeasonality(t *testing.T) {
	assert.Equal(t, 0.05, seasonalGold(time.November))
	assert.Equal(t, 0.03, seasonalGold(time.January))
	assert.Equal(t, 0.0, seasonalGold(time.June))

	assert.Equal(t, 0.02, seasonalSilver(time.April))
	assert.Equal(t, 0.0, seasonalSilver(time.December))
}

func TestGoldSilverRatioReverts(t *testing.T) {
	e := newEngine(t)

	// Push the ratio far above target; the adjustment must lift silver.
	e.goldPrice = 4000.0
	e.silverPrice = 20.0 // ratio 200
	before := e.silverPrice
	e.revertGoldSilverRatio()
	assert.Greater(t, e.silverPrice, before)

	// Near target, no adjustment fires.
	e.goldPrice = 2000.0
	e.silverPrice = 25.0 // ratio 80
	before = e.silverPrice
	e.revertGoldSilverRatio()
	assert.Equal(t, before, e.silverPrice)
}

func TestMiningConstraintCutsSupply(t *testing.T) {
	e := newEngine(t)

	st := market.NewState(time.Now())
	e.updateGoldSupply(st)
	unconstrained := e.goldSupply["mine_production"]

	st.MiningSupplyConstraints = 0.15
	e.updateGoldSupply(st)
	assert.Less(t, e.goldSupply["mine_production"], unconstrained)
}

func TestRealReturn(t *testing.T) {
	e := newEngine(t)
	e.goldPrice = 2200.0 // +10% nominal

	real := e.RealReturn("gold", 0.05)
	assert.InDelta(t, 1.10/1.05-1, real, 1e-9)
}
