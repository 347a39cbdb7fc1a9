package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/reserveflow/config"
	"github.com/rustyeddy/reserveflow/market"
)

func TestRunProducesDailyRows(t *testing.T) {
	s := New(config.Default())
	tbl := s.Run(1)

	// Day zero plus 30 stepped days.
	require.GreaterOrEqual(t, len(tbl), 28)

	dates := tbl.Dates()
	for i := 1; i < len(dates); i++ {
		assert.Equal(t, dates[i-1].AddDate(0, 0, 1), dates[i], "rows must be consecutive days")
	}
}

func TestDayZeroRow(t *testing.T) {
	cfg := config.Default()
	s := New(cfg)
	tbl := s.Run(1)

	require.NotEmpty(t, tbl)
	first := tbl[0]
	assert.Equal(t, cfg.InitialGoldPrice, first.GoldPrice)
	assert.Equal(t, cfg.InitialSilverPrice, first.SilverPrice)
	assert.Equal(t, cfg.Start(), first.Time)
	assert.InDelta(t, 1.12, first.ExchangeRates["EUR"], 1e-9)
}

func TestDeterminism(t *testing.T) {
	a := New(config.Default()).Run(3)
	b := New(config.Default()).Run(3)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].GoldPrice, b[i].GoldPrice, "day %d", i)
		assert.Equal(t, a[i].GeopoliticalRisk, b[i].GeopoliticalRisk, "day %d", i)
		assert.Equal(t, a[i].ExchangeRates, b[i].ExchangeRates, "day %d", i)
		assert.Equal(t, a[i].SDRValueUSD, b[i].SDRValueUSD, "day %d", i)
	}
}

func TestSeedChangesRun(t *testing.T) {
	a := New(config.Default()).Run(3)

	cfg := config.Default()
	cfg.RandomSeed = 1234
	b := New(cfg).Run(3)

	// Same length, different paths.
	require.Equal(t, len(a), len(b))
	assert.NotEqual(t, a[len(a)-1].GoldPrice, b[len(b)-1].GoldPrice)
}

func TestBoundsOverRun(t *testing.T) {
	s := New(config.Default())
	tbl := s.Run(6)

	for i, row := range tbl {
		assert.GreaterOrEqual(t, row.GeopoliticalRisk, 0.0, "day %d", i)
		assert.LessOrEqual(t, row.GeopoliticalRisk, 1.0, "day %d", i)
		assert.GreaterOrEqual(t, row.MarketStress, 0.0, "day %d", i)
		assert.LessOrEqual(t, row.MarketStress, 1.0, "day %d", i)
		assert.Greater(t, row.GoldPrice, 0.0, "day %d", i)
		assert.Greater(t, row.SilverPrice, 0.0, "day %d", i)
		for c, v := range row.Volatilities {
			if c == market.Base {
				continue
			}
			assert.GreaterOrEqual(t, v, 0.01, "day %d %s", i, c)
		}
	}
}

func TestAllocationNormalizedOverRun(t *testing.T) {
	s := New(config.Default())
	tbl := s.Run(3)

	for i, row := range tbl {
		var sum float64
		for _, w := range row.CurrentAllocation {
			sum += w
		}
		assert.InDelta(t, 1.0, sum, 1e-9, "day %d", i)
	}
}

func TestResetReproducesRun(t *testing.T) {
	s := New(config.Default())
	first := s.Run(2)

	s.Reset()
	second := s.Run(2)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].GoldPrice, second[i].GoldPrice, "day %d", i)
		assert.Equal(t, first[i].GeopoliticalRisk, second[i].GeopoliticalRisk, "day %d", i)
	}
}

func TestScenarioList(t *testing.T) {
	names := Scenarios()
	assert.Equal(t, []string{"baseline", "crisis", "dedollarization", "inflation_surge"}, names)
}

func TestUnknownScenarioFails(t *testing.T) {
	s := New(config.Default())

	tbl, err := s.RunScenario("foo", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownScenario)
	assert.Nil(t, tbl)
}

func TestBaselineScenarioMonth(t *testing.T) {
	s := New(config.Default())

	tbl, err := s.RunScenario("baseline", 1)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(tbl), 28)
	assert.Equal(t, 2000.0, tbl[0].GoldPrice)
}

func TestCrisisStressExceedsBaseline(t *testing.T) {
	s := New(config.Default())

	baseline, err := s.RunScenario("baseline", 6)
	require.NoError(t, err)
	crisis, err := s.RunScenario("crisis", 6)
	require.NoError(t, err)

	assert.Greater(t, crisis.MeanMarketStress(), baseline.MeanMarketStress())
}

func TestScenarioInheritsSeed(t *testing.T) {
	cfg := config.Default()
	cfg.RandomSeed = 77
	s := New(cfg)

	a, err := s.RunScenario("crisis", 2)
	require.NoError(t, err)
	b, err := s.RunScenario("crisis", 2)
	require.NoError(t, err)

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].GoldPrice, b[i].GoldPrice, "day %d", i)
	}
}

func TestStepSnapshotIsImmutable(t *testing.T) {
	s := New(config.Default())
	s.Initialize()

	s.Advance()
	snap := s.Step()
	gold := snap.GoldPrice
	rate := snap.ExchangeRates["EUR"]

	// Further steps must not reach back into recorded history.
	for i := 0; i < 30; i++ {
		s.Advance()
		s.Step()
	}
	assert.Equal(t, gold, snap.GoldPrice)
	assert.Equal(t, rate, snap.ExchangeRates["EUR"])
	assert.Equal(t, gold, s.Results()[1].GoldPrice)
}

func TestSummary(t *testing.T) {
	s := New(config.Default())
	tbl := s.Run(2)

	sum := s.Summary(tbl)
	require.NotNil(t, sum.Gold)
	require.NotNil(t, sum.Geopolitical)
	assert.Contains(t, sum.FX, "EUR")
	assert.NotContains(t, sum.FX, "USD")
	assert.Greater(t, sum.Gold.FinalPrice, 0.0)
}

func TestInflationSurgeBackdrop(t *testing.T) {
	s := New(config.InflationSurge())
	s.Initialize()

	tbl := s.Results()
	require.NotEmpty(t, tbl)
	assert.Equal(t, 0.08, tbl[0].InflationExpectation)
	assert.Equal(t, 0.15, tbl[0].MiningSupplyConstraints)
}
