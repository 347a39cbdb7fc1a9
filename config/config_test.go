package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, int64(42), cfg.RandomSeed)
	assert.Contains(t, cfg.MajorCurrencies, "USD")
	assert.Contains(t, cfg.MajorCurrencies, "EUR")
	assert.Equal(t, 2000.0, cfg.InitialGoldPrice)
	assert.Greater(t, cfg.GoldVolatility, 0.0)
	assert.NoError(t, cfg.Validate())
}

func TestScenarioConfigs(t *testing.T) {
	base := Default()

	crisis := Crisis()
	assert.Greater(t, crisis.GoldVolatility, 0.3)
	assert.Greater(t, crisis.GeopoliticalBaseline, base.GeopoliticalBaseline)
	assert.Greater(t, crisis.CurrencyVolatility["EUR"], base.CurrencyVolatility["EUR"])
	assert.NoError(t, crisis.Validate())

	dedollar := Dedollarization()
	assert.Greater(t, dedollar.USDDeclineRate, base.USDDeclineRate)
	assert.Greater(t, dedollar.YuanAdoption, 0.0)
	assert.NoError(t, dedollar.Validate())

	inflation := InflationSurge()
	assert.Greater(t, inflation.InflationSurge, 0.0)
	assert.Greater(t, inflation.GoldTargetPrice, inflation.InitialGoldPrice)
	assert.NoError(t, inflation.Validate())
}

func TestStartFallback(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "2020-01-01", cfg.Start().Format("2006-01-02"))

	cfg.StartDate = "not-a-date"
	assert.Equal(t, "2020-01-01", cfg.Start().Format("2006-01-02"))
}

func TestVolDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 0.08, cfg.Vol("EUR"))
	assert.Equal(t, 0.10, cfg.Vol("XXX"))
}

func TestSaveLoadYAML(t *testing.T) {
	cfg := Crisis()
	path := filepath.Join(t.TempDir(), "crisis.yaml")

	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.GoldVolatility, loaded.GoldVolatility)
	assert.Equal(t, cfg.GeopoliticalBaseline, loaded.GeopoliticalBaseline)
	assert.Equal(t, cfg.CurrencyVolatility["AUD"], loaded.CurrencyVolatility["AUD"])
}

func TestSaveLoadJSON(t *testing.T) {
	cfg := Default()
	path := filepath.Join(t.TempDir(), "config.json")

	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.InitialGoldPrice, loaded.InitialGoldPrice)
	assert.Equal(t, cfg.RandomSeed, loaded.RandomSeed)
}

func TestLoadPartialOverridesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("random_seed: 99\n"), 0644))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(99), loaded.RandomSeed)
	// Everything else keeps the baseline values.
	assert.Equal(t, 2000.0, loaded.InitialGoldPrice)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.InitialGoldPrice = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.MajorCurrencies = []string{"EUR", "USD"}
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.GeopoliticalBaseline = 1.5
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.RebalancingFrequencyDays = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.CurrencyVolatility["EUR"] = -0.1
	assert.Error(t, cfg.Validate())
}
