package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete, immutable parameter bundle for one simulation
// run. Engines hold a read-only reference and never mutate it.
type Config struct {
	// Simulation window and reproducibility.
	StartDate  string `json:"start_date" yaml:"start_date"`
	EndDate    string `json:"end_date" yaml:"end_date"`
	RandomSeed int64  `json:"random_seed" yaml:"random_seed"`

	// Currency universe. MajorCurrencies drives the exchange rate engine;
	// the first entry must be the base currency USD.
	MajorCurrencies   []string `json:"major_currencies" yaml:"major_currencies"`
	ReserveCurrencies []string `json:"reserve_currencies" yaml:"reserve_currencies"`

	// Initial market conditions. Rates are quoted as conventional pairs
	// (EUR/USD, USD/JPY, ...).
	InitialExchangeRates map[string]float64 `json:"initial_exchange_rates" yaml:"initial_exchange_rates"`
	InitialGoldPrice     float64            `json:"initial_gold_price" yaml:"initial_gold_price"`
	InitialSilverPrice   float64            `json:"initial_silver_price" yaml:"initial_silver_price"`

	// Volatility parameters (annualized).
	CurrencyVolatility map[string]float64 `json:"currency_volatility" yaml:"currency_volatility"`
	GoldVolatility     float64            `json:"gold_volatility" yaml:"gold_volatility"`
	SilverVolatility   float64            `json:"silver_volatility" yaml:"silver_volatility"`

	// Central bank behavior.
	NumCentralBanks          int     `json:"num_central_banks" yaml:"num_central_banks"`
	InterventionProbability  float64 `json:"intervention_probability" yaml:"intervention_probability"`
	InterventionStrength     float64 `json:"intervention_strength" yaml:"intervention_strength"`
	RebalancingFrequencyDays int     `json:"reserve_rebalancing_frequency" yaml:"reserve_rebalancing_frequency"`
	DiversificationSpeed     float64 `json:"reserve_diversification_speed" yaml:"reserve_diversification_speed"`

	// Risk parameters.
	CorrelationDecay float64 `json:"correlation_decay" yaml:"correlation_decay"`
	StressThreshold  float64 `json:"stress_threshold" yaml:"stress_threshold"`

	// Scenario trends.
	USDDeclineRate       float64 `json:"usd_dominance_decline_rate" yaml:"usd_dominance_decline_rate"`
	GoldCBPurchases      float64 `json:"gold_central_bank_purchases" yaml:"gold_central_bank_purchases"` // tonnes/year
	GeopoliticalBaseline float64 `json:"geopolitical_risk_baseline" yaml:"geopolitical_risk_baseline"`

	// Crisis scenario extras.
	FlightToSafetyIntensity float64 `json:"flight_to_safety_intensity,omitempty" yaml:"flight_to_safety_intensity,omitempty"`
	GoldSurgeFactor         float64 `json:"gold_surge_factor,omitempty" yaml:"gold_surge_factor,omitempty"`
	EmergencyLiquidationP   float64 `json:"emergency_liquidation_probability,omitempty" yaml:"emergency_liquidation_probability,omitempty"`
	LiquidationImpact       float64 `json:"liquidation_impact_factor,omitempty" yaml:"liquidation_impact_factor,omitempty"`

	// De-dollarization scenario extras.
	YuanAdoption          float64 `json:"yuan_adoption_acceleration,omitempty" yaml:"yuan_adoption_acceleration,omitempty"`
	SDRAllocationIncrease float64 `json:"sdr_allocation_increase,omitempty" yaml:"sdr_allocation_increase,omitempty"`
	SanctionsImpact       float64 `json:"sanctions_impact_factor,omitempty" yaml:"sanctions_impact_factor,omitempty"`
	ReserveFreezingRisk   float64 `json:"reserve_freezing_risk,omitempty" yaml:"reserve_freezing_risk,omitempty"`

	// Inflation surge scenario extras.
	InflationSurge        float64 `json:"global_inflation_surge,omitempty" yaml:"global_inflation_surge,omitempty"`
	InflationPersistence  float64 `json:"inflation_persistence,omitempty" yaml:"inflation_persistence,omitempty"`
	GoldTargetPrice       float64 `json:"gold_target_price,omitempty" yaml:"gold_target_price,omitempty"`
	SilverTargetPrice     float64 `json:"silver_target_price,omitempty" yaml:"silver_target_price,omitempty"`
	MetalMomentum         float64 `json:"precious_metal_momentum,omitempty" yaml:"precious_metal_momentum,omitempty"`
	MiningConstraint      float64 `json:"mining_supply_constraint,omitempty" yaml:"mining_supply_constraint,omitempty"`
	GoldHoardingIntensity float64 `json:"gold_hoarding_intensity,omitempty" yaml:"gold_hoarding_intensity,omitempty"`
}

// Start parses the configured start date, falling back to 2020-01-01.
func (c *Config) Start() time.Time {
	t, err := time.Parse("2006-01-02", c.StartDate)
	if err != nil {
		return time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

// Vol returns the configured base volatility for a currency, with a 10%
// default for currencies outside the table.
func (c *Config) Vol(currency string) float64 {
	if v, ok := c.CurrencyVolatility[currency]; ok {
		return v
	}
	return 0.10
}

// LoadFromFile loads a configuration from a YAML or JSON file. The loaded
// bundle starts from Default() so partial files only override.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration as YAML (.yaml/.yml) or indented
// JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the structural requirements every engine relies on.
func (c *Config) Validate() error {
	if len(c.MajorCurrencies) < 2 {
		return fmt.Errorf("major_currencies must list the base currency plus at least one other")
	}
	if c.MajorCurrencies[0] != "USD" {
		return fmt.Errorf("major_currencies must start with the base currency USD, got %q", c.MajorCurrencies[0])
	}
	if c.InitialGoldPrice <= 0 || c.InitialSilverPrice <= 0 {
		return fmt.Errorf("initial metal prices must be positive")
	}
	if c.GoldVolatility <= 0 || c.SilverVolatility <= 0 {
		return fmt.Errorf("metal volatilities must be positive")
	}
	if c.GeopoliticalBaseline < 0 || c.GeopoliticalBaseline > 1 {
		return fmt.Errorf("geopolitical_risk_baseline must be within [0,1], got %v", c.GeopoliticalBaseline)
	}
	if c.InterventionProbability < 0 || c.InterventionProbability > 1 {
		return fmt.Errorf("intervention_probability must be within [0,1], got %v", c.InterventionProbability)
	}
	if c.RebalancingFrequencyDays <= 0 {
		return fmt.Errorf("reserve_rebalancing_frequency must be positive")
	}
	for cur, v := range c.CurrencyVolatility {
		if v <= 0 {
			return fmt.Errorf("currency_volatility[%s] must be positive, got %v", cur, v)
		}
	}
	if _, err := time.Parse("2006-01-02", c.StartDate); err != nil {
		return fmt.Errorf("start_date must be YYYY-MM-DD: %w", err)
	}
	return nil
}

func base() *Config {
	return &Config{
		StartDate:         "2020-01-01",
		EndDate:           "2025-12-31",
		RandomSeed:        42,
		MajorCurrencies:   []string{"USD", "EUR", "JPY", "GBP", "CNY"},
		ReserveCurrencies: []string{"USD", "EUR", "JPY", "GBP", "CNY", "CHF", "CAD", "AUD"},
		InitialExchangeRates: map[string]float64{
			"EUR/USD": 1.1200,
			"GBP/USD": 1.3100,
			"USD/JPY": 110.00,
			"USD/CNY": 6.4500,
			"USD/CHF": 0.9200,
			"USD/CAD": 1.2500,
			"AUD/USD": 0.7500,
		},
		InitialGoldPrice:   2000.0,
		InitialSilverPrice: 25.0,
		CurrencyVolatility: map[string]float64{
			"EUR": 0.08,
			"GBP": 0.12,
			"JPY": 0.10,
			"CNY": 0.06,
			"CHF": 0.09,
			"CAD": 0.11,
			"AUD": 0.14,
		},
		GoldVolatility:           0.20,
		SilverVolatility:         0.35,
		NumCentralBanks:          50,
		InterventionProbability:  0.05,
		RebalancingFrequencyDays: 30,
		CorrelationDecay:         0.95,
		StressThreshold:          2.0,
	}
}

// Default returns the baseline scenario configuration.
func Default() *Config {
	c := base()
	c.USDDeclineRate = 0.005
	c.GoldCBPurchases = 1000.0
	c.GeopoliticalBaseline = 0.3
	c.InterventionStrength = 0.5
	c.DiversificationSpeed = 0.02
	return c
}

// Crisis returns the heightened-volatility crisis scenario.
func Crisis() *Config {
	c := Default()
	c.CurrencyVolatility = map[string]float64{
		"EUR": 0.25,
		"GBP": 0.30,
		"JPY": 0.20,
		"CNY": 0.15,
		"CHF": 0.18,
		"CAD": 0.28,
		"AUD": 0.35,
	}
	c.GoldVolatility = 0.40
	c.SilverVolatility = 0.60
	c.GeopoliticalBaseline = 0.8
	c.GoldCBPurchases = 1500.0
	c.InterventionStrength = 1.2
	c.FlightToSafetyIntensity = 2.0
	c.GoldSurgeFactor = 1.5
	c.EmergencyLiquidationP = 0.02
	c.LiquidationImpact = 0.15
	return c
}

// Dedollarization returns the accelerated de-dollarization scenario.
func Dedollarization() *Config {
	c := Default()
	c.USDDeclineRate = 0.02
	c.YuanAdoption = 0.03
	c.GoldCBPurchases = 1800.0
	c.InterventionStrength = 0.6
	c.SDRAllocationIncrease = 0.15
	c.SanctionsImpact = 0.3
	c.ReserveFreezingRisk = 0.1
	return c
}

// InflationSurge returns the inflation surge / precious metal rally
// scenario.
func InflationSurge() *Config {
	c := Default()
	c.InflationSurge = 0.08
	c.InflationPersistence = 0.9
	c.GoldTargetPrice = 3500.0
	c.SilverTargetPrice = 45.0
	c.MetalMomentum = 1.8
	c.MiningConstraint = 0.15
	c.GoldHoardingIntensity = 2.0
	c.InterventionStrength = 0.9
	c.GoldCBPurchases = 2000.0
	return c
}
