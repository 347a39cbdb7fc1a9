package market

import "time"

// Base is the base currency all exchange rates are quoted against.
const Base = "USD"

// Regime identifies the prevailing FX volatility regime.
type Regime int

const (
	RegimeCalm Regime = iota
	RegimeCrisis
)

func (r Regime) String() string {
	if r == RegimeCrisis {
		return "crisis"
	}
	return "calm"
}

// EventType enumerates the geopolitical event archetypes the risk engine
// can trigger.
type EventType string

const (
	TradeWarEscalation EventType = "trade_war_escalation"
	MilitaryConflict   EventType = "military_conflict"
	SanctionsExpansion EventType = "sanctions_expansion"
	MajorCyberattack   EventType = "cyberattack_major"
	PoliticalCrisis    EventType = "political_crisis"
)

// Event is one discrete geopolitical event. Events are append-only: once
// created they are never mutated, only dropped from the active set after
// their End date passes.
type Event struct {
	ID         string
	Type       EventType
	Start      time.Time
	End        time.Time
	Impact     float64
	Currencies []string // currency codes, or the markers "all" / "regional"
}

// Affects reports whether the event touches the given currency.
func (ev Event) Affects(currency string) bool {
	for _, c := range ev.Currencies {
		if c == currency || c == "all" {
			return true
		}
	}
	return false
}

// CurrencyPerformance is one basket currency's share of the SDR basket's
// daily performance.
type CurrencyPerformance struct {
	Weight          float64
	Volatility      float64
	Return          float64 // daily log-rate shock
	SDRContribution float64 // weight x return
}

// BasketPerformance breaks the SDR basket's daily performance down by
// currency, with weight-aggregated basket return and volatility.
type BasketPerformance struct {
	Currencies       map[string]CurrencyPerformance
	BasketReturn     float64
	BasketVolatility float64
}

// Transaction is one SDR usage transaction. The log is append-only and
// never rolled back.
type Transaction struct {
	ID            string
	Type          string // voluntary_exchange, designation, repurchase
	AmountSDR     float64
	AmountUSD     float64
	Purpose       string // crisis_liquidity, reserve_management, portfolio_optimization
	StressRelated bool
}

// State is the shared market state for one simulated day. It is the single
// source of truth the engines read from and write to, in a fixed order:
// exactly one engine writes a given field group during its step segment,
// and later engines in the order observe only already-written fields.
//
// Zero values double as the defaults the original untyped lookups fell
// back to; callers that need the documented non-zero defaults go through
// NewState.
type State struct {
	Time time.Time

	// Global macro backdrop.
	GDPGrowth               float64
	GlobalInflation         float64
	GlobalReservesUSD       float64 // billions
	MarketStress            float64
	RiskSentiment           float64
	RealRates               float64
	InflationExpectation    float64
	USDIndex                float64
	TechGrowth              float64
	MiningGrowth            float64
	BaseMetalsProduction    float64
	MiningSupplyConstraints float64
	GlobalCrisis            bool
	LiquidityShortage       float64
	ShortRates              map[string]float64 // 3m money-market rates per currency

	// Written by the geopolitical risk engine.
	GeopoliticalRisk        float64
	RegionalRisks           map[string]float64
	ActiveEvents            []Event
	NewEvents               []Event
	DedollarizationPressure float64
	FlightToSafety          map[string]float64
	TradeTensions           float64
	MilitaryConflicts       float64
	SanctionsRisk           float64
	PoliticalInstability    float64
	EconomicWarfare         float64

	// Written by the exchange rate engine. ExchangeRates is quoted as USD
	// per one unit of currency, for every non-base currency.
	ExchangeRates  map[string]float64
	Volatilities   map[string]float64
	Regime         Regime
	CurrencyShocks map[string]float64

	// Written by the precious metals engine.
	GoldPrice       float64
	SilverPrice     float64
	GoldReturn      float64
	SilverReturn    float64
	GoldSilverRatio float64
	GoldImbalance   float64 // supply minus demand, tonnes/year
	SilverImbalance float64 // million ounces/year
	CBGoldDemand    float64
	GoldSupply      map[string]float64
	GoldDemand      map[string]float64
	SilverSupply    map[string]float64
	SilverDemand    map[string]float64

	// Written by the SDR engine.
	SDRValueUSD         float64
	SDRInterestRate     float64
	SDRBasket           map[string]float64
	SDROutstanding      float64 // SDR billions
	SDRTransactions     []Transaction
	EmergencyAllocation float64
	SDRMetrics          map[string]float64
	SDRPerformance      BasketPerformance

	// Written by the reserve management engine. Interventions carries over
	// to the next day's exchange rate step.
	CurrentAllocation   map[string]float64
	TargetAllocation    map[string]float64
	RebalanceExecuted   bool
	Interventions       map[string]float64
	AllocationDeviation float64
}

// NewState returns the market state at the start of a run, seeded with the
// macro backdrop the engines expect on day zero.
func NewState(start time.Time) *State {
	return &State{
		Time:                 start,
		GDPGrowth:            0.03,
		GlobalInflation:      0.025,
		GlobalReservesUSD:    12000,
		RealRates:            0.01,
		InflationExpectation: 0.025,
		USDIndex:             100.0,
		TechGrowth:           0.05,
		MiningGrowth:         0.01,
		BaseMetalsProduction: 1.0,
		ShortRates: map[string]float64{
			"USD": 0.05,
			"EUR": 0.03,
			"CNY": 0.03,
			"JPY": 0.001,
			"GBP": 0.04,
		},
	}
}

// Rate returns the USD-per-unit exchange rate for a currency, 1.0 when the
// currency is the base or the rate has not been written yet.
func (s *State) Rate(currency string) float64 {
	if currency == Base {
		return 1.0
	}
	if r, ok := s.ExchangeRates[currency]; ok && r > 0 {
		return r
	}
	return 1.0
}

// Volatility returns the current volatility for a currency, falling back
// to a 10% default before the exchange rate engine has run.
func (s *State) Volatility(currency string) float64 {
	if v, ok := s.Volatilities[currency]; ok {
		return v
	}
	return 0.10
}

// ShortRate returns the money-market rate for a currency, with a 2%
// fallback for currencies outside the tracked set.
func (s *State) ShortRate(currency string) float64 {
	if r, ok := s.ShortRates[currency]; ok {
		return r
	}
	return 0.02
}

// Delta is a typed partial state produced by one engine step and merged
// into the shared state by the orchestrator.
type Delta interface {
	Apply(*State)
}
