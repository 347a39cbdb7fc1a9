package market

import "time"

// Snapshot is one immutable daily row of the result table: a deep copy of
// the merged market state after all engines have run.
type Snapshot struct {
	State
}

// Snap copies the current state into an immutable snapshot. Maps and
// slices are cloned so later steps cannot mutate history.
func (s *State) Snap() Snapshot {
	cp := *s
	cp.ShortRates = cloneMap(s.ShortRates)
	cp.RegionalRisks = cloneMap(s.RegionalRisks)
	cp.ActiveEvents = cloneEvents(s.ActiveEvents)
	cp.NewEvents = cloneEvents(s.NewEvents)
	cp.FlightToSafety = cloneMap(s.FlightToSafety)
	cp.ExchangeRates = cloneMap(s.ExchangeRates)
	cp.Volatilities = cloneMap(s.Volatilities)
	cp.CurrencyShocks = cloneMap(s.CurrencyShocks)
	cp.GoldSupply = cloneMap(s.GoldSupply)
	cp.GoldDemand = cloneMap(s.GoldDemand)
	cp.SilverSupply = cloneMap(s.SilverSupply)
	cp.SilverDemand = cloneMap(s.SilverDemand)
	cp.SDRBasket = cloneMap(s.SDRBasket)
	cp.SDRTransactions = append([]Transaction(nil), s.SDRTransactions...)
	cp.SDRMetrics = cloneMap(s.SDRMetrics)
	cp.SDRPerformance.Currencies = clonePerformance(s.SDRPerformance.Currencies)
	cp.CurrentAllocation = cloneMap(s.CurrentAllocation)
	cp.TargetAllocation = cloneMap(s.TargetAllocation)
	cp.Interventions = cloneMap(s.Interventions)
	return Snapshot{State: cp}
}

func cloneMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clonePerformance(m map[string]CurrencyPerformance) map[string]CurrencyPerformance {
	if m == nil {
		return nil
	}
	out := make(map[string]CurrencyPerformance, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneEvents(evs []Event) []Event {
	if evs == nil {
		return nil
	}
	out := make([]Event, len(evs))
	for i, ev := range evs {
		out[i] = ev
		out[i].Currencies = append([]string(nil), ev.Currencies...)
	}
	return out
}

// Table is the time-ordered result of a run, one row per simulated day.
type Table []Snapshot

// Dates returns the simulated timestamp of every row.
func (t Table) Dates() []time.Time {
	out := make([]time.Time, len(t))
	for i, row := range t {
		out[i] = row.Time
	}
	return out
}

// GoldPrices returns the gold price series.
func (t Table) GoldPrices() []float64 {
	out := make([]float64, len(t))
	for i, row := range t {
		out[i] = row.GoldPrice
	}
	return out
}

// SilverPrices returns the silver price series.
func (t Table) SilverPrices() []float64 {
	out := make([]float64, len(t))
	for i, row := range t {
		out[i] = row.SilverPrice
	}
	return out
}

// Rates returns the USD-per-unit rate series for one currency.
func (t Table) Rates(currency string) []float64 {
	out := make([]float64, len(t))
	for i := range t {
		out[i] = t[i].Rate(currency)
	}
	return out
}

// GeopoliticalRisks returns the aggregate risk series.
func (t Table) GeopoliticalRisks() []float64 {
	out := make([]float64, len(t))
	for i, row := range t {
		out[i] = row.GeopoliticalRisk
	}
	return out
}

// MeanMarketStress averages the market stress column over the run.
func (t Table) MeanMarketStress() float64 {
	if len(t) == 0 {
		return 0
	}
	var sum float64
	for _, row := range t {
		sum += row.MarketStress
	}
	return sum / float64(len(t))
}
