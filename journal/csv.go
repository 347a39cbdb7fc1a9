// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/reserveflow/market"
)

// rateColumns fixes the currency column order in the output file.
var rateColumns = []string{"EUR", "JPY", "GBP", "CNY"}

// allocColumns fixes the reserve allocation column order.
var allocColumns = []string{"USD", "EUR", "JPY", "GBP", "CNY", "gold", "SDR"}

type CSVJournal struct {
	w *csv.Writer
	f *os.File
}

func NewCSV(path string) (*CSVJournal, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)

	header := []string{"date", "geopolitical_risk", "fx_regime", "market_stress", "usd_index"}
	for _, c := range rateColumns {
		header = append(header, "rate_"+c, "vol_"+c)
	}
	header = append(header, "gold_price", "silver_price", "gold_silver_ratio",
		"sdr_value_usd", "sdr_interest_rate", "sdr_outstanding")
	for _, a := range allocColumns {
		header = append(header, "alloc_"+a)
	}
	header = append(header, "allocation_deviation", "rebalanced", "active_events")

	if err := w.Write(header); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{w, f}, nil
}

func (j *CSVJournal) RecordSnapshot(s market.Snapshot) error {
	row := []string{
		s.Time.Format(time.RFC3339),
		f(s.GeopoliticalRisk),
		s.Regime.String(),
		f(s.MarketStress),
		f(s.USDIndex),
	}
	for _, c := range rateColumns {
		row = append(row, f(s.ExchangeRates[c]), f(s.Volatilities[c]))
	}
	row = append(row, f(s.GoldPrice), f(s.SilverPrice), f(s.GoldSilverRatio),
		f(s.SDRValueUSD), f(s.SDRInterestRate), f(s.SDROutstanding))
	for _, a := range allocColumns {
		row = append(row, f(s.CurrentAllocation[a]))
	}
	row = append(row,
		f(s.AllocationDeviation),
		strconv.FormatBool(s.RebalanceExecuted),
		strconv.Itoa(len(s.ActiveEvents)),
	)

	if err := j.w.Write(row); err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSVJournal) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		return err
	}
	return j.f.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
