package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/reserveflow/market"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordSnapshot(s market.Snapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO snapshots
		(date, geopolitical_risk, fx_regime, market_stress, usd_index,
		 gold_price, silver_price, gold_silver_ratio,
		 sdr_value_usd, sdr_interest_rate, sdr_outstanding,
		 allocation_deviation, rebalanced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Time, s.GeopoliticalRisk, s.Regime.String(), s.MarketStress, s.USDIndex,
		s.GoldPrice, s.SilverPrice, s.GoldSilverRatio,
		s.SDRValueUSD, s.SDRInterestRate, s.SDROutstanding,
		s.AllocationDeviation, s.RebalanceExecuted,
	)
	if err != nil {
		return err
	}

	for _, c := range rateColumns {
		if _, err := j.db.Exec(`
			INSERT INTO rates (date, currency, rate, volatility)
			VALUES (?, ?, ?, ?)`,
			s.Time, c, s.ExchangeRates[c], s.Volatilities[c],
		); err != nil {
			return err
		}
	}

	for _, ev := range s.NewEvents {
		if _, err := j.db.Exec(`
			INSERT OR IGNORE INTO events (event_id, type, start_date, end_date, impact)
			VALUES (?, ?, ?, ?, ?)`,
			ev.ID, string(ev.Type), ev.Start, ev.End, ev.Impact,
		); err != nil {
			return err
		}
	}

	for _, tx := range s.SDRTransactions {
		if _, err := j.db.Exec(`
			INSERT OR IGNORE INTO transactions
			(tx_id, date, type, amount_sdr, amount_usd, purpose, stress_related)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			tx.ID, s.Time, tx.Type, tx.AmountSDR, tx.AmountUSD, tx.Purpose, tx.StressRelated,
		); err != nil {
			return err
		}
	}

	return nil
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
