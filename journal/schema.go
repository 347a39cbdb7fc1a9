// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	date DATETIME NOT NULL,
	geopolitical_risk REAL NOT NULL,
	fx_regime TEXT NOT NULL,
	market_stress REAL NOT NULL,
	usd_index REAL NOT NULL,
	gold_price REAL NOT NULL,
	silver_price REAL NOT NULL,
	gold_silver_ratio REAL NOT NULL,
	sdr_value_usd REAL NOT NULL,
	sdr_interest_rate REAL NOT NULL,
	sdr_outstanding REAL NOT NULL,
	allocation_deviation REAL NOT NULL,
	rebalanced INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS rates (
	date DATETIME NOT NULL,
	currency TEXT NOT NULL,
	rate REAL NOT NULL,
	volatility REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS events (
	event_id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	start_date DATETIME NOT NULL,
	end_date DATETIME NOT NULL,
	impact REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
	tx_id TEXT PRIMARY KEY,
	date DATETIME NOT NULL,
	type TEXT NOT NULL,
	amount_sdr REAL NOT NULL,
	amount_usd REAL NOT NULL,
	purpose TEXT NOT NULL,
	stress_related INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_date ON snapshots(date);
CREATE INDEX IF NOT EXISTS idx_rates_date ON rates(date);
`
