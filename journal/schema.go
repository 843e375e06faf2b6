package journal

// Schema creates the journal tables. Executed on open so a fresh
// database file is immediately usable.
const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id      TEXT PRIMARY KEY,
	direction     TEXT NOT NULL,
	rule          TEXT NOT NULL,
	quantity      REAL NOT NULL,
	entry_price   REAL NOT NULL,
	exit_price    REAL NOT NULL,
	open_time     TEXT NOT NULL,
	close_time    TEXT NOT NULL,
	realized_pnl  REAL NOT NULL,
	reason        TEXT NOT NULL,
	atr_at_entry  REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	time   TEXT NOT NULL,
	equity REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_close_time ON trades(close_time);
CREATE INDEX IF NOT EXISTS idx_equity_time ON equity(time);
`
