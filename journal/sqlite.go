package journal

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteJournal persists trades and equity points to a SQLite database.
type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}
	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO trades (
			trade_id, direction, rule, quantity, entry_price, exit_price,
			open_time, close_time, realized_pnl, reason, atr_at_entry
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID,
		t.Direction,
		t.Rule,
		t.Quantity,
		t.EntryPrice,
		t.ExitPrice,
		t.OpenTime.UTC().Format(time.RFC3339),
		t.CloseTime.UTC().Format(time.RFC3339),
		t.RealizedPnL,
		t.Reason,
		t.ATRAtEntry,
	)
	if err != nil {
		return fmt.Errorf("insert trade %s: %w", t.TradeID, err)
	}
	return nil
}

func (j *SQLiteJournal) RecordEquity(e EquitySnapshot) error {
	_, err := j.db.Exec(`INSERT INTO equity (time, equity) VALUES (?, ?)`,
		e.Time.UTC().Format(time.RFC3339), e.Equity)
	if err != nil {
		return fmt.Errorf("insert equity point: %w", err)
	}
	return nil
}

// Trades reads back every recorded trade ordered by close time.
func (j *SQLiteJournal) Trades() ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT trade_id, direction, rule, quantity, entry_price, exit_price,
		       open_time, close_time, realized_pnl, reason, atr_at_entry
		FROM trades ORDER BY close_time`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		var open, closeT string
		if err := rows.Scan(&t.TradeID, &t.Direction, &t.Rule, &t.Quantity,
			&t.EntryPrice, &t.ExitPrice, &open, &closeT,
			&t.RealizedPnL, &t.Reason, &t.ATRAtEntry); err != nil {
			return nil, err
		}
		if t.OpenTime, err = time.Parse(time.RFC3339, open); err != nil {
			return nil, fmt.Errorf("parse open_time: %w", err)
		}
		if t.CloseTime, err = time.Parse(time.RFC3339, closeT); err != nil {
			return nil, fmt.Errorf("parse close_time: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
