package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"FXSignal/internal/model"
)

// SQLiteRecorder persists the signal history to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	max    int
	logger *logrus.Entry
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
// At most max records are retained.
func NewSQLiteRecorder(dbPath string, max int, logger *logrus.Logger) (*SQLiteRecorder, error) {
	if max <= 0 {
		max = DefaultMaxRecords
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the service writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, max: max, logger: logger.WithField("component", "sqlite")}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Infof("sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signal_history (
			id                    INTEGER PRIMARY KEY AUTOINCREMENT,
			record_id             TEXT NOT NULL,
			timestamp             INTEGER NOT NULL,
			instrument            TEXT NOT NULL,
			price                 REAL,
			direction             TEXT,
			strength              TEXT,
			score                 INTEGER,
			rsi                   REAL,
			macd                  REAL,
			macd_signal           REAL,
			macd_histogram        REAL,
			bb_upper              REAL,
			bb_middle             REAL,
			bb_lower              REAL,
			bb_position           REAL,
			support               REAL,
			resistance            REAL,
			pct_above_support     REAL,
			pct_below_resistance  REAL,
			generated_at          INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_ts ON signal_history(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_instrument ON signal_history(instrument, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSignal(ctx context.Context, rec *model.SignalRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sig := rec.Signal
	ind := sig.Indicators
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO signal_history
		(record_id, timestamp, instrument, price, direction, strength, score,
		 rsi, macd, macd_signal, macd_histogram,
		 bb_upper, bb_middle, bb_lower, bb_position,
		 support, resistance, pct_above_support, pct_below_resistance,
		 generated_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.Timestamp.UnixMilli(), rec.Instrument, rec.Price,
		string(sig.Direction), string(sig.Strength), sig.Score,
		ind.RSI, ind.MACD.MACD, ind.MACD.Signal, ind.MACD.Histogram,
		ind.Bollinger.Upper, ind.Bollinger.Middle, ind.Bollinger.Lower, ind.Bollinger.Position,
		ind.SupportResistance.Support, ind.SupportResistance.Resistance,
		ind.SupportResistance.PctAboveSupport, ind.SupportResistance.PctBelowResistance,
		sig.GeneratedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("insert signal: %w", err)
	}

	// Evict everything older than the newest max rows.
	if _, err := tx.ExecContext(ctx, `DELETE FROM signal_history WHERE id <=
		(SELECT id FROM signal_history ORDER BY id DESC LIMIT 1 OFFSET ?)`, r.max); err != nil {
		return fmt.Errorf("trim history: %w", err)
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Recent(ctx context.Context, instrument string, since time.Time) ([]model.SignalRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT
		record_id, timestamp, instrument, price, direction, strength, score,
		rsi, macd, macd_signal, macd_histogram,
		bb_upper, bb_middle, bb_lower, bb_position,
		support, resistance, pct_above_support, pct_below_resistance,
		generated_at
		FROM signal_history
		WHERE timestamp > ? AND (? = '' OR instrument = ?)
		ORDER BY id ASC`, since.UnixMilli(), instrument, instrument)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []model.SignalRecord
	for rows.Next() {
		var (
			rec          model.SignalRecord
			ts, genAt    int64
			dir, strngth string
		)
		ind := &rec.Signal.Indicators
		if err := rows.Scan(
			&rec.ID, &ts, &rec.Instrument, &rec.Price, &dir, &strngth, &rec.Signal.Score,
			&ind.RSI, &ind.MACD.MACD, &ind.MACD.Signal, &ind.MACD.Histogram,
			&ind.Bollinger.Upper, &ind.Bollinger.Middle, &ind.Bollinger.Lower, &ind.Bollinger.Position,
			&ind.SupportResistance.Support, &ind.SupportResistance.Resistance,
			&ind.SupportResistance.PctAboveSupport, &ind.SupportResistance.PctBelowResistance,
			&genAt,
		); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ts)
		rec.Signal.GeneratedAt = time.UnixMilli(genAt)
		rec.Signal.Direction = model.Direction(dir)
		rec.Signal.Strength = model.Strength(strngth)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Count returns the number of retained rows.
func (r *SQLiteRecorder) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM signal_history`).Scan(&n)
	return n, err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder")
	return r.db.Close()
}
