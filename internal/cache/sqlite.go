package cache

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"MarketLens/internal/model"
)

// SQLiteCache keeps provider responses in a local SQLite database.
type SQLiteCache struct {
	db  *sql.DB
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
}

// NewSQLiteCache opens (or creates) the SQLite database and runs migrations.
func NewSQLiteCache(dbPath string, ttl time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboard reads proceed while a refresh writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &SQLiteCache{db: db, ttl: ttl, now: time.Now}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite cache opened: %s (ttl %s)", dbPath, ttl)
	return c, nil
}

func (c *SQLiteCache) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS history_fetches (
			symbol     TEXT    NOT NULL,
			period     TEXT    NOT NULL,
			fetched_at INTEGER NOT NULL,
			bar_count  INTEGER NOT NULL,
			PRIMARY KEY (symbol, period)
		)`,

		`CREATE TABLE IF NOT EXISTS history_bars (
			symbol TEXT    NOT NULL,
			period TEXT    NOT NULL,
			seq    INTEGER NOT NULL,
			ts     INTEGER NOT NULL,
			open   REAL,
			high   REAL,
			low    REAL,
			close  REAL,
			volume INTEGER,
			PRIMARY KEY (symbol, period, seq)
		)`,
	}

	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (c *SQLiteCache) Get(ctx context.Context, symbol string, period model.Period) ([]model.OHLCV, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var fetchedAt int64
	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT fetched_at, bar_count FROM history_fetches WHERE symbol = ? AND period = ?`,
		symbol, string(period),
	).Scan(&fetchedAt, &count)
	if err == sql.ErrNoRows {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("query fetch: %w", err)
	}
	if c.now().Sub(time.UnixMilli(fetchedAt)) > c.ttl {
		return nil, ErrMiss
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT ts, open, high, low, close, volume FROM history_bars
		 WHERE symbol = ? AND period = ? ORDER BY seq`,
		symbol, string(period),
	)
	if err != nil {
		return nil, fmt.Errorf("query bars: %w", err)
	}
	defer rows.Close()

	bars := make([]model.OHLCV, 0, count)
	for rows.Next() {
		var ts int64
		var b model.OHLCV
		if err := rows.Scan(&ts, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		b.Time = time.UnixMilli(ts).UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(bars) != count {
		return nil, ErrMiss
	}
	return bars, nil
}

func (c *SQLiteCache) Put(ctx context.Context, symbol string, period model.Period, bars []model.OHLCV) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM history_bars WHERE symbol = ? AND period = ?`, symbol, string(period)); err != nil {
		return fmt.Errorf("clear bars: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO history_bars
		(symbol, period, seq, ts, open, high, low, close, volume)
		VALUES (?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, b := range bars {
		if _, err := stmt.ExecContext(ctx,
			symbol, string(period), i, b.Time.UnixMilli(),
			b.Open, b.High, b.Low, b.Close, b.Volume,
		); err != nil {
			return fmt.Errorf("insert bar %d: %w", i, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO history_fetches (symbol, period, fetched_at, bar_count)
		VALUES (?,?,?,?)
		ON CONFLICT(symbol, period) DO UPDATE SET fetched_at = excluded.fetched_at, bar_count = excluded.bar_count`,
		symbol, string(period), c.now().UnixMilli(), len(bars),
	); err != nil {
		return fmt.Errorf("upsert fetch: %w", err)
	}
	return tx.Commit()
}

func (c *SQLiteCache) Close() error {
	log.Println("[INFO] closing sqlite cache")
	return c.db.Close()
}
