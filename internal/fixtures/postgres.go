package fixtures

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// PostgresLoader reads the fixture tables created by migrations/0001_fixtures.up.sql.
type PostgresLoader struct {
	db  *sqlx.DB
	log *logrus.Logger
}

func NewPostgresLoader(db *sqlx.DB, log *logrus.Logger) *PostgresLoader {
	return &PostgresLoader{db: db, log: log}
}

// OpenPostgres connects and pings with a short timeout.
func OpenPostgres(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	return db, nil
}

func (l *PostgresLoader) Load(ctx context.Context) (*Set, error) {
	set := &Set{}

	if err := l.db.SelectContext(ctx, &set.Users, `SELECT username, password FROM mock_users ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	if err := l.db.SelectContext(ctx, &set.Positions, `
		SELECT ticker, asset_type, quantity, average_price, cost_basis, current_price,
		       market_value, unrealized_gain_loss, allocation_percentage
		FROM mock_positions ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load positions: %w", err)
	}
	if err := l.db.SelectContext(ctx, &set.Trades, `
		SELECT ticker, asset_type, action, order_instruction, quantity, price, broker, date
		FROM mock_trades ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load trades: %w", err)
	}
	if err := l.db.SelectContext(ctx, &set.Lots, `
		SELECT ticker, asset_type, broker, date, original_quantity, remaining_quantity,
		       cost_basis, realized_pnl, unrealized_pnl, total_pnl
		FROM mock_lots ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load lots: %w", err)
	}
	if err := l.db.SelectContext(ctx, &set.Performance, `
		SELECT date, total_value, cost_basis, gain_loss FROM mock_performance ORDER BY id`); err != nil {
		return nil, fmt.Errorf("load performance: %w", err)
	}

	var doc []byte
	err := l.db.GetContext(ctx, &doc, `SELECT document FROM mock_asset_metadata ORDER BY id DESC LIMIT 1`)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		l.log.Warn("mock_asset_metadata is empty, serving {}")
	case err != nil:
		return nil, fmt.Errorf("load metadata: %w", err)
	default:
		set.Metadata = doc
	}

	if err := set.Validate(); err != nil {
		return nil, err
	}
	l.log.Infof("loaded fixtures from postgres: %d positions, %d trades, %d lots, %d history points",
		len(set.Positions), len(set.Trades), len(set.Lots), len(set.Performance))
	return set, nil
}
