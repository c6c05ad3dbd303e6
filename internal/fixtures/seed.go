package fixtures

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var seedTables = []string{"mock_users", "mock_positions", "mock_trades", "mock_lots", "mock_performance", "mock_asset_metadata"}

const (
	insertUser     = `INSERT INTO mock_users (username, password) VALUES (:username, :password)`
	insertPosition = `INSERT INTO mock_positions
		(ticker, asset_type, quantity, average_price, cost_basis, current_price, market_value, unrealized_gain_loss, allocation_percentage)
		VALUES (:ticker, :asset_type, :quantity, :average_price, :cost_basis, :current_price, :market_value, :unrealized_gain_loss, :allocation_percentage)`
	insertTrade = `INSERT INTO mock_trades
		(ticker, asset_type, action, order_instruction, quantity, price, broker, date)
		VALUES (:ticker, :asset_type, :action, :order_instruction, :quantity, :price, :broker, :date)`
	insertLot = `INSERT INTO mock_lots
		(ticker, asset_type, broker, date, original_quantity, remaining_quantity, cost_basis, realized_pnl, unrealized_pnl, total_pnl)
		VALUES (:ticker, :asset_type, :broker, :date, :original_quantity, :remaining_quantity, :cost_basis, :realized_pnl, :unrealized_pnl, :total_pnl)`
	insertPerformance = `INSERT INTO mock_performance (date, total_value, cost_basis, gain_loss)
		VALUES (:date, :total_value, :cost_basis, :gain_loss)`
)

// Seed replaces the contents of the fixture tables with set, in one
// transaction. Row order is kept so PostgresLoader reads it back unchanged.
func Seed(ctx context.Context, db *sqlx.DB, set *Set) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, table := range seedTables {
		if _, err = tx.ExecContext(ctx, "TRUNCATE "+table+" RESTART IDENTITY"); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}

	for _, u := range set.Users {
		if _, err = tx.NamedExecContext(ctx, insertUser, u); err != nil {
			return fmt.Errorf("insert user %s: %w", u.Username, err)
		}
	}
	for _, p := range set.Positions {
		if _, err = tx.NamedExecContext(ctx, insertPosition, p); err != nil {
			return fmt.Errorf("insert position %s: %w", p.Ticker, err)
		}
	}
	for _, t := range set.Trades {
		if _, err = tx.NamedExecContext(ctx, insertTrade, t); err != nil {
			return fmt.Errorf("insert trade %s %s: %w", t.Ticker, t.Date, err)
		}
	}
	for _, l := range set.Lots {
		if _, err = tx.NamedExecContext(ctx, insertLot, l); err != nil {
			return fmt.Errorf("insert lot %s %s: %w", l.Ticker, l.Date, err)
		}
	}
	for _, p := range set.Performance {
		if _, err = tx.NamedExecContext(ctx, insertPerformance, p); err != nil {
			return fmt.Errorf("insert performance %s: %w", p.Date, err)
		}
	}
	if len(set.Metadata) > 0 {
		if _, err = tx.ExecContext(ctx, `INSERT INTO mock_asset_metadata (document) VALUES ($1)`, string(set.Metadata)); err != nil {
			return fmt.Errorf("insert metadata: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
