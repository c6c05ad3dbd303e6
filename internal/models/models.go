package models

import (
	"encoding/json"

	"mockfolio/internal/query"

	"github.com/shopspring/decimal"
)

func init() {
	// the UI reads amounts as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

type User struct {
	Username string `db:"username" json:"username"`
	Password string `db:"password" json:"password"`
}

type Position struct {
	Ticker               string              `db:"ticker" json:"ticker"`
	AssetType            string              `db:"asset_type" json:"asset_type"`
	Quantity             decimal.NullDecimal `db:"quantity" json:"quantity"`
	AveragePrice         decimal.NullDecimal `db:"average_price" json:"average_price"`
	CostBasis            decimal.NullDecimal `db:"cost_basis" json:"cost_basis"`
	CurrentPrice         decimal.NullDecimal `db:"current_price" json:"current_price"`
	MarketValue          decimal.NullDecimal `db:"market_value" json:"market_value"`
	UnrealizedGainLoss   decimal.NullDecimal `db:"unrealized_gain_loss" json:"unrealized_gain_loss"`
	AllocationPercentage decimal.NullDecimal `db:"allocation_percentage" json:"allocation_percentage"`
}

type Trade struct {
	Ticker           string              `db:"ticker" json:"ticker"`
	AssetType        string              `db:"asset_type" json:"asset_type"`
	Action           string              `db:"action" json:"action"`
	OrderInstruction string              `db:"order_instruction" json:"order_instruction"`
	Quantity         decimal.NullDecimal `db:"quantity" json:"quantity"`
	Price            decimal.NullDecimal `db:"price" json:"price"`
	Broker           string              `db:"broker" json:"broker"`
	Date             string              `db:"date" json:"date"`
}

// Lot is one tax lot of a ticker held at a single broker.
type Lot struct {
	Ticker            string              `db:"ticker" json:"ticker"`
	AssetType         string              `db:"asset_type" json:"asset_type"`
	Broker            string              `db:"broker" json:"broker"`
	Date              string              `db:"date" json:"date"`
	OriginalQuantity  decimal.NullDecimal `db:"original_quantity" json:"original_quantity"`
	RemainingQuantity decimal.NullDecimal `db:"remaining_quantity" json:"remaining_quantity"`
	CostBasis         decimal.NullDecimal `db:"cost_basis" json:"cost_basis"`
	RealizedPnL       decimal.NullDecimal `db:"realized_pnl" json:"realized_pnl"`
	UnrealizedPnL     decimal.NullDecimal `db:"unrealized_pnl" json:"unrealized_pnl"`
	TotalPnL          decimal.NullDecimal `db:"total_pnl" json:"total_pnl"`
}

type PerformancePoint struct {
	Date       string              `db:"date" json:"date"`
	TotalValue decimal.NullDecimal `db:"total_value" json:"total_value"`
	CostBasis  decimal.NullDecimal `db:"cost_basis" json:"cost_basis"`
	GainLoss   decimal.NullDecimal `db:"gain_loss" json:"gain_loss"`
}

// AssetMetadata is served byte for byte as loaded.
type AssetMetadata = json.RawMessage

var PositionFields = query.Fields[Position]{
	"ticker":                func(p Position) query.Value { return query.String(p.Ticker) },
	"asset_type":            func(p Position) query.Value { return query.String(p.AssetType) },
	"quantity":              func(p Position) query.Value { return query.Number(p.Quantity) },
	"average_price":         func(p Position) query.Value { return query.Number(p.AveragePrice) },
	"cost_basis":            func(p Position) query.Value { return query.Number(p.CostBasis) },
	"current_price":         func(p Position) query.Value { return query.Number(p.CurrentPrice) },
	"market_value":          func(p Position) query.Value { return query.Number(p.MarketValue) },
	"unrealized_gain_loss":  func(p Position) query.Value { return query.Number(p.UnrealizedGainLoss) },
	"allocation_percentage": func(p Position) query.Value { return query.Number(p.AllocationPercentage) },
}

var TradeFields = query.Fields[Trade]{
	"ticker":            func(t Trade) query.Value { return query.String(t.Ticker) },
	"asset_type":        func(t Trade) query.Value { return query.String(t.AssetType) },
	"action":            func(t Trade) query.Value { return query.String(t.Action) },
	"order_instruction": func(t Trade) query.Value { return query.String(t.OrderInstruction) },
	"quantity":          func(t Trade) query.Value { return query.Number(t.Quantity) },
	"price":             func(t Trade) query.Value { return query.Number(t.Price) },
	"broker":            func(t Trade) query.Value { return query.String(t.Broker) },
	"date":              func(t Trade) query.Value { return query.Date(t.Date) },
}

var LotFields = query.Fields[Lot]{
	"ticker":             func(l Lot) query.Value { return query.String(l.Ticker) },
	"asset_type":         func(l Lot) query.Value { return query.String(l.AssetType) },
	"broker":             func(l Lot) query.Value { return query.String(l.Broker) },
	"date":               func(l Lot) query.Value { return query.Date(l.Date) },
	"original_quantity":  func(l Lot) query.Value { return query.Number(l.OriginalQuantity) },
	"remaining_quantity": func(l Lot) query.Value { return query.Number(l.RemainingQuantity) },
	"cost_basis":         func(l Lot) query.Value { return query.Number(l.CostBasis) },
	"realized_pnl":       func(l Lot) query.Value { return query.Number(l.RealizedPnL) },
	"unrealized_pnl":     func(l Lot) query.Value { return query.Number(l.UnrealizedPnL) },
	"total_pnl":          func(l Lot) query.Value { return query.Number(l.TotalPnL) },
}
