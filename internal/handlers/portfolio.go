package handlers

import (
	"net/http"
	"strings"
	"time"

	"mockfolio/internal/apierr"
	"mockfolio/internal/models"
	"mockfolio/internal/query"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PositionsResponse struct {
	Positions               query.Page[models.Position] `json:"positions"`
	TotalMarketValue        decimal.NullDecimal         `json:"total_market_value"`
	TotalCostBasis          decimal.Decimal             `json:"total_cost_basis"`
	TotalUnrealizedGainLoss decimal.NullDecimal         `json:"total_unrealized_gain_loss"`
}

type TradesResponse struct {
	Ticker string                   `json:"ticker"`
	Trades query.Page[models.Trade] `json:"trades"`
}

// Holding sums remaining quantity and cost basis. The mock has no live
// prices, so MarketValue is always null.
type Holding struct {
	Quantity    decimal.Decimal     `json:"quantity"`
	CostBasis   decimal.Decimal     `json:"cost_basis"`
	MarketValue decimal.NullDecimal `json:"market_value"`
}

type BrokerHolding struct {
	Broker string `json:"broker"`
	Holding
}

type LotsResponse struct {
	Ticker          string                 `json:"ticker"`
	Lots            query.Page[models.Lot] `json:"lots"`
	Position        Holding                `json:"position"`
	BrokerBreakdown []BrokerHolding        `json:"broker_breakdown"`
}

type BrokersResponse struct {
	Ticker  string   `json:"ticker"`
	Brokers []string `json:"brokers"`
}

type PerformanceResponse struct {
	HistoryPoints []models.PerformancePoint `json:"history_points"`
}

func (h *Handler) GetPositions(c *gin.Context) {
	p, err := parseList(c, models.PositionFields, positionDefaults)
	if err != nil {
		h.fail(c, err)
		return
	}

	sorted := query.Sort(h.set.Positions, models.PositionFields[p.sortBy], p.dir)

	var mv, cb, gl decimal.Decimal
	for _, pos := range sorted {
		mv = mv.Add(valueOrZero(pos.MarketValue))
		cb = cb.Add(valueOrZero(pos.CostBasis))
		gl = gl.Add(valueOrZero(pos.UnrealizedGainLoss))
	}

	res := PositionsResponse{
		Positions:      query.Paginate(sorted, p.page, p.size),
		TotalCostBasis: cb,
	}
	if mv.IsPositive() {
		res.TotalMarketValue = decimal.NewNullDecimal(mv)
	}
	if !gl.IsZero() {
		res.TotalUnrealizedGainLoss = decimal.NewNullDecimal(gl)
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) GetTrades(c *gin.Context) {
	ticker := c.Param("ticker")
	p, err := parseList(c, models.TradeFields, tradeDefaults)
	if err != nil {
		h.fail(c, err)
		return
	}

	rows := query.Filter(h.set.Trades, func(t models.Trade) bool { return strings.EqualFold(t.Ticker, ticker) })
	if len(rows) == 0 {
		h.fail(c, apierr.AssetNotFound)
		return
	}
	canonical := rows[0].Ticker

	rows = query.DateRange(rows, func(t models.Trade) string { return t.Date }, c.Query("start_date"), c.Query("end_date"))
	rows = query.Sort(rows, models.TradeFields[p.sortBy], p.dir)

	c.JSON(http.StatusOK, TradesResponse{
		Ticker: canonical,
		Trades: query.Paginate(rows, p.page, p.size),
	})
}

func (h *Handler) GetLots(c *gin.Context) {
	ticker := c.Param("ticker")
	p, err := parseList(c, models.LotFields, lotDefaults)
	if err != nil {
		h.fail(c, err)
		return
	}

	rows := h.lotsFor(ticker)
	if len(rows) == 0 {
		h.fail(c, apierr.AssetNotFound)
		return
	}
	canonical := rows[0].Ticker

	rows = query.DateRange(rows, func(l models.Lot) string { return l.Date }, c.Query("start_date"), c.Query("end_date"))
	if brokers := csvParam(c, "brokers"); len(brokers) > 0 {
		allowed := make(map[string]struct{}, len(brokers))
		for _, b := range brokers {
			allowed[b] = struct{}{}
		}
		rows = query.Filter(rows, func(l models.Lot) bool {
			_, ok := allowed[l.Broker]
			return ok
		})
	}
	position, breakdown := aggregateLots(rows)
	rows = query.Sort(rows, models.LotFields[p.sortBy], p.dir)

	c.JSON(http.StatusOK, LotsResponse{
		Ticker:          canonical,
		Lots:            query.Paginate(rows, p.page, p.size),
		Position:        position,
		BrokerBreakdown: breakdown,
	})
}

func (h *Handler) GetBrokers(c *gin.Context) {
	ticker := c.Param("ticker")
	rows := h.lotsFor(ticker)
	if len(rows) == 0 {
		h.fail(c, apierr.AssetNotFound)
		return
	}

	seen := map[string]bool{}
	brokers := []string{}
	for _, l := range rows {
		if !seen[l.Broker] {
			seen[l.Broker] = true
			brokers = append(brokers, l.Broker)
		}
	}
	c.JSON(http.StatusOK, BrokersResponse{Ticker: rows[0].Ticker, Brokers: brokers})
}

var granularities = map[string]func(time.Time) bool{
	"daily":   func(time.Time) bool { return true },
	"weekly":  func(t time.Time) bool { return t.Weekday() == time.Monday },
	"monthly": func(t time.Time) bool { return t.Day() == 1 },
}

func (h *Handler) GetPerformance(c *gin.Context) {
	keep, ok := granularities[c.DefaultQuery("granularity", "daily")]
	if !ok {
		h.fail(c, apierr.Validation(http.StatusUnprocessableEntity,
			apierr.Query("granularity", "Input should be 'daily', 'weekly' or 'monthly'", "literal_error")))
		return
	}

	rows := query.DateRange(h.set.Performance, func(p models.PerformancePoint) string { return p.Date },
		c.Query("start_date"), c.Query("end_date"))
	rows = query.Filter(rows, func(p models.PerformancePoint) bool {
		t, ok := query.ParseDate(p.Date)
		return ok && keep(t)
	})
	rows = query.Sort(rows, func(p models.PerformancePoint) query.Value { return query.Date(p.Date) }, query.Asc)

	c.JSON(http.StatusOK, PerformanceResponse{HistoryPoints: rows})
}

func (h *Handler) GetMetadata(c *gin.Context) {
	c.Data(http.StatusOK, "application/json; charset=utf-8", h.set.Metadata)
}

func (h *Handler) lotsFor(ticker string) []models.Lot {
	return query.Filter(h.set.Lots, func(l models.Lot) bool { return strings.EqualFold(l.Ticker, ticker) })
}

// aggregateLots sums the whole filtered set, overall and per broker in
// fixture order of first appearance.
func aggregateLots(rows []models.Lot) (Holding, []BrokerHolding) {
	var total Holding
	breakdown := []BrokerHolding{}
	index := map[string]int{}
	for _, l := range rows {
		qty := valueOrZero(l.RemainingQuantity)
		cost := valueOrZero(l.CostBasis)

		total.Quantity = total.Quantity.Add(qty)
		total.CostBasis = total.CostBasis.Add(cost)

		i, ok := index[l.Broker]
		if !ok {
			i = len(breakdown)
			index[l.Broker] = i
			breakdown = append(breakdown, BrokerHolding{Broker: l.Broker})
		}
		breakdown[i].Quantity = breakdown[i].Quantity.Add(qty)
		breakdown[i].CostBasis = breakdown[i].CostBasis.Add(cost)
	}
	return total, breakdown
}

func valueOrZero(d decimal.NullDecimal) decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}
