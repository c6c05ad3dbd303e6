package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"mockfolio/internal/auth"
	"mockfolio/internal/fixtures"
	"mockfolio/internal/metrics"
	"mockfolio/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const bearer = "Bearer test-token"

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

func embeddedSet(t *testing.T) *fixtures.Set {
	t.Helper()
	set, err := fixtures.EmbeddedLoader{}.Load(context.Background())
	require.NoError(t, err)
	return set
}

func newTestRouter(t *testing.T, set *fixtures.Set, opts Options) *gin.Engine {
	t.Helper()
	if set == nil {
		set = embeddedSet(t)
	}
	h := NewHandler(set, testLogger(), opts)
	return NewRouter(h, opts.Metrics, "")
}

func do(r http.Handler, method, target string, body io.Reader, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r http.Handler, target string) *httptest.ResponseRecorder {
	return do(r, http.MethodGet, target, nil, http.Header{"Authorization": {bearer}})
}

func strs(res gjson.Result) []string {
	out := []string{}
	for _, v := range res.Array() {
		out = append(out, v.String())
	}
	return out
}

func num(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestAuthGate(t *testing.T) {
	r := newTestRouter(t, nil, Options{})
	protected := []string{
		"/portfolio/all",
		"/portfolio/all/performance",
		"/portfolio/trades/AAPL",
		"/portfolio/lots/AAPL",
		"/asset/brokers/AAPL",
		"/asset/metadata/all",
	}
	badHeaders := []http.Header{
		nil,
		{"Authorization": {""}},
		{"Authorization": {"Bearer"}},
		{"Authorization": {"Bearer "}},
		{"Authorization": {"Basic ZGVtbzpkZW1vMTIz"}},
		{"Authorization": {"token abc"}},
	}
	for _, path := range protected {
		for _, hdr := range badHeaders {
			w := do(r, http.MethodGet, path, nil, hdr)
			assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %v", path, hdr)
			assert.JSONEq(t, `{"detail":"Not authenticated"}`, w.Body.String())
			assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
		}
		w := get(r, path)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestLogin(t *testing.T) {
	m := metrics.New()
	r := newTestRouter(t, nil, Options{Metrics: m})

	form := url.Values{"username": {"demo"}, "password": {"demo123"}}
	w := do(r, http.MethodPost, "/login", strings.NewReader(form.Encode()),
		http.Header{"Content-Type": {"application/x-www-form-urlencoded"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "bearer", gjson.Get(w.Body.String(), "token_type").String())

	claims, err := auth.Decode(gjson.Get(w.Body.String(), "access_token").String())
	require.NoError(t, err)
	assert.Equal(t, "demo", claims.Subject)

	w = do(r, http.MethodPost, "/login", strings.NewReader(`{"username":"analyst","password":"hunter2"}`),
		http.Header{"Content-Type": {"application/json"}})
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodPost, "/login", strings.NewReader(`{"username":"demo","password":"wrong"}`),
		http.Header{"Content-Type": {"application/json"}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"detail":"Invalid username or password"}`, w.Body.String())
}

func TestLoginValidation(t *testing.T) {
	r := newTestRouter(t, nil, Options{})

	w := do(r, http.MethodPost, "/login", strings.NewReader(`{"username":"demo"}`),
		http.Header{"Content-Type": {"application/json"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"detail":[{"loc":["body","password"],"msg":"Field required","type":"missing"}]}`, w.Body.String())

	w = do(r, http.MethodPost, "/login", strings.NewReader(`{"username":`),
		http.Header{"Content-Type": {"application/json"}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "body", gjson.Get(w.Body.String(), "detail.0.loc.0").String())
}

func TestPositionsDefaultSortAndTotals(t *testing.T) {
	r := newTestRouter(t, nil, Options{})

	w := get(r, "/portfolio/all")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Equal(t, []string{"BTC", "MSFT", "VTI", "AAPL", "TSLA", "ACME"}, strs(gjson.Get(body, "positions.items.#.ticker")))
	assert.Equal(t, int64(6), gjson.Get(body, "positions.total").Int())
	assert.Equal(t, int64(1), gjson.Get(body, "positions.page").Int())
	assert.Equal(t, int64(50), gjson.Get(body, "positions.size").Int())
	assert.Equal(t, int64(1), gjson.Get(body, "positions.pages").Int())

	assert.Equal(t, "147981", gjson.Get(body, "total_market_value").Raw)
	assert.Equal(t, "111278", gjson.Get(body, "total_cost_basis").Raw)
	assert.Equal(t, "42703", gjson.Get(body, "total_unrealized_gain_loss").Raw)
	assert.Equal(t, gjson.Null, gjson.Get(body, "positions.items.5.market_value").Type)
}

func TestPositionsSortingAndPaging(t *testing.T) {
	r := newTestRouter(t, nil, Options{})

	w := get(r, "/portfolio/all?sort_by=market_value&sort_order=asc")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"TSLA", "AAPL", "VTI", "MSFT", "BTC", "ACME"},
		strs(gjson.Get(w.Body.String(), "positions.items.#.ticker")), "nulls stay last ascending")

	w = get(r, "/portfolio/all?sort_by=ticker&sort_order=asc")
	assert.Equal(t, []string{"AAPL", "ACME", "BTC", "MSFT", "TSLA", "VTI"},
		strs(gjson.Get(w.Body.String(), "positions.items.#.ticker")))

	full := get(r, "/portfolio/all").Body.String()
	w = get(r, "/portfolio/all?page=2&size=2")
	body := w.Body.String()
	assert.Equal(t, []string{"VTI", "AAPL"}, strs(gjson.Get(body, "positions.items.#.ticker")))
	assert.Equal(t, int64(3), gjson.Get(body, "positions.pages").Int())
	assert.Equal(t, int64(6), gjson.Get(body, "positions.total").Int())
	for _, k := range []string{"total_market_value", "total_cost_basis", "total_unrealized_gain_loss"} {
		assert.Equal(t, gjson.Get(full, k).Raw, gjson.Get(body, k).Raw, k)
	}

	w = get(r, "/portfolio/all?page=9&size=4")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", gjson.Get(w.Body.String(), "positions.items").Raw)
	assert.Equal(t, int64(2), gjson.Get(w.Body.String(), "positions.pages").Int())

	w = get(r, "/portfolio/all?page=9223372036854775807&size=2")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "[]", gjson.Get(w.Body.String(), "positions.items").Raw)
	assert.Equal(t, int64(3), gjson.Get(w.Body.String(), "positions.pages").Int())
}

func TestPositionsTotalsNullRules(t *testing.T) {
	set := &fixtures.Set{
		Positions: []models.Position{
			{Ticker: "AAA", MarketValue: num("-10"), CostBasis: num("0"), UnrealizedGainLoss: num("5")},
			{Ticker: "BBB", MarketValue: num("10"), UnrealizedGainLoss: num("-5")},
			{Ticker: "CCC"},
		},
		Metadata: []byte(`{}`),
	}
	r := newTestRouter(t, set, Options{})

	w := get(r, "/portfolio/all")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, gjson.Null, gjson.Get(body, "total_market_value").Type)
	assert.Equal(t, gjson.Null, gjson.Get(body, "total_unrealized_gain_loss").Type)
	assert.Equal(t, "0", gjson.Get(body, "total_cost_basis").Raw)
}

func TestInvalidSortField(t *testing.T) {
	r := newTestRouter(t, nil, Options{})
	want := `{"detail":[{"loc":["query","sort_by"],"msg":"Invalid sort field","type":"value_error"}]}`

	for _, path := range []string{
		"/portfolio/all?sort_by=broker",
		"/portfolio/trades/AAPL?sort_by=market_value",
		"/portfolio/lots/AAPL?sort_by=price",
		"/portfolio/trades/NOPE?sort_by=bogus",
	} {
		w := get(r, path)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.JSONEq(t, want, w.Body.String(), path)
	}
}

func TestInvalidPaging(t *testing.T) {
	r := newTestRouter(t, nil, Options{})

	cases := map[string]string{
		"/portfolio/all?page=0":              "page",
		"/portfolio/all?size=abc":            "size",
		"/portfolio/all?size=501":            "size",
		"/portfolio/trades/AAPL?page=-1":     "page",
		"/portfolio/lots/AAPL?sort_order=up": "sort_order",
	}
	for path, field := range cases {
		w := get(r, path)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, path)
		assert.Equal(t, []string{"query", field}, strs(gjson.Get(w.Body.String(), "detail.0.loc")), path)
	}
}

func TestTrades(t *testing.T) {
	r := newTestRouter(t, nil, Options{})

	w := get(r, "/portfolio/trades/AAPL")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, "AAPL", gjson.Get(body, "ticker").String())
	assert.Equal(t, []string{"2024-01-08", "2023-11-20", "2023-06-02", "2023-03-14"}, strs(gjson.Get(body, "trades.items.#.date")))
	assert.Equal(t, int64(20), gjson.Get(body, "trades.size").Int())

	w = get(r, "/portfolio/trades/aapl?start_date=2023-06-01&end_date=2023-12-31&sort_by=date&sort_order=asc")
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Equal(t, "AAPL", gjson.Get(body, "ticker").String())
	assert.Equal(t, []string{"2023-06-02", "2023-11-20"}, strs(gjson.Get(body, "trades.items.#.date")))
	assert.Equal(t, int64(2), gjson.Get(body, "trades.total").Int())

	w = get(r, "/portfolio/trades/AAPL?sort_by=broker&sort_order=asc&size=3")
	body = w.Body.String()
	assert.Equal(t, []string{"Fidelity", "Fidelity", "Schwab"}, strs(gjson.Get(body, "trades.items.#.broker")))
	assert.Equal(t, int64(2), gjson.Get(body, "trades.pages").Int())

	w = get(r, "/portfolio/trades/AAPL?start_date=2030-01-01")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "trades.total").Int())
	assert.Equal(t, int64(0), gjson.Get(w.Body.String(), "trades.pages").Int())
}

func TestUnknownTickerNotFound(t *testing.T) {
	r := newTestRouter(t, nil, Options{})
	for _, path := range []string{"/portfolio/trades/NOPE", "/portfolio/lots/NOPE", "/asset/brokers/NOPE"} {
		w := get(r, path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.JSONEq(t, `{"detail":"Asset not found"}`, w.Body.String(), path)
	}
}

func TestLotsAggregation(t *testing.T) {
	r := newTestRouter(t, nil, Options{})

	w := get(r, "/portfolio/lots/AAPL?size=1")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Len(t, gjson.Get(body, "lots.items").Array(), 1)
	assert.Equal(t, int64(3), gjson.Get(body, "lots.total").Int())
	assert.Equal(t, "2024-01-08", gjson.Get(body, "lots.items.0.date").String())

	assert.Equal(t, "150", gjson.Get(body, "position.quantity").Raw)
	assert.Equal(t, "22624", gjson.Get(body, "position.cost_basis").Raw)
	assert.Equal(t, gjson.Null, gjson.Get(body, "position.market_value").Type)

	assert.Equal(t, []string{"Fidelity", "Schwab"}, strs(gjson.Get(body, "broker_breakdown.#.broker")))
	assert.Equal(t, "80", gjson.Get(body, "broker_breakdown.0.quantity").Raw)
	assert.Equal(t, "11368", gjson.Get(body, "broker_breakdown.0.cost_basis").Raw)
	assert.Equal(t, "70", gjson.Get(body, "broker_breakdown.1.quantity").Raw)
	assert.Equal(t, "11256", gjson.Get(body, "broker_breakdown.1.cost_basis").Raw)
	assert.Equal(t, gjson.Null, gjson.Get(body, "broker_breakdown.1.market_value").Type)
}

func TestLotsBrokerFilter(t *testing.T) {
	r := newTestRouter(t, nil, Options{})

	w := get(r, "/portfolio/lots/AAPL?brokers="+url.QueryEscape(" Schwab , "))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()

	assert.Equal(t, []string{"Schwab", "Schwab"}, strs(gjson.Get(body, "lots.items.#.broker")))
	assert.Equal(t, []string{"Schwab"}, strs(gjson.Get(body, "broker_breakdown.#.broker")))
	assert.Equal(t, "70", gjson.Get(body, "position.quantity").Raw)
	assert.Equal(t, "11256", gjson.Get(body, "position.cost_basis").Raw)

	w = get(r, "/portfolio/lots/AAPL?brokers=Vanguard")
	require.Equal(t, http.StatusOK, w.Code)
	body = w.Body.String()
	assert.Equal(t, int64(0), gjson.Get(body, "lots.total").Int())
	assert.Equal(t, "[]", gjson.Get(body, "broker_breakdown").Raw)
	assert.Equal(t, "0", gjson.Get(body, "position.quantity").Raw)
}

func TestBrokers(t *testing.T) {
	r := newTestRouter(t, nil, Options{})

	w := get(r, "/asset/brokers/AAPL")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ticker":"AAPL","brokers":["Fidelity","Schwab"]}`, w.Body.String())

	w = get(r, "/asset/brokers/btc")
	assert.JSONEq(t, `{"ticker":"BTC","brokers":["Coinbase"]}`, w.Body.String())
}

func TestPerformanceGranularity(t *testing.T) {
	r := newTestRouter(t, nil, Options{})

	daily := gjson.Get(get(r, "/portfolio/all/performance").Body.String(), "history_points.#.date").Array()
	require.Len(t, daily, 91)
	dailySet := map[string]bool{}
	for _, d := range daily {
		dailySet[d.String()] = true
	}

	weekly := strs(gjson.Get(get(r, "/portfolio/all/performance?granularity=weekly").Body.String(), "history_points.#.date"))
	assert.Len(t, weekly, 13)
	for _, d := range weekly {
		assert.True(t, dailySet[d])
		tm, _ := time.Parse("2006-01-02", d)
		assert.Equal(t, time.Monday, tm.Weekday(), d)
	}

	monthly := strs(gjson.Get(get(r, "/portfolio/all/performance?granularity=monthly").Body.String(), "history_points.#.date"))
	assert.Equal(t, []string{"2024-01-01", "2024-02-01", "2024-03-01"}, monthly)

	feb := gjson.Get(get(r, "/portfolio/all/performance?start_date=2024-02-01&end_date=2024-02-29").Body.String(), "history_points").Array()
	assert.Len(t, feb, 29)

	w := get(r, "/portfolio/all/performance?granularity=hourly")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t,
		`{"detail":[{"loc":["query","granularity"],"msg":"Input should be 'daily', 'weekly' or 'monthly'","type":"literal_error"}]}`,
		w.Body.String())
}

func TestPerformanceSortedAscending(t *testing.T) {
	set := &fixtures.Set{
		Performance: []models.PerformancePoint{
			{Date: "2024-03-04", TotalValue: num("3")},
			{Date: "2024-01-01", TotalValue: num("1")},
			{Date: "2024-02-05", TotalValue: num("2")},
		},
		Metadata: []byte(`{}`),
	}
	r := newTestRouter(t, set, Options{})

	w := get(r, "/portfolio/all/performance?granularity=weekly")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"2024-01-01", "2024-02-05", "2024-03-04"}, strs(gjson.Get(w.Body.String(), "history_points.#.date")))
	assert.Equal(t, "1", gjson.Get(w.Body.String(), "history_points.0.total_value").Raw)
}

func TestMetadataVerbatim(t *testing.T) {
	set := embeddedSet(t)
	r := newTestRouter(t, set, Options{})

	w := get(r, "/asset/metadata/all")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, string(set.Metadata), w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
}

func TestRouterExtras(t *testing.T) {
	set := embeddedSet(t)
	m := metrics.New()
	h := NewHandler(set, testLogger(), Options{Metrics: m})
	r := NewRouter(h, m, "/api/v1")

	w := do(r, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, "/api/v1/portfolio/all")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = get(r, "/portfolio/all")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, w.Body.String())

	w = do(r, http.MethodOptions, "/api/v1/portfolio/all", nil, http.Header{"Origin": {"http://localhost:5173"}})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "/metrics", nil, nil)
	assert.Contains(t, w.Body.String(), `route="/api/v1/portfolio/all"`)

	w = do(r, http.MethodGet, "/api/v1/portfolio/all", nil, http.Header{"X-Request-ID": {"abc-123"}, "Authorization": {bearer}})
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestPerformanceGranularityUsesOwnOffset(t *testing.T) {
	set := &fixtures.Set{
		Performance: []models.PerformancePoint{
			{Date: "2024-01-01T00:30:00+02:00", TotalValue: num("10")},
			{Date: "2024-01-02T00:30:00+02:00", TotalValue: num("11")},
		},
		Metadata: []byte(`{}`),
	}
	r := newTestRouter(t, set, Options{})

	for _, g := range []string{"weekly", "monthly"} {
		w := get(r, "/portfolio/all/performance?granularity="+g)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"2024-01-01T00:30:00+02:00"},
			strs(gjson.Get(w.Body.String(), "history_points.#.date")), g)
	}
}

func TestPanicBecomesJSONError(t *testing.T) {
	r := newTestRouter(t, nil, Options{})
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	w := do(r, http.MethodGet, "/boom", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail":"Internal Server Error"}`, w.Body.String())
}
