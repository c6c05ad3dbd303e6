package main

import (
	"flag"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mockfolio/internal/logging"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// smoke walks every mock endpoint against a running server.
func main() {
	base := flag.String("base", "http://localhost:8080", "server base URL including any API prefix")
	user := flag.String("user", "demo", "login username")
	pass := flag.String("pass", "demo123", "login password")
	wait := flag.Duration("wait", 2*time.Second, "delay before the first request")
	flag.Parse()

	log := logging.New("info", "text")
	c := &client{base: strings.TrimRight(*base, "/"), http: &http.Client{Timeout: 10 * time.Second}, log: log}

	time.Sleep(*wait)

	c.check(http.MethodGet, "/portfolio/all", http.StatusUnauthorized)

	form := url.Values{"username": {*user}, "password": {*pass}}
	body := c.do(http.MethodPost, "/login", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", http.StatusOK)
	c.token = gjson.Get(body, "access_token").String()
	if c.token == "" {
		log.Fatalf("login returned no token: %s", body)
	}

	body = c.check(http.MethodGet, "/portfolio/all", http.StatusOK)
	ticker := gjson.Get(body, "positions.items.0.ticker").String()
	log.Infof("total market value %s", gjson.Get(body, "total_market_value").Raw)

	c.check(http.MethodGet, "/portfolio/all?sort_by=nope", http.StatusBadRequest)
	c.check(http.MethodGet, "/portfolio/all/performance?granularity=weekly", http.StatusOK)
	c.check(http.MethodGet, "/portfolio/trades/"+ticker, http.StatusOK)
	c.check(http.MethodGet, "/portfolio/lots/"+ticker, http.StatusOK)
	c.check(http.MethodGet, "/asset/brokers/"+ticker, http.StatusOK)
	c.check(http.MethodGet, "/asset/brokers/NO-SUCH-TICKER", http.StatusNotFound)
	c.check(http.MethodGet, "/asset/metadata/all", http.StatusOK)

	log.Info("ALL CHECKS PASSED")
}

type client struct {
	base  string
	token string
	http  *http.Client
	log   *logrus.Logger
}

func (c *client) check(method, path string, want int) string {
	return c.do(method, path, nil, "", want)
}

func (c *client) do(method, path string, body io.Reader, contentType string, want int) string {
	c.log.Infof("%s %s", method, path)
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		c.log.Fatalf("build request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	b, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		c.log.Fatalf("expected status %d, got %d. Body: %s", want, resp.StatusCode, b)
	}
	return string(b)
}
