package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// IndexKOSPI is the chart symbol for the KOSPI composite index.
const IndexKOSPI = "KOSPI"

// priceWindowDays is how far ClosePriceAt widens around the target date
// to find the nearest trading day.
const priceWindowDays = 5

// FetchPrices fetches daily price data for a stock from Naver Finance
// ⭐ SSOT: Naver Finance 가격 API 호출은 이 함수에서만
func (c *Client) FetchPrices(ctx context.Context, symbol string, from, to time.Time) ([]PriceData, error) {
	fromStr := from.Format("20060102")
	toStr := to.Format("20060102")

	// Naver Finance Chart API
	fullURL := fmt.Sprintf(
		"%s/siseJson.naver?symbol=%s&requestType=1&startTime=%s&endTime=%s&timeframe=day",
		c.chartURL, symbol, fromStr, toStr,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	// 차트 API는 브라우저 헤더가 없으면 빈 응답을 돌려준다
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	req.Header.Set("Referer", "https://finance.naver.com/")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body failed: %w", err)
	}

	prices, err := c.parsePriceResponse(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse response failed: %w", err)
	}
	for i := range prices {
		prices[i].Symbol = symbol
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"count":  len(prices),
	}).Debug("Fetched prices")
	return prices, nil
}

// ClosePriceAt returns the closing price on the given date. When the
// date falls on a holiday the close of the first trading day within
// ±5 days is used instead.
func (c *Client) ClosePriceAt(ctx context.Context, symbol string, date time.Time) (float64, error) {
	from := date.AddDate(0, 0, -priceWindowDays)
	to := date.AddDate(0, 0, priceWindowDays)

	prices, err := c.FetchPrices(ctx, symbol, from, to)
	if err != nil {
		return 0, err
	}

	close, ok := closeOn(prices, date)
	if !ok {
		return 0, fmt.Errorf("%w: %s at %s", contracts.ErrPriceUnavailable, symbol, date.Format("2006-01-02"))
	}
	return float64(close), nil
}

// closeOn picks the close for the exact date if traded, otherwise the
// first row in the window.
func closeOn(prices []PriceData, date time.Time) (int64, bool) {
	if len(prices) == 0 {
		return 0, false
	}
	y, m, d := date.Date()
	for _, p := range prices {
		py, pm, pd := p.TradeDate.Date()
		if py == y && pm == m && pd == d {
			return p.ClosePrice, true
		}
	}
	return prices[0].ClosePrice, true
}

// ReturnRate describes the realized return between the first and last
// trading day inside a requested window.
type ReturnRate struct {
	Symbol     string
	StartDate  time.Time
	EndDate    time.Time
	StartPrice float64
	EndPrice   float64
	Rate       float64 // percent, rounded to 2dp
}

// ReturnOver computes the buy-and-hold return for the window. The
// actual start/end dates are the first and last trading days found, so
// callers get the dates really used rather than the ones requested.
func (c *Client) ReturnOver(ctx context.Context, symbol string, from, to time.Time) (*ReturnRate, error) {
	prices, err := c.FetchPrices(ctx, symbol, from, to)
	if err != nil {
		return nil, err
	}

	rate, ok := returnFromPrices(symbol, prices)
	if !ok {
		return nil, fmt.Errorf("%w: %s (%s ~ %s)",
			contracts.ErrPriceUnavailable, symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"rate":   rate.Rate,
	}).Debug("Computed return rate")
	return rate, nil
}

// returnFromPrices needs at least two trading days to make a return.
func returnFromPrices(symbol string, prices []PriceData) (*ReturnRate, bool) {
	if len(prices) < 2 {
		return nil, false
	}
	first := prices[0]
	last := prices[len(prices)-1]
	if first.ClosePrice <= 0 {
		return nil, false
	}

	start := float64(first.ClosePrice)
	end := float64(last.ClosePrice)
	return &ReturnRate{
		Symbol:     symbol,
		StartDate:  first.TradeDate,
		EndDate:    last.TradeDate,
		StartPrice: start,
		EndPrice:   end,
		Rate:       round2((end - start) / start * 100),
	}, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// parsePriceResponse parses Naver Finance JSON response
func (c *Client) parsePriceResponse(body string) ([]PriceData, error) {
	body = strings.TrimSpace(body)
	body = strings.ReplaceAll(body, "'", "\"")

	// Try JSON parsing first
	var rawData [][]interface{}
	if err := json.Unmarshal([]byte(body), &rawData); err == nil {
		return c.parsePriceJSON(rawData)
	}

	// Fallback to regex parsing
	return c.parsePriceRegex(body)
}

// parsePriceJSON parses JSON array format
func (c *Client) parsePriceJSON(rawData [][]interface{}) ([]PriceData, error) {
	var prices []PriceData
	for i, row := range rawData {
		if i == 0 || len(row) < 6 {
			continue // Skip header
		}

		dateStr, ok := row[0].(string)
		if !ok {
			continue
		}
		dateStr = strings.Trim(dateStr, "\"")
		if len(dateStr) == 8 {
			dateStr = dateStr[:4] + "-" + dateStr[4:6] + "-" + dateStr[6:8]
		}

		tradeDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}

		openPrice := toInt64(row[1])
		highPrice := toInt64(row[2])
		lowPrice := toInt64(row[3])
		closePrice := toInt64(row[4])
		volume := toInt64(row[5])

		prices = append(prices, PriceData{
			TradeDate:    tradeDate,
			OpenPrice:    openPrice,
			HighPrice:    highPrice,
			LowPrice:     lowPrice,
			ClosePrice:   closePrice,
			Volume:       volume,
			TradingValue: closePrice * volume,
		})
	}
	return prices, nil
}

// parsePriceRegex parses using regex (fallback)
func (c *Client) parsePriceRegex(body string) ([]PriceData, error) {
	re := regexp.MustCompile(`\["(\d{8})",\s*(\d+),\s*(\d+),\s*(\d+),\s*(\d+),\s*(\d+)\]`)
	matches := re.FindAllStringSubmatch(body, -1)

	var prices []PriceData
	for _, match := range matches {
		if len(match) < 7 {
			continue
		}

		dateStr := match[1][:4] + "-" + match[1][4:6] + "-" + match[1][6:8]
		tradeDate, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			continue
		}

		openPrice, _ := strconv.ParseInt(match[2], 10, 64)
		highPrice, _ := strconv.ParseInt(match[3], 10, 64)
		lowPrice, _ := strconv.ParseInt(match[4], 10, 64)
		closePrice, _ := strconv.ParseInt(match[5], 10, 64)
		volume, _ := strconv.ParseInt(match[6], 10, 64)

		prices = append(prices, PriceData{
			TradeDate:    tradeDate,
			OpenPrice:    openPrice,
			HighPrice:    highPrice,
			LowPrice:     lowPrice,
			ClosePrice:   closePrice,
			Volume:       volume,
			TradingValue: closePrice * volume,
		})
	}
	return prices, nil
}

// toInt64 converts various types to int64
func toInt64(v interface{}) int64 {
	switch val := v.(type) {
	case float64:
		return int64(val)
	case int64:
		return val
	case int:
		return int64(val)
	case string:
		n, _ := strconv.ParseInt(val, 10, 64)
		return n
	default:
		return 0
	}
}
