package naver

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// FetchProfile scrapes the company summary page for sector, market, and
// listed share count.
// ⭐ SSOT: Naver Finance 종목 메인 페이지 스크래핑은 이 함수에서만
func (c *Client) FetchProfile(ctx context.Context, stockCode string) (*CompanyProfile, error) {
	params := url.Values{}
	params.Set("code", stockCode)

	html, err := c.fetchHTML(ctx, "/item/main.naver", params)
	if err != nil {
		return nil, fmt.Errorf("fetch company page failed: %w", err)
	}

	profile, err := parseProfileHTML(html)
	if err != nil {
		return nil, fmt.Errorf("parse company page for %s: %w", stockCode, err)
	}
	profile.StockCode = stockCode

	c.logger.WithFields(map[string]interface{}{
		"stock_code": stockCode,
		"sector":     profile.Sector,
		"market":     profile.Market,
	}).Debug("Fetched company profile")
	return profile, nil
}

// parseProfileHTML extracts profile fields from the 종목 메인 page.
func parseProfileHTML(html string) (*CompanyProfile, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse HTML failed: %w", err)
	}

	profile := &CompanyProfile{}

	// 업종명은 동일업종 비교 섹션 제목의 링크 텍스트
	profile.Sector = strings.TrimSpace(doc.Find("div.section.trade_compare h4 em a").First().Text())

	// 시장 구분은 종목명 옆 아이콘의 alt 텍스트
	alt, _ := doc.Find("div.wrap_company div.description img").First().Attr("alt")
	switch {
	case strings.Contains(alt, "코스피"):
		profile.Market = "KOSPI"
	case strings.Contains(alt, "코스닥"):
		profile.Market = "KOSDAQ"
	}

	// 상장주식수는 시가총액 테이블의 행에서 찾는다
	doc.Find("#tab_con1 table tr").Each(func(_ int, row *goquery.Selection) {
		if profile.ListedShares > 0 {
			return
		}
		if !strings.Contains(row.Find("th").Text(), "상장주식수") {
			return
		}
		profile.ListedShares = parseShareCount(row.Find("td").First().Text())
	})

	if profile.Sector == "" && profile.Market == "" && profile.ListedShares == 0 {
		return nil, fmt.Errorf("no profile fields found")
	}
	return profile, nil
}

// parseShareCount parses a comma formatted share count cell.
func parseShareCount(text string) int64 {
	text = strings.TrimSpace(text)
	text = strings.ReplaceAll(text, ",", "")
	text = strings.ReplaceAll(text, " ", "")
	if text == "" {
		return 0
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
