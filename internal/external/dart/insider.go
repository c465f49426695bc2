package dart

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// ExecutiveHolding is one row from the executive/major-shareholder
// ownership report endpoint (elestock).
type ExecutiveHolding struct {
	ReceiptNo   string `json:"rcept_no"`
	ReceiptDate string `json:"rcept_dt"` // YYYY-MM-DD
	CorpCode    string `json:"corp_code"`
	CorpName    string `json:"corp_name"`
	Reporter    string `json:"repror"`                // 보고자
	Position    string `json:"isu_exctv_ofcps"`       // 직위
	ChangeCount string `json:"sp_stock_lmp_irds_cnt"` // 특정증권 증감 수량
}

type executiveStockResponse struct {
	Status  string             `json:"status"`
	Message string             `json:"message"`
	Items   []ExecutiveHolding `json:"list"`
}

// InsiderActivity summarizes recent executive open-market trades.
type InsiderActivity struct {
	BuyCount  int
	SellCount int
	CEOBought bool
}

// ceoTitles marks positions counted as top management.
var ceoTitles = []string{"대표", "사장", "회장", "CEO"}

// FetchInsiderActivity counts executive buys and sells reported since the
// cutoff date. No filed report ("013") is a quiet company, not an error.
// ⭐ SSOT: 임원 소유보고 조회는 이 함수에서만
func (c *Client) FetchInsiderActivity(ctx context.Context, corpCode string, since time.Time) (InsiderActivity, error) {
	params := url.Values{"corp_code": []string{corpCode}}

	var resp executiveStockResponse
	if err := c.getJSONWithRetry(ctx, "elestock.json", params, &resp); err != nil {
		return InsiderActivity{}, err
	}
	if resp.Status == "013" {
		return InsiderActivity{}, nil
	}
	if err := statusErr("elestock", resp.Status, resp.Message); err != nil {
		return InsiderActivity{}, err
	}

	return classifyHoldings(resp.Items, since), nil
}

// classifyHoldings tallies buys, sells, and CEO participation from
// ownership reports filed on or after the cutoff.
func classifyHoldings(items []ExecutiveHolding, since time.Time) InsiderActivity {
	var activity InsiderActivity

	for _, item := range items {
		reported, err := time.Parse("2006-01-02", item.ReceiptDate)
		if err != nil || reported.Before(since) {
			continue
		}

		change := ParseCount(item.ChangeCount)
		switch {
		case change > 0:
			activity.BuyCount++
			if isTopManagement(item.Position) {
				activity.CEOBought = true
			}
		case change < 0:
			activity.SellCount++
		}
	}

	return activity
}

func isTopManagement(position string) bool {
	for _, title := range ceoTitles {
		if strings.Contains(position, title) {
			return true
		}
	}
	return false
}
