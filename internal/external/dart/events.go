package dart

import (
	"context"
	"encoding/json"
	"net/url"
	"time"
)

// EventKind selects a DART major-event disclosure endpoint.
type EventKind string

const (
	EventConvertibleBond EventKind = "cvbdIsDecsn"  // 전환사채권 발행결정
	EventPaidIncrease    EventKind = "piicDecsn"    // 유상증자 결정
	EventTreasuryStock   EventKind = "tsstkAqDecsn" // 자기주식 취득 결정
	EventLawsuit         EventKind = "lwstLg"       // 소송 등의 제기
)

// IsValid reports whether the kind maps to a known endpoint.
func (k EventKind) IsValid() bool {
	switch k {
	case EventConvertibleBond, EventPaidIncrease, EventTreasuryStock, EventLawsuit:
		return true
	}
	return false
}

type eventListResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Items   []json.RawMessage `json:"list"`
}

// FetchEvents returns raw disclosure items from a major-event endpoint.
// Each endpoint has its own column set, so items pass through unparsed
// for the API layer to relay. An empty window ("013") returns nil items.
// ⭐ SSOT: 주요사항보고 조회는 이 함수에서만
func (c *Client) FetchEvents(ctx context.Context, kind EventKind, corpCode string, from, to time.Time) ([]json.RawMessage, error) {
	params := url.Values{
		"corp_code": []string{corpCode},
		"bgn_de":    []string{from.Format("20060102")},
		"end_de":    []string{to.Format("20060102")},
	}

	var resp eventListResponse
	if err := c.getJSONWithRetry(ctx, string(kind)+".json", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status == "013" {
		return nil, nil
	}
	if err := statusErr(string(kind), resp.Status, resp.Message); err != nil {
		return nil, err
	}

	return resp.Items, nil
}

// convertibleDecision carries the one field the dilution indicator needs
// from a CB issuance decision.
type convertibleDecision struct {
	ConvertibleShares string `json:"ovis_ster"` // 전환 시 발행 가능 주식수
}

type convertibleResponse struct {
	Status  string                `json:"status"`
	Message string                `json:"message"`
	Items   []convertibleDecision `json:"list"`
}

// FetchConvertibleShares sums shares issuable from convertible bond
// decisions disclosed in the window. No disclosure means no overhang.
func (c *Client) FetchConvertibleShares(ctx context.Context, corpCode string, from, to time.Time) (int64, error) {
	params := url.Values{
		"corp_code": []string{corpCode},
		"bgn_de":    []string{from.Format("20060102")},
		"end_de":    []string{to.Format("20060102")},
	}

	var resp convertibleResponse
	if err := c.getJSONWithRetry(ctx, "cvbdIsDecsn.json", params, &resp); err != nil {
		return 0, err
	}
	if resp.Status == "013" {
		return 0, nil
	}
	if err := statusErr("cvbdIsDecsn", resp.Status, resp.Message); err != nil {
		return 0, err
	}

	return sumConvertibleShares(resp.Items), nil
}

func sumConvertibleShares(items []convertibleDecision) int64 {
	var total int64
	for _, item := range items {
		total += ParseCount(item.ConvertibleShares)
	}
	return total
}
