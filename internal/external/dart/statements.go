package dart

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// Term selects which fiscal term column of an account row to read.
type Term string

const (
	TermCurrent        Term = "thstrm"    // 당기
	TermPrevious       Term = "frmtrm"    // 전기
	TermBeforePrevious Term = "bfefrmtrm" // 전전기
)

// AccountRow is a single line item from the single-company full statement
// endpoint (fnlttSinglAcntAll). Amounts stay as raw strings: DART formats
// them with comma separators and uses "-" for blanks.
type AccountRow struct {
	ReceiptNo      string `json:"rcept_no"`
	ReportCode     string `json:"reprt_code"`
	BusinessYear   string `json:"bsns_year"`
	CorpCode       string `json:"corp_code"`
	StatementDiv   string `json:"sj_div"` // BS, IS, CIS, CF, SCE
	StatementName  string `json:"sj_nm"`
	AccountID      string `json:"account_id"`
	AccountName    string `json:"account_nm"`
	AccountDetail  string `json:"account_detail"`
	CurrentName    string `json:"thstrm_nm"`
	CurrentAmount  string `json:"thstrm_amount"`
	PreviousName   string `json:"frmtrm_nm"`
	PreviousAmount string `json:"frmtrm_amount"`
	BeforePrevName string `json:"bfefrmtrm_nm"`
	BeforePrevAmt  string `json:"bfefrmtrm_amount"`
	Currency       string `json:"currency"`
}

// AmountFor returns the raw amount string for the given term.
func (r AccountRow) AmountFor(term Term) string {
	switch term {
	case TermPrevious:
		return r.PreviousAmount
	case TermBeforePrevious:
		return r.BeforePrevAmt
	default:
		return r.CurrentAmount
	}
}

type statementResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	Rows    []AccountRow `json:"list"`
}

// FetchStatements fetches all statement line items for one company and
// fiscal year from fnlttSinglAcntAll.
// ⭐ SSOT: 재무제표 원장 조회는 이 함수에서만
func (c *Client) FetchStatements(ctx context.Context, corpCode string, year int, reportCode contracts.ReportCode, fsDiv contracts.FsDiv) ([]AccountRow, error) {
	params := url.Values{
		"corp_code":  []string{corpCode},
		"bsns_year":  []string{strconv.Itoa(year)},
		"reprt_code": []string{string(reportCode)},
		"fs_div":     []string{string(fsDiv)},
	}

	var resp statementResponse
	if err := c.getJSONWithRetry(ctx, "fnlttSinglAcntAll.json", params, &resp); err != nil {
		return nil, err
	}
	if err := statusErr("fnlttSinglAcntAll", resp.Status, resp.Message); err != nil {
		return nil, err
	}

	return resp.Rows, nil
}

// amountReplacer strips the separators DART mixes into amount strings.
var amountReplacer = strings.NewReplacer(",", "", " ", "")

// ParseAmount converts a DART amount string to a float.
// Blank markers ("", "-", "－") become 0.
func ParseAmount(value string) float64 {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || trimmed == "-" || trimmed == "－" {
		return 0
	}

	parsed, err := strconv.ParseFloat(amountReplacer.Replace(trimmed), 64)
	if err != nil {
		return 0
	}
	return parsed
}

// ParseCount converts a DART share-count string to an integer.
func ParseCount(value string) int64 {
	return int64(ParseAmount(value))
}
