package dart

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wonny/buffett/backend/internal/contracts"
)

// corpCodeFile mirrors CORPCODE.xml inside the registry archive.
type corpCodeFile struct {
	XMLName xml.Name        `xml:"result"`
	Items   []corpCodeEntry `xml:"list"`
}

type corpCodeEntry struct {
	CorpCode   string `xml:"corp_code"`
	CorpName   string `xml:"corp_name"`
	StockCode  string `xml:"stock_code"`
	ModifyDate string `xml:"modify_date"`
}

// FetchCorpRegistry downloads the full corp-code registry. The endpoint
// serves a ZIP archive holding one CORPCODE.xml; API errors come back as
// a plain XML body instead, so a failed unzip falls through to status
// parsing.
// ⭐ SSOT: 기업 고유번호 전체 목록 조회는 이 함수에서만
func (c *Client) FetchCorpRegistry(ctx context.Context) ([]contracts.Company, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/corpCode.xml?crtfc_key=%s", c.baseURL, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: corpCode: %v", contracts.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read registry body: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, registryBodyError(body)
	}

	var entry *zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToUpper(f.Name), ".XML") {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("registry archive has no XML entry")
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("open registry entry: %w", err)
	}
	defer rc.Close()

	var parsed corpCodeFile
	if err := xml.NewDecoder(rc).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode registry XML: %w", err)
	}

	companies := make([]contracts.Company, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		company := contracts.Company{
			CorpCode:  strings.TrimSpace(item.CorpCode),
			CorpName:  strings.TrimSpace(item.CorpName),
			StockCode: strings.TrimSpace(item.StockCode),
		}
		if modified, err := time.Parse("20060102", item.ModifyDate); err == nil {
			company.UpdatedAt = modified
		}
		companies = append(companies, company)
	}

	c.logger.WithField("count", len(companies)).Info("Fetched corp registry")
	return companies, nil
}

// registryBodyError surfaces the API error hidden in a non-zip body.
func registryBodyError(body []byte) error {
	var apiErr struct {
		XMLName xml.Name `xml:"result"`
		Status  string   `xml:"status"`
		Message string   `xml:"message"`
	}
	if err := xml.Unmarshal(body, &apiErr); err == nil && apiErr.Status != "" {
		return statusErr("corpCode", apiErr.Status, apiErr.Message)
	}
	return fmt.Errorf("registry response is not a zip archive")
}
