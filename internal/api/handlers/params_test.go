package handlers

import (
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/buffett/backend/internal/contracts"
)

func TestQueryYear(t *testing.T) {
	current := time.Now().Year()

	tests := []struct {
		name    string
		query   string
		want    int
		wantErr bool
	}{
		{name: "정상 연도", query: "year=2023", want: 2023},
		{name: "현재 연도 허용", query: fmt.Sprintf("year=%d", current), want: current},
		{name: "누락", query: "", wantErr: true},
		{name: "숫자 아님", query: "year=abc", wantErr: true},
		{name: "하한 미만", query: "year=2014", wantErr: true},
		{name: "미래 연도", query: fmt.Sprintf("year=%d", current+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/?"+tt.query, nil)
			got, err := queryYear(r, "year")
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, contracts.ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestQueryFsDiv(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	fsDiv, err := queryFsDiv(r)
	require.NoError(t, err)
	assert.Equal(t, contracts.FsDivConsolidated, fsDiv, "기본값은 연결재무제표")

	r = httptest.NewRequest("GET", "/?fs_div=OFS", nil)
	fsDiv, err = queryFsDiv(r)
	require.NoError(t, err)
	assert.Equal(t, contracts.FsDivSeparate, fsDiv)

	r = httptest.NewRequest("GET", "/?fs_div=IFRS", nil)
	_, err = queryFsDiv(r)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrInvalidRequest)
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	v, err := queryInt(r, "limit", 100, maxLimit)
	require.NoError(t, err)
	assert.Equal(t, 100, v, "누락 시 기본값")

	r = httptest.NewRequest("GET", "/?limit=500", nil)
	v, err = queryInt(r, "limit", 100, maxLimit)
	require.NoError(t, err)
	assert.Equal(t, 500, v)

	for _, bad := range []string{"limit=0", "limit=-3", "limit=4001", "limit=x"} {
		r = httptest.NewRequest("GET", "/?"+bad, nil)
		_, err = queryInt(r, "limit", 100, maxLimit)
		require.Error(t, err, bad)
		assert.ErrorIs(t, err, contracts.ErrInvalidRequest)
	}
}

func TestQueryBool(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.True(t, queryBool(r, "use_cache", true))

	r = httptest.NewRequest("GET", "/?use_cache=false", nil)
	assert.False(t, queryBool(r, "use_cache", true))

	// 파싱 불가 값은 기본값 유지
	r = httptest.NewRequest("GET", "/?use_cache=maybe", nil)
	assert.True(t, queryBool(r, "use_cache", true))
}

func TestBoundRange(t *testing.T) {
	v, err := boundRange("batch_size", 0, 100, maxBatchSize)
	require.NoError(t, err)
	assert.Equal(t, 100, v, "0은 기본값으로 치환")

	v, err = boundRange("batch_size", 250, 100, maxBatchSize)
	require.NoError(t, err)
	assert.Equal(t, 250, v)

	_, err = boundRange("batch_size", 501, 100, maxBatchSize)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrInvalidRequest)

	_, err = boundRange("batch_size", -1, 100, maxBatchSize)
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrInvalidRequest)
}

func TestBoundFsDiv(t *testing.T) {
	fsDiv, err := boundFsDiv("")
	require.NoError(t, err)
	assert.Equal(t, contracts.FsDivConsolidated, fsDiv)

	_, err = boundFsDiv("XBRL")
	require.Error(t, err)
	assert.ErrorIs(t, err, contracts.ErrInvalidRequest)
}
