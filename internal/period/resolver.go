// Package period 读取当前结算期号, 失败时退回第 1 期
package period

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/blues/memberadmin/internal/logger"
)

// DefaultPeriod 无法获取期号时使用
const DefaultPeriod = 1

// LatestPeriodPath 控制台的期号查询接口
const LatestPeriodPath = "/api/settlements?action=latest-period"

// UpstreamFetchError 期号接口调用失败
type UpstreamFetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *UpstreamFetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *UpstreamFetchError) Unwrap() error {
	return e.Err
}

// Resolution 解析结果, Warning 非空表示使用了默认期号
type Resolution struct {
	PeriodNumber int   `json:"periodNumber"`
	Warning      error `json:"-"`
}

// Fallback 是否使用了默认期号
func (r Resolution) Fallback() bool {
	return r.Warning != nil
}

// Resolver 调用期号接口, 不重试
type Resolver struct {
	url    string
	token  string
	client *http.Client
}

// NewResolver baseURL 为控制台地址, token 为空时不带认证头
func NewResolver(baseURL, token string, timeout time.Duration) *Resolver {
	return &Resolver{
		url:    strings.TrimRight(baseURL, "/") + LatestPeriodPath,
		token:  token,
		client: &http.Client{Timeout: timeout},
	}
}

// Resolve 获取期号, 任何失败都返回第 1 期和警告
func (r *Resolver) Resolve(ctx context.Context) Resolution {
	n, err := r.fetch(ctx)
	if err != nil {
		logger.Warn("Could not resolve latest period, falling back to %d: %v", DefaultPeriod, err)
		return Resolution{PeriodNumber: DefaultPeriod, Warning: err}
	}
	return Resolution{PeriodNumber: n}
}

// latestPeriodBody 兼容裸对象和统一响应包装两种格式
type latestPeriodBody struct {
	PeriodNumber *int  `json:"periodNumber"`
	Success      *bool `json:"success"`
	Data         *struct {
		PeriodNumber *int `json:"periodNumber"`
	} `json:"data"`
}

func (r *Resolver) fetch(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return 0, &UpstreamFetchError{URL: r.url, Err: err}
	}
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, &UpstreamFetchError{URL: r.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return 0, &UpstreamFetchError{URL: r.url, Status: resp.StatusCode, Err: errors.New("non-success status")}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return 0, &UpstreamFetchError{URL: r.url, Status: resp.StatusCode, Err: err}
	}

	var body latestPeriodBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return 0, &UpstreamFetchError{URL: r.url, Status: resp.StatusCode, Err: fmt.Errorf("malformed body: %w", err)}
	}
	if body.Success != nil && !*body.Success {
		return 0, &UpstreamFetchError{URL: r.url, Status: resp.StatusCode, Err: errors.New("upstream reported failure")}
	}

	var n *int
	switch {
	case body.PeriodNumber != nil:
		n = body.PeriodNumber
	case body.Data != nil && body.Data.PeriodNumber != nil:
		n = body.Data.PeriodNumber
	default:
		return 0, &UpstreamFetchError{URL: r.url, Status: resp.StatusCode, Err: errors.New("periodNumber missing")}
	}
	if *n < 1 {
		return 0, &UpstreamFetchError{URL: r.url, Status: resp.StatusCode, Err: fmt.Errorf("invalid period %d", *n)}
	}
	return *n, nil
}
