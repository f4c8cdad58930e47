package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"time"
)

// HTTPRoundTripper 把请求重写到测试服务器，保留原始路径
// 爬虫测试中登记的 URL 指向真实域名，实际由 httptest 服务器应答
type HTTPRoundTripper struct {
	base *url.URL
	next http.RoundTripper
}

// NewHTTPRoundTripper 创建请求重定向器
func NewHTTPRoundTripper(baseURL string) *HTTPRoundTripper {
	u, _ := url.Parse(baseURL)
	return &HTTPRoundTripper{
		base: u,
		next: http.DefaultTransport,
	}
}

// RoundTrip 实现 http.RoundTripper 接口
func (t *HTTPRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	cloned := req.Clone(req.Context())
	u := *req.URL
	u.Scheme = t.base.Scheme
	u.Host = t.base.Host
	cloned.URL = &u
	cloned.Host = t.base.Host

	resp, err := t.next.RoundTrip(cloned)
	if resp != nil {
		// 调用方看到的仍是原始请求
		resp.Request = req
	}
	return resp, err
}

// NewTestClient 创建把所有请求发往 ts 的 HTTP 客户端
func NewTestClient(ts *httptest.Server) *http.Client {
	return &http.Client{
		Timeout:   5 * time.Second,
		Transport: NewHTTPRoundTripper(ts.URL),
	}
}
