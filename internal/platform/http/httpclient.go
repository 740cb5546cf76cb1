package http

import (
	"log/slog"
	"net"
	"net/http"
	"time"
)

// NewHTTPClient は外部API（KIS、AIワーカー）呼び出し用に設定されたHTTPクライアントを作成します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（デフォルトより短い）
//   - MaxIdleConnsPerHost: 同一ホストへの連続リクエスト（ページング、バッチ）で接続を再利用
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
//
// 各リクエストはホスト・ステータス・所要時間をDEBUGでログ出力します。
// http.DefaultClientにはタイムアウトがないため、常にこのクライアントを使用すること。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: &loggingTransport{next: t}}
}

// loggingTransport は外部APIへのリクエスト結果を記録します。クエリ文字列やヘッダー（認証情報）は出力しません。
type loggingTransport struct {
	next http.RoundTripper
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	elapsed := time.Since(start)
	if err != nil {
		slog.WarnContext(req.Context(), "upstream request failed",
			"method", req.Method, "host", req.URL.Host, "path", req.URL.Path, "elapsed", elapsed, "error", err)
		return nil, err
	}
	slog.DebugContext(req.Context(), "upstream request",
		"method", req.Method, "host", req.URL.Host, "path", req.URL.Path, "status", resp.StatusCode, "elapsed", elapsed)
	return resp, nil
}
