package kis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"stock_dashboard/internal/platform/externalapi/kis/dto"
)

const (
	// TokenCacheKey はアクセストークンを保存するRedisキーです。
	TokenCacheKey = "kis:access_token"
	// tokenExpiryBuffer は実際の有効期限より早くキャッシュを失効させる余裕です。
	tokenExpiryBuffer = 5 * time.Minute
	// defaultTokenLifetime はexpires_inが返らなかった場合の有効期間です。
	defaultTokenLifetime = 24 * time.Hour
)

// TokenManager はKISのアクセストークンを発行・キャッシュします。
// Redisが無い場合（rdb == nil）はプロセス内にのみ保持します。
// KISはトークン発行を1分1回に制限しているため、複数プロセス間ではRedisで共有します。
type TokenManager struct {
	cfg    Config
	client *http.Client
	rdb    *redisv9.Client
	now    func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// NewTokenManager は新しいTokenManagerを生成します。
func NewTokenManager(cfg Config, client *http.Client, rdb *redisv9.Client) *TokenManager {
	return &TokenManager{cfg: cfg, client: client, rdb: rdb, now: time.Now}
}

// Token は有効なアクセストークンを返します。メモリ、Redis、新規発行の順に探します。
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && m.now().Before(m.expiresAt) {
		return m.token, nil
	}

	if m.rdb != nil {
		token, ttl, err := m.fromRedis(ctx)
		switch {
		case err != nil:
			slog.Warn("failed to read KIS token from redis", "error", err)
		case token != "":
			m.remember(token, ttl)
			return token, nil
		}
	}

	token, lifetime, err := m.issue(ctx)
	if err != nil {
		return "", err
	}
	ttl := lifetime - tokenExpiryBuffer
	if ttl <= 0 {
		ttl = lifetime
	}
	m.remember(token, ttl)

	if m.rdb != nil {
		if err := m.rdb.Set(ctx, TokenCacheKey, token, ttl).Err(); err != nil {
			slog.Warn("failed to cache KIS token", "error", err)
		}
	}
	slog.Info("issued new KIS access token", "expires_in", lifetime)
	return token, nil
}

// Invalidate はキャッシュ済みのトークンを破棄します。次のTokenで再発行されます。
func (m *TokenManager) Invalidate(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	m.expiresAt = time.Time{}
	if m.rdb != nil {
		if err := m.rdb.Del(ctx, TokenCacheKey).Err(); err != nil {
			slog.Warn("failed to delete KIS token from redis", "error", err)
		}
	}
}

func (m *TokenManager) remember(token string, ttl time.Duration) {
	m.token = token
	m.expiresAt = m.now().Add(ttl)
}

func (m *TokenManager) fromRedis(ctx context.Context) (string, time.Duration, error) {
	token, err := m.rdb.Get(ctx, TokenCacheKey).Result()
	if errors.Is(err, redisv9.Nil) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, err
	}
	ttl, err := m.rdb.TTL(ctx, TokenCacheKey).Result()
	if err != nil {
		return "", 0, err
	}
	if ttl <= 0 {
		return "", 0, nil
	}
	return token, ttl, nil
}

func (m *TokenManager) issue(ctx context.Context) (string, time.Duration, error) {
	body, err := json.Marshal(dto.TokenRequest{
		GrantType: "client_credentials",
		AppKey:    m.cfg.AppKey,
		AppSecret: m.cfg.AppSecret,
	})
	if err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+"/oauth2/token", bytes.NewReader(body))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := m.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("kis token request failed: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return "", 0, fmt.Errorf("kis token http %d", res.StatusCode)
	}

	var tr dto.TokenResponse
	if err := json.NewDecoder(res.Body).Decode(&tr); err != nil {
		return "", 0, fmt.Errorf("decode kis token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", 0, errors.New("kis token response has no access_token")
	}

	lifetime := defaultTokenLifetime
	if tr.ExpiresIn > 0 {
		lifetime = time.Duration(tr.ExpiresIn) * time.Second
	}
	return tr.AccessToken, lifetime, nil
}
