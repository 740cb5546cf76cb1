package kis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stock_dashboard/internal/feature/prices/domain/entity"
	"stock_dashboard/internal/feature/prices/usecase"
	"stock_dashboard/internal/platform/externalapi/kis/dto"
)

const (
	dailyPricePath = "/uapi/domestic-stock/v1/quotations/inquire-daily-itemchartprice"
	// trIDDailyPrice は国内株式期間別相場照会の取引IDです。
	trIDDailyPrice = "FHKST03010100"
	dateLayout     = "20060102"
	// maxPages は1回の同期で期間をさかのぼる最大リクエスト数です（1レスポンス最大100営業日）。
	maxPages = 20
)

// KISMarket はKIS Open APIから日足を取得するMarketRepository実装です。
type KISMarket struct {
	cfg    Config
	client *http.Client
	tokens *TokenManager
}

// KISMarketがMarketRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MarketRepository = (*KISMarket)(nil)

// NewKISMarket は指定された設定・HTTPクライアント・トークン管理でKISMarketを生成します。
func NewKISMarket(cfg Config, client *http.Client, tokens *TokenManager) *KISMarket {
	return &KISMarket{cfg: cfg, client: client, tokens: tokens}
}

// GetDailyPrices は[start, end]の日足を取得します。KISは1回に最大100件しか返さないため、
// 最も古い日付の前日を次の終了日にしてstartに達するまで繰り返します。
func (k *KISMarket) GetDailyPrices(ctx context.Context, code string, start, end time.Time) ([]entity.PriceBar, error) {
	var bars []entity.PriceBar
	cursor := end
	for page := 0; page < maxPages && !cursor.Before(start); page++ {
		chunk, err := k.fetch(ctx, code, start, cursor)
		if err != nil {
			return nil, err
		}
		if len(chunk) == 0 {
			break
		}
		bars = append(bars, chunk...)

		oldest := chunk[0].Date
		for _, b := range chunk[1:] {
			if b.Date.Before(oldest) {
				oldest = b.Date
			}
		}
		if !oldest.After(start) {
			break
		}
		cursor = oldest.AddDate(0, 0, -1)
	}
	return bars, nil
}

func (k *KISMarket) fetch(ctx context.Context, code string, start, end time.Time) ([]entity.PriceBar, error) {
	token, err := k.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("FID_COND_MRKT_DIV_CODE", "J") // 株式
	q.Set("FID_INPUT_ISCD", code)
	q.Set("FID_INPUT_DATE_1", start.Format(dateLayout))
	q.Set("FID_INPUT_DATE_2", end.Format(dateLayout))
	q.Set("FID_PERIOD_DIV_CODE", "D") // 日足
	q.Set("FID_ORG_ADJ_PRC", "0")     // 原株価

	u := fmt.Sprintf("%s%s?%s", k.cfg.BaseURL, dailyPricePath, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("authorization", "Bearer "+token)
	req.Header.Set("appkey", k.cfg.AppKey)
	req.Header.Set("appsecret", k.cfg.AppSecret)
	req.Header.Set("tr_id", trIDDailyPrice)

	res, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kis daily price request failed: %w", err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode == http.StatusUnauthorized {
		k.tokens.Invalidate(ctx)
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("kis http %d", res.StatusCode)
	}

	var body dto.DailyPriceResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.RtCd != "0" {
		return nil, fmt.Errorf("kis: %s %s", body.MsgCd, body.Msg1)
	}

	bars := make([]entity.PriceBar, 0, len(body.Output1))
	for _, v := range body.Output1 {
		// 休場日などで空行が返ることがある
		if strings.TrimSpace(v.BusinessDate) == "" {
			continue
		}
		b, err := toPriceBar(code, v)
		if err != nil {
			return nil, err
		}
		if b.Date.Before(start) || b.Date.After(end) {
			continue
		}
		bars = append(bars, b)
	}
	return bars, nil
}

func toPriceBar(code string, v dto.DailyPrice) (entity.PriceBar, error) {
	// 日付をパース（UTC 0時）
	d, err := time.Parse(dateLayout, v.BusinessDate)
	if err != nil {
		return entity.PriceBar{}, fmt.Errorf("parse date %q: %w", v.BusinessDate, err)
	}
	o, err := strconv.ParseFloat(v.Open, 64)
	if err != nil {
		return entity.PriceBar{}, fmt.Errorf("parse open %q: %w", v.Open, err)
	}
	h, err := strconv.ParseFloat(v.High, 64)
	if err != nil {
		return entity.PriceBar{}, fmt.Errorf("parse high %q: %w", v.High, err)
	}
	l, err := strconv.ParseFloat(v.Low, 64)
	if err != nil {
		return entity.PriceBar{}, fmt.Errorf("parse low %q: %w", v.Low, err)
	}
	c, err := strconv.ParseFloat(v.Close, 64)
	if err != nil {
		return entity.PriceBar{}, fmt.Errorf("parse close %q: %w", v.Close, err)
	}
	vol, err := strconv.ParseInt(v.Volume, 10, 64)
	if err != nil {
		return entity.PriceBar{}, fmt.Errorf("parse volume %q: %w", v.Volume, err)
	}
	// 騰落率は欠けていても0として扱う
	var rate float64
	if s := strings.TrimSpace(v.ChangeRate); s != "" {
		if rate, err = strconv.ParseFloat(s, 64); err != nil {
			return entity.PriceBar{}, fmt.Errorf("parse change rate %q: %w", v.ChangeRate, err)
		}
	}

	return entity.PriceBar{
		Code:       code,
		Date:       d,
		Open:       o,
		High:       h,
		Low:        l,
		Close:      c,
		Volume:     vol,
		ChangeRate: rate,
	}, nil
}
