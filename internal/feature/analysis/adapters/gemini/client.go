// Package gemini はGoogle Gemini APIを使用した銘柄分析器を提供します。
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"stock_dashboard/internal/feature/analysis/domain/entity"
	"stock_dashboard/internal/feature/analysis/usecase"
	"stock_dashboard/internal/feature/chart/domain/series"
	instrumententity "stock_dashboard/internal/feature/instrument/domain/entity"
	priceentity "stock_dashboard/internal/feature/prices/domain/entity"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
	// PromptBars はプロンプトに載せる直近の日足本数です。
	PromptBars = 20
)

// GeminiAnalyzer はGoogle Gemini APIを使用して銘柄レポートを生成します。
type GeminiAnalyzer struct {
	client *genai.Client
	model  string
}

// GeminiAnalyzerがAnalyzerを実装していることをコンパイル時に検証します。
var _ usecase.Analyzer = (*GeminiAnalyzer)(nil)

// NewGeminiAnalyzer はGeminiAnalyzerの新しいインスタンスを生成します。
// apiKeyが空の場合はADCを使用し、環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION が必要です。
func NewGeminiAnalyzer(ctx context.Context, apiKey, model string) (*GeminiAnalyzer, error) {
	var cfg *genai.ClientConfig
	if apiKey != "" {
		cfg = &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	if model == "" {
		model = DefaultModel
	}
	return &GeminiAnalyzer{client: client, model: model}, nil
}

// Analyze は直近の日足と移動平均からプロンプトを組み立て、JSON形式のレポートを生成させます。
func (g *GeminiAnalyzer) Analyze(ctx context.Context, inst instrumententity.Instrument, bars []priceentity.PriceBar) (entity.Result, error) {
	prompt, err := BuildPrompt(inst, bars)
	if err != nil {
		return entity.Result{}, err
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   responseSchema,
	})
	if err != nil {
		return entity.Result{}, fmt.Errorf("gemini API request failed: %w", err)
	}
	return ParseResponse(resp.Text())
}

var responseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"recommendation":     {Type: genai.TypeString, Enum: []string{"BUY", "SELL", "HOLD"}},
		"confidence_score":   {Type: genai.TypeInteger},
		"technical_analysis": {Type: genai.TypeString},
		"supply_analysis":    {Type: genai.TypeString},
		"risk_factors":       {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"recommendation", "confidence_score", "technical_analysis", "supply_analysis", "risk_factors"},
}

type report struct {
	Recommendation    string   `json:"recommendation"`
	ConfidenceScore   int      `json:"confidence_score"`
	TechnicalAnalysis string   `json:"technical_analysis"`
	SupplyAnalysis    string   `json:"supply_analysis"`
	RiskFactors       []string `json:"risk_factors"`
}

// ParseResponse はモデルが返したJSONをレポートに変換します。
func ParseResponse(text string) (entity.Result, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(text, "```")), "```")

	var r report
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return entity.Result{}, fmt.Errorf("failed to decode gemini response: %w", err)
	}
	return entity.Result{
		Recommendation:    entity.Recommendation(r.Recommendation),
		ConfidenceScore:   r.ConfidenceScore,
		TechnicalAnalysis: r.TechnicalAnalysis,
		SupplyAnalysis:    r.SupplyAnalysis,
		RiskFactors:       r.RiskFactors,
	}, nil
}

// BuildPrompt は直近PromptBars本の日足とMA5/20/60を表にしたプロンプトを返します。
func BuildPrompt(inst instrumententity.Instrument, bars []priceentity.PriceBar) (string, error) {
	augmented, err := series.Normalize(bars, series.DefaultWindows)
	if err != nil {
		return "", err
	}
	if len(augmented) > PromptBars {
		augmented = augmented[len(augmented)-PromptBars:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "あなたは韓国株式市場のアナリストです。%s（%s, %s）の直近の日足を分析してください。\n",
		inst.Name, inst.Code, inst.Market)
	b.WriteString("recommendation は BUY/SELL/HOLD のいずれか、confidence_score は0から100の整数で答えてください。\n\n")
	b.WriteString("date,open,high,low,close,volume,change_rate,ma5,ma20,ma60\n")
	for _, a := range augmented {
		fmt.Fprintf(&b, "%s,%.0f,%.0f,%.0f,%.0f,%d,%.2f,%s,%s,%s\n",
			a.Date.Format(time.DateOnly), a.Open, a.High, a.Low, a.Close, a.Volume, a.ChangeRate,
			maCell(a, 5), maCell(a, 20), maCell(a, 60))
	}
	return b.String(), nil
}

func maCell(a series.AugmentedBar, window int) string {
	v, ok := a.MA(window)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.1f", v)
}
