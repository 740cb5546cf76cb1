package gemini

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_dashboard/internal/feature/analysis/domain/entity"
	instrumententity "stock_dashboard/internal/feature/instrument/domain/entity"
	priceentity "stock_dashboard/internal/feature/prices/domain/entity"
)

func TestBuildPrompt(t *testing.T) {
	inst := instrumententity.Instrument{Code: "005930", Name: "Samsung Electronics", Market: instrumententity.MarketKOSPI}

	// 新しい順に30本
	var bars []priceentity.PriceBar
	for i := 30; i >= 1; i-- {
		bars = append(bars, priceentity.PriceBar{
			Date:  time.Date(2024, 1, i, 0, 0, 0, 0, time.UTC),
			Open:  float64(100 + i), High: float64(110 + i), Low: float64(90 + i), Close: float64(100 + i),
			Volume: 1000,
		})
	}

	prompt, err := BuildPrompt(inst, bars)
	require.NoError(t, err)

	assert.Contains(t, prompt, "Samsung Electronics（005930, KOSPI）")
	lines := strings.Split(strings.TrimSpace(prompt), "\n")
	rows := lines[len(lines)-PromptBars:]
	assert.True(t, strings.HasPrefix(rows[0], "2024-01-11,"), "oldest kept row first: %s", rows[0])
	// 2024-01-30: MA5 = (126+127+128+129+130)/5 = 128, MA20 = 120.5, MA60 absent
	assert.Equal(t, "2024-01-30,130,140,120,130,1000,0.00,128.0,120.5,-", rows[len(rows)-1])
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    entity.Result
		wantErr bool
	}{
		{
			name: "plain json",
			text: `{"recommendation":"BUY","confidence_score":72,"technical_analysis":"t","supply_analysis":"s","risk_factors":["a"]}`,
			want: entity.Result{Recommendation: entity.RecommendationBuy, ConfidenceScore: 72, TechnicalAnalysis: "t", SupplyAnalysis: "s", RiskFactors: []string{"a"}},
		},
		{
			name: "fenced json",
			text: "```json\n{\"recommendation\":\"HOLD\",\"confidence_score\":50}\n```",
			want: entity.Result{Recommendation: entity.RecommendationHold, ConfidenceScore: 50},
		},
		{
			name:    "not json",
			text:    "I cannot help with that.",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.text)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
