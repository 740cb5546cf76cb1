package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRecommendation(t *testing.T) {
	tests := []struct {
		in   string
		want Recommendation
	}{
		{"BUY", RecommendationBuy},
		{"sell", RecommendationSell},
		{" Hold ", RecommendationHold},
		{"STRONG_BUY", RecommendationHold},
		{"", RecommendationHold},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRecommendation(tt.in))
		})
	}
}
