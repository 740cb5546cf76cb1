package jwtmw

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewGenerator は各種設定でGeneratorが正しく生成されることを検証します。
func TestNewGenerator(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		secret     string
		expiration time.Duration
	}{
		{"standard config", "my-secret-key", time.Hour},
		{"long expiration", "secret", 24 * time.Hour * 30},
		{"short expiration", "s", time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			gen := NewGenerator(tt.secret, tt.expiration)

			require.NotNil(t, gen)
			assert.Equal(t, tt.secret, string(gen.secret))
			assert.Equal(t, tt.expiration, gen.expiration)
		})
	}
}

// TestGenerator_GenerateToken は生成されたJWTトークンが有効で正しいクレームを含むことを検証します。
func TestGenerator_GenerateToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		subject    string
		role       string
		expiration time.Duration
	}{
		{"admin operator", "ops", RoleAdmin, time.Hour},
		{"viewer", "dashboard", "viewer", time.Hour},
		{"long lived", "cron", RoleAdmin, 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			const secret = "test-secret"
			gen := NewGenerator(secret, tt.expiration)
			fixed := time.Date(2024, 3, 8, 7, 0, 0, 0, time.UTC)
			gen.now = func() time.Time { return fixed }

			signed, err := gen.GenerateToken(tt.subject, tt.role)
			require.NoError(t, err)

			claims := jwt.MapClaims{}
			_, err = jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			}, jwt.WithTimeFunc(func() time.Time { return fixed }))
			require.NoError(t, err)

			assert.Equal(t, tt.subject, claims["sub"])
			assert.Equal(t, tt.role, claims["role"])
			assert.Equal(t, float64(fixed.Unix()), claims["iat"])
			assert.Equal(t, float64(fixed.Add(tt.expiration).Unix()), claims["exp"])
		})
	}
}

func TestGenerator_GenerateToken_EmptySecret(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator("", time.Hour).GenerateToken("ops", RoleAdmin)
	assert.Error(t, err)
}
