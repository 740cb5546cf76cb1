package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"stock_dashboard/internal/feature/instrument/domain"
	"stock_dashboard/internal/feature/instrument/domain/entity"
)

// mockInstrumentUsecase はInstrumentUsecaseインターフェースのモック実装です。
type mockInstrumentUsecase struct {
	ListFunc func(ctx context.Context) ([]entity.Instrument, error)
	GetFunc  func(ctx context.Context, code string) (*entity.Instrument, error)
}

func (m *mockInstrumentUsecase) ListActiveInstruments(ctx context.Context) ([]entity.Instrument, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockInstrumentUsecase) GetInstrument(ctx context.Context, code string) (*entity.Instrument, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, code)
	}
	return nil, domain.ErrInstrumentNotFound
}

// TestInstrumentHandler_List はListハンドラーの各種シナリオをテーブル駆動テストで検証します。
func TestInstrumentHandler_List(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		mockList       func(ctx context.Context) ([]entity.Instrument, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: returns list of instruments without internal fields",
			mockList: func(ctx context.Context) ([]entity.Instrument, error) {
				return []entity.Instrument{
					{ID: 7, Code: "005930", Name: "Samsung Electronics", Market: entity.MarketKOSPI, IsActive: true, SortKey: 1, CurrentPrice: 73400},
					{ID: 8, Code: "247540", Name: "Ecopro BM", Market: entity.MarketKOSDAQ, IsActive: true, SortKey: 2},
				}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[{"code":"005930","name":"Samsung Electronics","market":"KOSPI"},{"code":"247540","name":"Ecopro BM","market":"KOSDAQ"}]`,
		},
		{
			name: "success: nil from usecase is an empty list",
			mockList: func(ctx context.Context) ([]entity.Instrument, error) {
				return nil, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `[]`,
		},
		{
			name: "failure: usecase returns error",
			mockList: func(ctx context.Context) ([]entity.Instrument, error) {
				return nil, errors.New("database connection failed")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"database connection failed"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewInstrumentHandler(&mockInstrumentUsecase{ListFunc: tt.mockList})
			router := gin.New()
			router.GET("/instruments", h.List)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/instruments", nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

// TestInstrumentHandler_Get は銘柄詳細の取得と404のマッピングを検証します。
func TestInstrumentHandler_Get(t *testing.T) {
	gin.SetMode(gin.TestMode)
	updated := time.Date(2024, 3, 8, 7, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		code           string
		mockGet        func(ctx context.Context, code string) (*entity.Instrument, error)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "success: returns instrument detail",
			code: "005930",
			mockGet: func(ctx context.Context, code string) (*entity.Instrument, error) {
				return &entity.Instrument{Code: code, Name: "Samsung Electronics", Market: entity.MarketKOSPI, CurrentPrice: 73400, UpdatedAt: updated}, nil
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"code":"005930","name":"Samsung Electronics","market":"KOSPI","currentPrice":73400,"updatedAt":"2024-03-08T07:00:00Z"}`,
		},
		{
			name: "failure: unknown code",
			code: "999999",
			mockGet: func(ctx context.Context, code string) (*entity.Instrument, error) {
				return nil, domain.ErrInstrumentNotFound
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"instrument not found"}`,
		},
		{
			name: "failure: repository error",
			code: "005930",
			mockGet: func(ctx context.Context, code string) (*entity.Instrument, error) {
				return nil, errors.New("db down")
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"error":"db down"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewInstrumentHandler(&mockInstrumentUsecase{GetFunc: tt.mockGet})
			router := gin.New()
			router.GET("/instruments/:code", h.Get)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/instruments/"+tt.code, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}
