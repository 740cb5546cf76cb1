package usecase

import "errors"

var (
	// ErrNoPriceData は分析に使える日足が1本もない場合に返されます。
	ErrNoPriceData = errors.New("no price data to analyze")

	// ErrAnalyzerUnavailable は分析器が設定されていない場合に返されます。
	ErrAnalyzerUnavailable = errors.New("analyzer is not configured")

	// ErrBatchRunning は日次バッチが既に実行中の場合に返されます。
	ErrBatchRunning = errors.New("daily analysis batch is already running")
)
