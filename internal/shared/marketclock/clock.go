// Package marketclock はKRX（韓国取引所）の営業日と取引時間に関する時刻計算を提供します。
package marketclock

import (
	"log/slog"
	"time"
)

// CloseHour はKRXの引け後バッチを開始する時刻（16:00 KST）です。
const CloseHour = 16

// Seoul はAsia/Seoulのロケーションです。tzdataが無い環境では固定オフセット（UTC+9）を使用します。
var Seoul = loadSeoul()

func loadSeoul() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		slog.Warn("tzdata for Asia/Seoul not found, falling back to fixed offset", "error", err)
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// Today はnowのソウル時間における日付を、UTCの0時として返します。
// 日足の日付は常にこの形式（UTC 0時）で保持します。
func Today(now time.Time) time.Time {
	y, m, d := now.In(Seoul).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsTradingDay はnowがソウル時間で平日かどうかを返します。祝日は考慮しません。
func IsTradingDay(now time.Time) bool {
	switch now.In(Seoul).Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// UntilNextClose はnowから次の16:00 KSTまでの期間を返します。
func UntilNextClose(now time.Time) time.Duration {
	local := now.In(Seoul)
	next := time.Date(local.Year(), local.Month(), local.Day(), CloseHour, 0, 0, 0, Seoul)
	if !local.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(local)
}
