package cache

import (
	"time"

	"stock_dashboard/internal/shared/marketclock"
)

// ttlFor は固定TTLが指定されていればそれを、なければ次の引け（16:00 KST）までの期間を返します。
// 日足は引け後にしか変わらないため、それまではキャッシュを使い続けられます。
func ttlFor(now time.Time, fixed time.Duration) time.Duration {
	if fixed > 0 {
		return fixed
	}
	return marketclock.UntilNextClose(now)
}
