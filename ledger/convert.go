package ledger

import "github.com/shopspring/decimal"

// SeriesFrom はストレージ層の 日付→キー→数量 マップを DailySeries へ
// 変換します (基底型は同じなのでコピーはしません)。
func SeriesFrom(m map[string]map[string]decimal.Decimal) DailySeries {
	series := make(DailySeries, len(m))
	for date, day := range m {
		series[date] = Balance(day)
	}
	return series
}
