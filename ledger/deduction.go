package ledger

import (
	"shizai/model"

	"github.com/shopspring/decimal"
)

// DeductionForDay は1日分の消費イベント (商品キー→数量) を
// 各品目の払出キー定義に従って品目ごとの払出数へ集約します。
// 同じ商品キーが複数の品目の払出キーに含まれる場合は各品目に加算します。
func DeductionForDay(catalog []model.SupplyItemDefinition, consumption map[string]decimal.Decimal) Balance {
	day := make(Balance, len(catalog))
	for _, item := range catalog {
		total := decimal.Zero
		for _, key := range item.DeductionKeys {
			if q, ok := consumption[key]; ok {
				total = total.Add(q)
			}
		}
		day[item.ItemKey] = total
	}
	return day
}

// DeductionByDate は日付ごとの消費イベント系列を品目ごとの払出系列へ
// 変換します。Replay の deduction 入力を作るための前段です。
func DeductionByDate(catalog []model.SupplyItemDefinition, consumptionByDate map[string]map[string]decimal.Decimal) DailySeries {
	series := make(DailySeries, len(consumptionByDate))
	for date, consumption := range consumptionByDate {
		series[date] = DeductionForDay(catalog, consumption)
	}
	return series
}
