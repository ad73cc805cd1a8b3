package ledger

import (
	"shizai/calendar"
	"shizai/model"

	"github.com/shopspring/decimal"
)

// Balance は品目キー→数量のマップです。
type Balance map[string]decimal.Decimal

// DailySeries は日付 (YYYYMMDD) → 品目キー→数量の系列です。
type DailySeries map[string]Balance

// Get はキーが無ければゼロを返します。
func (b Balance) Get(key string) decimal.Decimal {
	if b == nil {
		return decimal.Zero
	}
	if q, ok := b[key]; ok {
		return q
	}
	return decimal.Zero
}

// ChainDates は基準日の翌日から target まで (target含む) の暦日列を返します。
// target が基準日以前なら空列です (基準日より前は再生しない)。
func ChainDates(baseDate, target string) ([]string, error) {
	start, err := calendar.AddDays(baseDate, 1)
	if err != nil {
		return nil, err
	}
	return calendar.DatesBetween(start, target)
}

// Replay は基準残数から日次の入庫・払出を畳み込み、
// dates の最終日時点の残数を品目ごとに返します。
//
//	balance(D) = balance(D-1) + restock(D) - deduction(D)
//
// 畳み込みは固定の品目カタログ全体に対して行います。期間中に一度も
// イベントの無い品目も残数をそのまま持ち越します。dates が空なら
// 基準残数 (カタログで正規化済み) をそのまま返します。
// 丸めは行いません。丸めが必要なら呼び出し側が永続化・表示の境界で
// 行います。
func Replay(catalog []model.SupplyItemDefinition, baseline Balance, dates []string, restock, deduction DailySeries) Balance {
	// 基準マップをカタログで正規化。スナップショットに無い品目はゼロ。
	// 「在庫ゼロの実査」と「未管理」は区別できないが、どちらもゼロ起点で
	// 扱う仕様 (意図した精度の割り切り)。
	balance := make(Balance, len(catalog))
	for _, item := range catalog {
		balance[item.ItemKey] = baseline.Get(item.ItemKey)
	}

	for _, date := range dates {
		dayRestock := restock[date]
		dayDeduction := deduction[date]
		for _, item := range catalog {
			balance[item.ItemKey] = balance[item.ItemKey].
				Add(dayRestock.Get(item.ItemKey)).
				Sub(dayDeduction.Get(item.ItemKey))
		}
	}
	return balance
}

// ReplayTo は基準日から target 日までのチェーンを組み立てて再生します。
// target が baseDate より前なら空マップを返します (基準日より前の
// 再構築は仕様上のスコープ外であり、エラーではありません)。
func ReplayTo(catalog []model.SupplyItemDefinition, baseline Balance, baseDate, target string, restock, deduction DailySeries) (Balance, error) {
	if target < baseDate {
		return Balance{}, nil
	}
	dates, err := ChainDates(baseDate, target)
	if err != nil {
		return nil, err
	}
	return Replay(catalog, baseline, dates, restock, deduction), nil
}
