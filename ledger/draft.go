package ledger

import (
	"strings"

	"shizai/model"

	"github.com/shopspring/decimal"
)

// ParseDraftQty は画面入力中の入庫数ドラフト文字列を数量に変換します。
// 空文字は 0 (正常)。"1,234.5" のような桁区切りは許容します。
// 解析できない入力は 0 と ok=false を返します。NaN を伝播させては
// いけません。
func ParseDraftQty(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, true
	}
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// LiveRemaining は表示用の本日残数を計算します。
//
//	remaining(today) = yesterday + restockDraft(today) - deduction(today)
//
// 昨日残数は再生済みの値をそのまま使い、履歴チェーンの再照会は
// 行いません。ドラフト変更のたびに呼び直せる軽い純関数です。
func LiveRemaining(catalog []model.SupplyItemDefinition, yesterday Balance, drafts map[string]decimal.Decimal, todayDeduction Balance) Balance {
	remaining := make(Balance, len(catalog))
	for _, item := range catalog {
		draft := decimal.Zero
		if d, ok := drafts[item.ItemKey]; ok {
			draft = d
		}
		remaining[item.ItemKey] = yesterday.Get(item.ItemKey).
			Add(draft).
			Sub(todayDeduction.Get(item.ItemKey))
	}
	return remaining
}
