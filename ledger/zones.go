package ledger

// 区画統合ビューの計算戦略は「区画ごとに再生してから合算」
// (chain-then-sum) を採用しています。漸化式は入庫・払出に対して
// 線形なので、入力系列を先に合算して1本のチェーンを再生しても
// (sum-then-chain) 結果は一致します。この同値性は zones_test.go の
// プロパティテストで検証しています。

// SumBalances は複数区画の残数マップを合算します。
// 基準もイベントも無い区画は単にゼロとして寄与します。
func SumBalances(balances ...Balance) Balance {
	total := make(Balance)
	for _, b := range balances {
		for key, q := range b {
			total[key] = total[key].Add(q)
		}
	}
	return total
}

// MergeSeries は複数区画の日次系列を日付単位で合算します。
// sum-then-chain 戦略の入力を作るためのヘルパーです。
func MergeSeries(series ...DailySeries) DailySeries {
	merged := make(DailySeries)
	for _, s := range series {
		for date, day := range s {
			if _, ok := merged[date]; !ok {
				merged[date] = make(Balance, len(day))
			}
			for key, q := range day {
				merged[date][key] = merged[date][key].Add(q)
			}
		}
	}
	return merged
}
