package mappers

import (
	"shizai/ledger"
	"shizai/model"

	"github.com/shopspring/decimal"
)

// RemainingItemView は残数入力画面の1品目分の表示データです。
// RestockDraft は編集可能なドラフト文字列、Remaining はドラフトと
// 本日払出を反映したライブ計算値です。
type RemainingItemView struct {
	ItemKey            string          `json:"itemKey"`
	ItemName           string          `json:"itemName"`
	UnitName           string          `json:"unitName"`
	YesterdayRemaining decimal.Decimal `json:"yesterdayRemaining"`
	RestockDraft       string          `json:"restockDraft"`
	TodayDeduction     decimal.Decimal `json:"todayDeduction"`
	Remaining          decimal.Decimal `json:"remaining"`
}

// RemainingView は残数入力画面の全データです。
type RemainingView struct {
	StoreID string       `json:"storeId"`
	Date    string       `json:"date"`
	Zone    string       `json:"zone"`
	Merged  bool         `json:"merged"`
	Zones   []model.Zone `json:"zones"`
	// Incomplete は一部の読み込みに失敗し、値がゼロ埋めの参考表示で
	// あることを示します。この状態では保存できません。
	Incomplete bool                `json:"incomplete"`
	Items      []RemainingItemView `json:"items"`
}

// ToRemainingItems は計算済みの残数マップ群を表示順の行データへ変換します。
func ToRemainingItems(catalog []model.SupplyItemDefinition, yesterday ledger.Balance, drafts map[string]decimal.Decimal, todayDeduction, remaining ledger.Balance) []RemainingItemView {
	items := make([]RemainingItemView, 0, len(catalog))
	for _, def := range catalog {
		view := RemainingItemView{
			ItemKey:            def.ItemKey,
			ItemName:           def.ItemName,
			UnitName:           def.UnitName,
			YesterdayRemaining: yesterday.Get(def.ItemKey),
			TodayDeduction:     todayDeduction.Get(def.ItemKey),
			Remaining:          remaining.Get(def.ItemKey),
		}
		if draft, ok := drafts[def.ItemKey]; ok {
			view.RestockDraft = draft.String()
		}
		items = append(items, view)
	}
	return items
}

// ZeroItems は読み込み失敗時のゼロ埋め行データを返します。
func ZeroItems(catalog []model.SupplyItemDefinition) []RemainingItemView {
	items := make([]RemainingItemView, 0, len(catalog))
	for _, def := range catalog {
		items = append(items, RemainingItemView{
			ItemKey:  def.ItemKey,
			ItemName: def.ItemName,
			UnitName: def.UnitName,
		})
	}
	return items
}
