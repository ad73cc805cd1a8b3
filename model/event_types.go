package model

import "github.com/shopspring/decimal"

// RestockRecord は入庫イベントの1行です。
// 自然キーは (store_id, entry_date, zone, item_key) で、同一キーへの
// 書き込みは常に上書き (last-write-wins) です。
// RemainingQty は保存時点の参考値で、再計算の入力には使いません。
type RestockRecord struct {
	StoreID      string              `db:"store_id" json:"storeId"`
	EntryDate    string              `db:"entry_date" json:"entryDate"`
	Zone         string              `db:"zone" json:"zone"`
	ItemKey      string              `db:"item_key" json:"itemKey"`
	RestockQty   decimal.Decimal     `db:"restock_qty" json:"restockQty"`
	RemainingQty decimal.NullDecimal `db:"remaining_qty" json:"remainingQty"`
}

// ConsumptionRecord は消費イベントの1行です。
// Quantity は店内・デリバリーの2チャネルを合算済みの値です。
type ConsumptionRecord struct {
	StoreID    string          `db:"store_id" json:"storeId"`
	SalesDate  string          `db:"sales_date" json:"salesDate"`
	Zone       string          `db:"zone" json:"zone"`
	ProductKey string          `db:"product_key" json:"productKey"`
	Quantity   decimal.Decimal `db:"quantity" json:"quantity"`
}

// BaselineSnapshot は基準日の実地棚卸値です。
// 手作業の実数カウントに由来する唯一の信頼できる起点で、
// 後から再計算・無効化されることはありません。
type BaselineSnapshot struct {
	StoreID  string          `db:"store_id" json:"storeId"`
	BaseDate string          `db:"base_date" json:"baseDate"`
	Zone     string          `db:"zone" json:"zone"`
	ItemKey  string          `db:"item_key" json:"itemKey"`
	Quantity decimal.Decimal `db:"quantity" json:"quantity"`
}
