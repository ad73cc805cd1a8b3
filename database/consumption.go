package database

import (
	"fmt"

	"shizai/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// GetConsumptionByRange は期間内の消費イベントを
// 日付→商品キー→数量 で返します。数量は取込時点で店内・デリバリーの
// 2チャネルを合算済みです。
func GetConsumptionByRange(dbtx DBTX, storeID, zone, startDate, endDate string) (map[string]map[string]decimal.Decimal, error) {
	var rows []model.ConsumptionRecord
	const q = `
		SELECT store_id, sales_date, zone, product_key, quantity
		FROM consumption_events
		WHERE store_id = ? AND zone = ? AND sales_date BETWEEN ? AND ?`
	if err := dbtx.Select(&rows, q, storeID, zone, startDate, endDate); err != nil {
		return nil, fmt.Errorf("failed to get consumption events for %s/%s [%s..%s]: %w", storeID, zone, startDate, endDate, err)
	}

	byDate := make(map[string]map[string]decimal.Decimal)
	for _, r := range rows {
		day, ok := byDate[r.SalesDate]
		if !ok {
			day = make(map[string]decimal.Decimal)
			byDate[r.SalesDate] = day
		}
		day[r.ProductKey] = r.Quantity
	}
	return byDate, nil
}

// GetConsumptionForDate は1日分の消費イベントを商品キー→数量で返します。
// 本日分の払出計算に使います。売上入力が進行中でも、その時点に
// 存在する行だけで計算するのが仕様です。
func GetConsumptionForDate(dbtx DBTX, storeID, zone, date string) (map[string]decimal.Decimal, error) {
	byDate, err := GetConsumptionByRange(dbtx, storeID, zone, date, date)
	if err != nil {
		return nil, err
	}
	if day, ok := byDate[date]; ok {
		return day, nil
	}
	return map[string]decimal.Decimal{}, nil
}

// UpsertConsumptionInTx は消費イベント1行を自然キーで上書き登録します。
// 同じ営業日のPOSデータを再取込した場合は最新の値が勝ちます。
func UpsertConsumptionInTx(tx *sqlx.Tx, rec model.ConsumptionRecord) error {
	const q = `
		INSERT INTO consumption_events (store_id, sales_date, zone, product_key, quantity)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(store_id, sales_date, zone, product_key) DO UPDATE SET
			quantity = excluded.quantity`
	_, err := tx.Exec(q, rec.StoreID, rec.SalesDate, rec.Zone, rec.ProductKey, rec.Quantity)
	if err != nil {
		return fmt.Errorf("failed to upsert consumption for %s/%s/%s on %s: %w", rec.StoreID, rec.Zone, rec.ProductKey, rec.SalesDate, err)
	}
	return nil
}
