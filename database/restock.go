package database

import (
	"fmt"

	"shizai/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// GetRestockByRange は期間内の入庫イベントを 日付→品目キー→数量 で返します。
// restock_qty のみを読みます。remaining_qty は参考値であり、残数の
// 再構築に混入させてはいけません。
func GetRestockByRange(dbtx DBTX, storeID, zone, startDate, endDate string) (map[string]map[string]decimal.Decimal, error) {
	var rows []model.RestockRecord
	const q = `
		SELECT store_id, entry_date, zone, item_key, restock_qty
		FROM restock_events
		WHERE store_id = ? AND zone = ? AND entry_date BETWEEN ? AND ?`
	if err := dbtx.Select(&rows, q, storeID, zone, startDate, endDate); err != nil {
		return nil, fmt.Errorf("failed to get restock events for %s/%s [%s..%s]: %w", storeID, zone, startDate, endDate, err)
	}

	byDate := make(map[string]map[string]decimal.Decimal)
	for _, r := range rows {
		day, ok := byDate[r.EntryDate]
		if !ok {
			day = make(map[string]decimal.Decimal)
			byDate[r.EntryDate] = day
		}
		day[r.ItemKey] = r.RestockQty
	}
	return byDate, nil
}

// GetRestockForDate は1日分の入庫数を品目キー→数量で返します。
// 本日の保存済みドラフトを画面へ戻すのに使います。
func GetRestockForDate(dbtx DBTX, storeID, zone, date string) (map[string]decimal.Decimal, error) {
	byDate, err := GetRestockByRange(dbtx, storeID, zone, date, date)
	if err != nil {
		return nil, err
	}
	if day, ok := byDate[date]; ok {
		return day, nil
	}
	return map[string]decimal.Decimal{}, nil
}

// UpsertRestockQtyInTx は入庫数のみを登録・上書きします (納品入力用)。
// 既存行の remaining_qty には触りません。過去日付への遡及訂正も
// この関数で行われ、以後の再計算に自動的に反映されます。
func UpsertRestockQtyInTx(tx *sqlx.Tx, storeID, entryDate, zone, itemKey string, restockQty decimal.Decimal) error {
	const q = `
		INSERT INTO restock_events (store_id, entry_date, zone, item_key, restock_qty)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(store_id, entry_date, zone, item_key) DO UPDATE SET
			restock_qty = excluded.restock_qty`
	_, err := tx.Exec(q, storeID, entryDate, zone, itemKey, restockQty)
	if err != nil {
		return fmt.Errorf("failed to upsert restock for %s/%s/%s on %s: %w", storeID, zone, itemKey, entryDate, err)
	}
	return nil
}

// UpsertRestockWithRemainingInTx は残数入力画面の保存用です。
// restock_qty と参考残数 remaining_qty (小数1桁丸め済み) を
// 自然キーで上書きします。同じ保存を2回流しても行は同一になります。
func UpsertRestockWithRemainingInTx(tx *sqlx.Tx, rec model.RestockRecord) error {
	const q = `
		INSERT INTO restock_events (store_id, entry_date, zone, item_key, restock_qty, remaining_qty)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(store_id, entry_date, zone, item_key) DO UPDATE SET
			restock_qty = excluded.restock_qty,
			remaining_qty = excluded.remaining_qty`
	_, err := tx.Exec(q, rec.StoreID, rec.EntryDate, rec.Zone, rec.ItemKey, rec.RestockQty, rec.RemainingQty)
	if err != nil {
		return fmt.Errorf("failed to upsert restock row for %s/%s/%s on %s: %w", rec.StoreID, rec.Zone, rec.ItemKey, rec.EntryDate, err)
	}
	return nil
}
