package database

import (
	"fmt"

	"shizai/model"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// GetBaselineMap は基準日の棚卸スナップショットを品目キー→数量で返します。
// スナップショットに無い品目はマップに含まれず、下流でゼロ扱いになります。
// (店舗・区画ごとスナップショット自体が存在しない場合も空マップを返す。
// ゼロ起点で計算を続けるのが仕様であり、エラーにしない。)
func GetBaselineMap(dbtx DBTX, storeID, zone, baseDate string) (map[string]decimal.Decimal, error) {
	var rows []model.BaselineSnapshot
	const q = `
		SELECT store_id, base_date, zone, item_key, quantity
		FROM baseline_snapshots
		WHERE store_id = ? AND base_date = ? AND zone = ?`
	if err := dbtx.Select(&rows, q, storeID, baseDate, zone); err != nil {
		return nil, fmt.Errorf("failed to get baseline snapshots for %s/%s at %s: %w", storeID, zone, baseDate, err)
	}

	baseline := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		baseline[r.ItemKey] = r.Quantity
	}
	return baseline, nil
}

// UpsertBaselineInTx は棚卸スナップショット1行を登録・上書きします。
func UpsertBaselineInTx(tx *sqlx.Tx, snap model.BaselineSnapshot) error {
	const q = `
		INSERT INTO baseline_snapshots (store_id, base_date, zone, item_key, quantity)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(store_id, base_date, zone, item_key) DO UPDATE SET
			quantity = excluded.quantity`
	_, err := tx.Exec(q, snap.StoreID, snap.BaseDate, snap.Zone, snap.ItemKey, snap.Quantity)
	if err != nil {
		return fmt.Errorf("failed to upsert baseline for %s/%s/%s: %w", snap.StoreID, snap.Zone, snap.ItemKey, err)
	}
	return nil
}
